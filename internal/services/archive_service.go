package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"companymcp/internal/logger"
	"companymcp/internal/metrics"
	"companymcp/internal/models"
	"companymcp/internal/repositories"

	"go.uber.org/zap"
)

const archiveContentType = "application/x-ndjson"

// ArchiveService exports a tenant's interaction log to object storage as
// one JSON Lines object per tenant and UTC day
type ArchiveService interface {
	ArchiveDay(ctx context.Context, tenantID int64, day time.Time) (int, error)
}

type archiveService struct {
	store   MinioService
	repo    repositories.InteractionRepository
	bucket  string
	metrics *metrics.Metrics
}

func NewArchiveService(store MinioService, repo repositories.InteractionRepository, bucket string, m *metrics.Metrics) ArchiveService {
	return &archiveService{store: store, repo: repo, bucket: bucket, metrics: m}
}

// ArchiveObjectName is the object key for a tenant's records of one day
func ArchiveObjectName(tenantID int64, day time.Time) string {
	return fmt.Sprintf("%d/%s.jsonl", tenantID, day.UTC().Format("2006-01-02"))
}

// ArchiveDay writes every record created on day (UTC) and returns how many
// were written. Days with no records produce no object.
func (s *archiveService) ArchiveDay(ctx context.Context, tenantID int64, day time.Time) (int, error) {
	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	records, err := s.repo.ListForTenant(ctx, tenantID, &models.InteractionFilters{Since: &start, Until: &end})
	if err != nil {
		return 0, fmt.Errorf("failed to list interactions: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return 0, fmt.Errorf("failed to encode interaction %s: %w", record.ID, err)
		}
	}

	if err := s.store.EnsureBucketExists(ctx, s.bucket); err != nil {
		return 0, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	object := ArchiveObjectName(tenantID, start)
	if err := s.store.PutObject(ctx, s.bucket, object, &buf, int64(buf.Len()), archiveContentType); err != nil {
		return 0, fmt.Errorf("failed to upload %s: %w", object, err)
	}

	s.metrics.ArchivedRecords.Add(float64(len(records)))
	logger.FromContext(ctx).Info("interactions archived",
		zap.Int64("tenant_id", tenantID),
		zap.String("object", object),
		zap.Int("records", len(records)),
	)
	return len(records), nil
}
