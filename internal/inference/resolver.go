package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"companymcp/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Resolver picks a reachable inference server from an ordered candidate list
type Resolver interface {
	// Resolve probes candidates in order and returns the first that answers.
	// When none answers it returns the first candidate.
	Resolve(ctx context.Context) string
	// ProbeAll probes every candidate and reports which answered
	ProbeAll(ctx context.Context) map[string]bool
	Candidates() []string
}

type endpointResolver struct {
	client       *resty.Client
	candidates   []string
	healthPath   string
	probeTimeout time.Duration
}

// NewResolver builds a resolver over candidates, highest priority first.
// The list is copied and is read-only afterwards.
func NewResolver(candidates []string, healthPath string, probeTimeout time.Duration) (Resolver, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("at least one inference candidate is required")
	}
	list := make([]string, 0, len(candidates))
	for _, c := range candidates {
		list = append(list, strings.TrimRight(c, "/"))
	}

	return &endpointResolver{
		client:       resty.New().SetRetryCount(0),
		candidates:   list,
		healthPath:   healthPath,
		probeTimeout: probeTimeout,
	}, nil
}

func (r *endpointResolver) Candidates() []string {
	return append([]string(nil), r.candidates...)
}

func (r *endpointResolver) Resolve(ctx context.Context) string {
	log := logger.FromContext(ctx)

	for _, candidate := range r.candidates {
		if err := r.probe(ctx, candidate); err != nil {
			log.Debug("inference candidate unreachable", zap.String("endpoint", candidate), zap.Error(err))
			continue
		}
		return candidate
	}

	log.Warn("no inference candidate answered, falling back to first", zap.String("endpoint", r.candidates[0]))
	return r.candidates[0]
}

func (r *endpointResolver) ProbeAll(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(r.candidates))
	for _, candidate := range r.candidates {
		status[candidate] = r.probe(ctx, candidate) == nil
	}
	return status
}

func (r *endpointResolver) probe(ctx context.Context, candidate string) error {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	resp, err := r.client.R().SetContext(probeCtx).Get(candidate + r.healthPath)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("health probe returned %d", resp.StatusCode())
	}
	return nil
}
