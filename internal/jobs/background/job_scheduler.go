package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"companymcp/internal/config"
	"companymcp/internal/inference"
	"companymcp/internal/logger"
	"companymcp/internal/metrics"
	"companymcp/internal/services"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	JobEndpointProbe      = "inference-endpoint-probe"
	JobInteractionArchive = "interaction-archive"

	archiveConcurrency = 5
	archiveTimeout     = 10 * time.Minute
)

// JobScheduler runs the periodic maintenance jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	resolver  inference.Resolver
	tenants   services.TenantService
	archive   services.ArchiveService
	metrics   *metrics.Metrics
	cfg       config.JobsConfig
	now       func() time.Time
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers its jobs. archive may
// be nil when object storage is disabled.
func NewJobScheduler(
	cfg config.JobsConfig,
	resolver inference.Resolver,
	tenants services.TenantService,
	archive services.ArchiveService,
	m *metrics.Metrics,
) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	if m == nil {
		m = metrics.NewNop()
	}
	js := &JobScheduler{
		scheduler: scheduler,
		resolver:  resolver,
		tenants:   tenants,
		archive:   archive,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	logger.GetLogger().Info("starting background job scheduler", zap.Strings("jobs", js.JobNames()))
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	logger.GetLogger().Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	if js.cfg.ProbeInterval > 0 {
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(js.cfg.ProbeInterval),
			gocron.NewTask(js.ProbeEndpoints, context.Background()),
			gocron.WithName(JobEndpointProbe),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s job: %w", JobEndpointProbe, err)
		}
		js.jobs[JobEndpointProbe] = job
	}

	if js.cfg.ArchiveEnabled && js.archive != nil {
		at, err := time.Parse("15:04", js.cfg.ArchiveAt)
		if err != nil {
			return fmt.Errorf("invalid archive time %q: %w", js.cfg.ArchiveAt, err)
		}
		job, err := js.scheduler.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(at.Hour()), uint(at.Minute()), 0))),
			gocron.NewTask(js.ArchivePreviousDay, context.Background()),
			gocron.WithName(JobInteractionArchive),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s job: %w", JobInteractionArchive, err)
		}
		js.jobs[JobInteractionArchive] = job
	}

	return nil
}

// ProbeEndpoints records the reachability of every inference candidate
func (js *JobScheduler) ProbeEndpoints(ctx context.Context) {
	up := js.resolver.ProbeAll(ctx)
	for endpoint, ok := range up {
		value := 0.0
		if ok {
			value = 1
		}
		js.metrics.EndpointUp.WithLabelValues(endpoint).Set(value)
		if !ok {
			logger.GetLogger().Warn("inference endpoint unreachable", zap.String("endpoint", endpoint))
		}
	}
}

// ArchivePreviousDay exports yesterday's (UTC) interactions of every active
// tenant. One tenant's failure does not stop the others.
func (js *JobScheduler) ArchivePreviousDay(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	log := logger.GetLogger().With(zap.String("job", JobInteractionArchive))
	day := js.now().UTC().AddDate(0, 0, -1)

	tenants, err := js.tenants.ListActive(ctx)
	if err != nil {
		log.Error("failed to list tenants for archive", zap.Error(err))
		return err
	}

	semaphore := make(chan struct{}, archiveConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	total, failed := 0, 0

	for _, tenant := range tenants {
		wg.Add(1)
		go func(tenantID int64) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			n, err := js.archive.ArchiveDay(logger.WithContext(ctx, log), tenantID, day)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				log.Error("failed to archive tenant interactions", zap.Int64("tenant_id", tenantID), zap.Error(err))
				return
			}
			total += n
		}(tenant.ID)
	}
	wg.Wait()

	log.Info("interaction archive completed",
		zap.String("day", day.Format("2006-01-02")),
		zap.Int("tenants", len(tenants)),
		zap.Int("records", total),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		return fmt.Errorf("archive failed for %d of %d tenants", failed, len(tenants))
	}
	return nil
}

// JobNames lists the registered jobs in name order
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow triggers a registered job outside its schedule
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return job.RunNow()
}
