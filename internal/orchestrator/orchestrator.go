// Package orchestrator runs synchronization passes: it fans configured
// services out over a bounded worker pool, drives each through its pipeline
// state machine, and aggregates terminal outcomes into a run report. One
// service's failure never affects another's pass.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"specsync/internal/config"
	"specsync/internal/detector"
	"specsync/internal/fetcher"
	"specsync/internal/generator"
	"specsync/internal/logger"
	"specsync/internal/model"
	"specsync/internal/notifier"
	"specsync/internal/store"
)

// Options collects the orchestrator's collaborators. All fields are required
// except Logger, which defaults to a no-op logger.
type Options struct {
	Config   *config.Config
	Store    store.ChecksumStore
	Fetcher  *fetcher.Fetcher
	Detector *detector.Detector
	Engine   *generator.Engine
	Notifier notifier.Notifier
	Logger   *logger.Logger
}

// Orchestrator coordinates synchronization passes. Safe for concurrent use:
// overlapping passes touching the same service are serialized by the
// in-flight guard, with the later pass skipping the service.
type Orchestrator struct {
	cfg      *config.Config
	store    store.ChecksumStore
	fetcher  *fetcher.Fetcher
	detector *detector.Detector
	engine   *generator.Engine
	notifier notifier.Notifier
	log      *logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}

	// now is swappable for tests.
	now func() time.Time
}

// New creates an Orchestrator from its collaborators.
func New(opts Options) (*Orchestrator, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("orchestrator requires a configuration")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("orchestrator requires a checksum store")
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("orchestrator requires a fetcher")
	}
	if opts.Detector == nil {
		return nil, fmt.Errorf("orchestrator requires a detector")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("orchestrator requires a generation engine")
	}
	if opts.Notifier == nil {
		return nil, fmt.Errorf("orchestrator requires a notifier")
	}

	return &Orchestrator{
		cfg:      opts.Config,
		store:    opts.Store,
		fetcher:  opts.Fetcher,
		detector: opts.Detector,
		engine:   opts.Engine,
		notifier: opts.Notifier,
		log:      opts.Logger,
		inFlight: make(map[string]struct{}),
		now:      time.Now,
	}, nil
}

// Run executes one synchronization pass over every enabled service. force
// bypasses the change gate for all of them. The returned report is complete
// even when services failed; the error is non-nil only when the pass could
// not start at all.
func (o *Orchestrator) Run(ctx context.Context, force bool) (*model.RunReport, error) {
	services := o.cfg.EnabledServices()
	if len(services) == 0 {
		return nil, fmt.Errorf("no enabled services to synchronize")
	}

	report := &model.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: o.now(),
		Forced:    force,
		Attempted: len(services),
		Outcomes:  make([]model.ServiceOutcome, len(services)),
	}

	o.log.WithFields(map[string]any{
		"run_id":   report.RunID,
		"services": len(services),
		"forced":   force,
	}).Info("synchronization pass started")

	parallel := o.cfg.Settings.Parallel
	if parallel < 1 {
		parallel = 1
	}
	sem := make(chan struct{}, parallel)

	var wg sync.WaitGroup
	for i, svc := range services {
		wg.Add(1)
		go func(i int, svc config.Service) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				report.Outcomes[i] = model.ServiceOutcome{
					Service: svc.Name,
					State:   model.StateFetchFailed,
					Err:     ctx.Err(),
				}
				return
			}

			report.Outcomes[i] = o.runService(ctx, svc, force)
		}(i, svc)
	}
	wg.Wait()

	report.Duration = o.now().Sub(report.StartedAt)

	o.log.WithFields(map[string]any{
		"run_id":   report.RunID,
		"changed":  len(report.Changed()),
		"failed":   len(report.Failed()),
		"skipped":  len(report.Skipped()),
		"duration": report.Duration.String(),
	}).Info("synchronization pass finished")

	return report, nil
}

// acquire marks a service as in flight. It reports false when another pass
// already holds the service, in which case the caller must skip it.
func (o *Orchestrator) acquire(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, held := o.inFlight[name]; held {
		return false
	}
	o.inFlight[name] = struct{}{}
	return true
}

func (o *Orchestrator) release(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, name)
}
