package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Watch runs synchronization passes on the configured interval until the
// context is cancelled. Passes are scheduled in singleton mode: a pass that
// outlasts the interval is never overlapped by the next tick, the tick is
// rescheduled instead. The first pass fires immediately.
func (o *Orchestrator) Watch(ctx context.Context, force bool) error {
	interval := time.Duration(o.cfg.Settings.Interval) * time.Second
	if interval <= 0 {
		interval = 300 * time.Second
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			if _, err := o.Run(ctx, force); err != nil {
				o.log.Error(err, "synchronization pass aborted")
			}
		}),
		gocron.WithName("sync-pass"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule synchronization job: %w", err)
	}

	o.log.WithFields(map[string]any{"interval": interval.String()}).Info("watch mode started")
	scheduler.Start()

	<-ctx.Done()

	o.log.Info("watch mode stopping")
	if err := scheduler.Shutdown(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}
