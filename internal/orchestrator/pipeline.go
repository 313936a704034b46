package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"specsync/internal/config"
	"specsync/internal/logger"
	"specsync/internal/model"
	"specsync/internal/notifier"
	"specsync/internal/store"
	specsyncerrors "specsync/pkg/errors"
)

// runService drives one service through its pass: health pre-check, fetch,
// change detection, generation, checksum advance, notification. The checksum
// is written only after every requested kind generated successfully; a
// notification failure is logged but never rolls the checksum back.
func (o *Orchestrator) runService(ctx context.Context, svc config.Service, force bool) model.ServiceOutcome {
	out := model.ServiceOutcome{Service: svc.Name, State: model.StatePending}
	start := o.now()
	defer func() { out.Duration = o.now().Sub(start) }()

	log := o.log.WithService(svc.Name)

	if !o.acquire(svc.Name) {
		log.Warn("previous pass still in flight, skipping")
		out.State = model.StateSkipped
		return out
	}
	defer o.release(svc.Name)

	if !o.fetcher.CheckHealth(ctx, svc) {
		log.Warn("health check failed, skipping")
		out.State = model.StateSkipped
		return out
	}

	out.State = model.StateFetching
	spec, err := o.fetcher.Fetch(ctx, svc)
	if err != nil {
		log.Error(err, "descriptor fetch failed")
		out.State = model.StateFetchFailed
		out.Err = err
		return out
	}

	out.State = model.StateDetecting
	verdict, err := o.detector.HasChanged(svc.Name, spec, svc.Artifacts)
	if err != nil {
		var storeErr *specsyncerrors.StoreError
		if errors.As(err, &storeErr) {
			log.Error(err, "checksum lookup failed")
			out.State = model.StateStoreFailed
		} else {
			log.Error(err, "descriptor rejected")
			out.State = model.StateFetchFailed
		}
		out.Err = err
		return out
	}
	out.Hash = verdict.Hash
	out.Changed = verdict.Changed

	forced := force || o.cfg.Settings.AutoRegen || !o.cfg.Settings.ChangeGateEnabled()
	if !verdict.Changed && !forced {
		log.WithFields(map[string]any{"hash": verdict.Hash}).Debug("descriptor unchanged")
		out.State = model.StateUnchangedDone
		return out
	}

	log.WithFields(map[string]any{
		"hash":   verdict.Hash,
		"reason": generationReason(verdict.Reason, forced),
		"kinds":  svc.Artifacts,
	}).Info("generating artifacts")

	out.State = model.StateGenerating
	result, err := o.engine.Generate(ctx, svc, spec, verdict.Hash, svc.Artifacts)
	out.Artifacts = result.Artifacts
	if err != nil {
		log.Error(err, "generation failed")
		out.State = model.StateGenerateFailed
		out.Err = err
		return out
	}
	if !result.Succeeded() {
		for _, a := range result.Artifacts {
			if a.Err != nil {
				log.WithFields(map[string]any{"kind": a.Kind}).Error(a.Err, "artifact generation failed")
				if out.Err == nil {
					out.Err = a.Err
				}
			}
		}
		out.State = model.StateGenerateFailed
		return out
	}

	rec := store.Record{
		Hash:      verdict.Hash,
		Kinds:     result.Kinds(),
		UpdatedAt: o.now().UTC(),
	}
	if err := o.store.Set(svc.Name, rec); err != nil {
		log.Error(err, "checksum update failed")
		out.State = model.StateStoreFailed
		out.Err = err
		return out
	}

	if verdict.Changed {
		out.State = model.StateNotifying
		o.notifyChange(ctx, svc.Name, rec, log)
	}

	out.State = model.StateDone
	return out
}

// notifyChange publishes the change event under the configured timeout.
// Delivery is at-least-once: on failure the checksum stands, the artifacts
// on disk are already correct, and the failure is only logged.
func (o *Orchestrator) notifyChange(ctx context.Context, serviceName string, rec store.Record, log *logger.Logger) {
	timeout := time.Duration(o.cfg.Settings.NotifyTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	nctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	event := notifier.Event{
		Service:    serviceName,
		Kinds:      rec.Kinds,
		Hash:       rec.Hash,
		OccurredAt: o.now().UTC(),
	}
	if err := o.notifier.Notify(nctx, event); err != nil {
		log.Error(err, "change notification failed")
	}
}

func generationReason(reason string, forced bool) string {
	if forced && reason == "unchanged" {
		return "forced"
	}
	if forced {
		return fmt.Sprintf("%s (forced)", reason)
	}
	return reason
}
