package model

import (
	"time"
)

// ServiceState tracks where a service's pipeline pass currently is. Failed
// states are terminal; they never affect another service's state machine.
type ServiceState string

const (
	// StatePending indicates the service has not started its pass yet.
	StatePending ServiceState = "pending"
	// StateFetching indicates the descriptor fetch is in flight.
	StateFetching ServiceState = "fetching"
	// StateFetchFailed is terminal: the descriptor could not be retrieved.
	StateFetchFailed ServiceState = "fetch_failed"
	// StateDetecting indicates hash computation and store comparison.
	StateDetecting ServiceState = "detecting"
	// StateUnchangedDone is terminal: content unchanged, nothing regenerated.
	StateUnchangedDone ServiceState = "unchanged"
	// StateGenerating indicates artifact generation is in progress.
	StateGenerating ServiceState = "generating"
	// StateGenerateFailed is terminal: at least one requested kind failed,
	// so the checksum was not advanced.
	StateGenerateFailed ServiceState = "generate_failed"
	// StateStoreFailed is terminal: the checksum store could not be read or
	// written, so the change gate for this service cannot be trusted.
	StateStoreFailed ServiceState = "store_failed"
	// StateNotifying indicates the change event is being published.
	StateNotifying ServiceState = "notifying"
	// StateDone is terminal: artifacts written, checksum advanced.
	StateDone ServiceState = "done"
	// StateSkipped is terminal: the health pre-check reported the service
	// unavailable; skipped, not failed.
	StateSkipped ServiceState = "skipped"
)

// Terminal reports whether the state ends a service's pass.
func (s ServiceState) Terminal() bool {
	switch s {
	case StateFetchFailed, StateUnchangedDone, StateGenerateFailed, StateStoreFailed, StateDone, StateSkipped:
		return true
	}
	return false
}

// Failed reports whether the state is a failure outcome.
func (s ServiceState) Failed() bool {
	return s == StateFetchFailed || s == StateGenerateFailed || s == StateStoreFailed
}

// FetchedSpec is the raw descriptor content for one service, alive only for
// the duration of the pass that fetched it.
type FetchedSpec struct {
	Service   string
	Path      string
	Content   []byte
	FetchedAt time.Time
}

// ArtifactResult records the outcome of generating one artifact kind.
type ArtifactResult struct {
	Kind string
	Path string
	Err  error
}

// GenerationResult aggregates per-kind outcomes for one service's pass.
type GenerationResult struct {
	Service   string
	Artifacts []ArtifactResult
}

// Succeeded reports whether every requested kind generated cleanly. The
// checksum for a service advances only when this holds.
func (r GenerationResult) Succeeded() bool {
	for _, a := range r.Artifacts {
		if a.Err != nil {
			return false
		}
	}
	return len(r.Artifacts) > 0
}

// Kinds returns the kind identifiers that generated successfully.
func (r GenerationResult) Kinds() []string {
	kinds := make([]string, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		if a.Err == nil {
			kinds = append(kinds, a.Kind)
		}
	}
	return kinds
}

// ServiceOutcome is the terminal record for one service within a RunReport.
type ServiceOutcome struct {
	Service   string
	State     ServiceState
	Hash      string
	Changed   bool
	Artifacts []ArtifactResult
	Err       error
	Duration  time.Duration
}

// RunReport is the aggregate result of one orchestrator pass. Produced fresh
// each run; callers may log or surface it but it is never persisted.
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Forced    bool
	Attempted int
	Outcomes  []ServiceOutcome
}

// Changed lists the services whose content hash advanced this run.
func (r *RunReport) Changed() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.State == StateDone && o.Changed {
			names = append(names, o.Service)
		}
	}
	return names
}

// Failed lists the services that ended in a failure state.
func (r *RunReport) Failed() []ServiceOutcome {
	var failed []ServiceOutcome
	for _, o := range r.Outcomes {
		if o.State.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Skipped lists the services skipped as unhealthy this run.
func (r *RunReport) Skipped() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.State == StateSkipped {
			names = append(names, o.Service)
		}
	}
	return names
}

// Success reports whether the pass completed without any service failure.
// A pass with skipped or unchanged services still counts as successful.
func (r *RunReport) Success() bool {
	return len(r.Failed()) == 0
}
