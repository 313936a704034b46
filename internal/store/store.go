// Package store persists the per-service checksum records that gate
// artifact regeneration. Records survive process restarts; a service absent
// from the current configuration is never purged automatically.
package store

import (
	"time"
)

// Record is the persisted state for one service: the hash of its last
// successfully generated descriptor, the artifact kinds generated from it,
// and when the content last changed.
type Record struct {
	Hash      string    `json:"hash"`
	Kinds     []string  `json:"kinds"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Covers reports whether the record's kind set includes every requested
// kind. A kind newly added to a service's configuration makes the record
// non-covering, which forces generation on the next pass even when the
// content hash is unchanged.
func (r Record) Covers(kinds []string) bool {
	have := make(map[string]struct{}, len(r.Kinds))
	for _, k := range r.Kinds {
		have[k] = struct{}{}
	}
	for _, k := range kinds {
		if _, ok := have[k]; !ok {
			return false
		}
	}
	return true
}

// ChecksumStore is the durable key→record mapping backing the change gate.
// Implementations must be safe for concurrent use; the orchestrator reads a
// service's record at the start of its pass and writes at most once at the
// end, keyed by service name.
type ChecksumStore interface {
	Get(serviceName string) (Record, bool, error)
	Set(serviceName string, rec Record) error
	List() (map[string]Record, error)
	Close() error
}
