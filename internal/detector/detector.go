// Package detector decides whether a fetched descriptor requires artifact
// regeneration. It normalizes descriptors into a canonical serialization,
// hashes them, and compares against the checksum store. It never mutates the
// store; the orchestrator persists updates only after generation succeeds.
package detector

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"specsync/internal/model"
	"specsync/internal/store"
	specsyncerrors "specsync/pkg/errors"
)

// volatileKeys are descriptor fields known to vary between fetches without
// functional effect (generation timestamps stamped by the source service).
// They are stripped at every nesting level before hashing.
var volatileKeys = map[string]struct{}{
	"x-generated-at":    {},
	"x-generation-date": {},
	"generated_at":      {},
	"generatedAt":       {},
	"x-build-timestamp": {},
}

// markerKeys identify a payload as an API descriptor. Presence of any one of
// them at the top level is the structural check; full schema validation is
// out of scope.
var markerKeys = []string{"openapi", "swagger", "asyncapi"}

// LooksLikeDescriptor reports whether the payload carries the minimal
// structural marker of an API descriptor.
func LooksLikeDescriptor(data []byte) bool {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	for _, key := range markerKeys {
		if _, ok := doc[key]; ok {
			return true
		}
	}
	return false
}

// Normalize returns the canonical serialization of a descriptor: volatile
// keys stripped at every level, object keys in deterministic order,
// incidental whitespace removed. Identical functional content always
// normalizes to identical bytes.
func Normalize(content []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("descriptor is not valid JSON: %w", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("descriptor root is not an object")
	}

	stripped := stripVolatile(doc)

	// encoding/json marshals map keys in sorted order, which supplies the
	// deterministic ordering guarantee.
	out, err := json.Marshal(stripped)
	if err != nil {
		return nil, fmt.Errorf("serialize normalized descriptor: %w", err)
	}
	return out, nil
}

func stripVolatile(node any) any {
	switch typed := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			if _, volatile := volatileKeys[key]; volatile {
				continue
			}
			out[key] = stripVolatile(value)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = stripVolatile(value)
		}
		return out
	default:
		return node
	}
}

// Hash computes the content digest of a descriptor's normalized form.
func Hash(content []byte) (string, error) {
	normalized, err := Normalize(content)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:]), nil
}

// Outcome is the detector's verdict for one service's pass.
type Outcome struct {
	Changed bool
	Hash    string
	// Reason is one of "new", "hash", "kinds", "unchanged"; used for logs.
	Reason string
}

// Detector compares descriptor hashes against the checksum store.
type Detector struct {
	store store.ChecksumStore
}

// New creates a Detector backed by the given store.
func New(s store.ChecksumStore) *Detector {
	return &Detector{store: s}
}

// HasChanged reports whether the service's artifacts need regeneration:
// when no record exists, when the content hash differs, or when the stored
// record does not cover every requested kind (a kind newly added to the
// configuration regenerates on the next pass regardless of hash state).
func (d *Detector) HasChanged(serviceName string, spec model.FetchedSpec, kinds []string) (Outcome, error) {
	hash, err := Hash(spec.Content)
	if err != nil {
		return Outcome{}, specsyncerrors.NewInvalidDescriptorError(serviceName, []string{spec.Path}, err)
	}

	rec, found, err := d.store.Get(serviceName)
	if err != nil {
		return Outcome{}, specsyncerrors.NewStoreError("get", serviceName, err)
	}

	switch {
	case !found:
		return Outcome{Changed: true, Hash: hash, Reason: "new"}, nil
	case rec.Hash != hash:
		return Outcome{Changed: true, Hash: hash, Reason: "hash"}, nil
	case !rec.Covers(kinds):
		return Outcome{Changed: true, Hash: hash, Reason: "kinds"}, nil
	default:
		return Outcome{Changed: false, Hash: hash, Reason: "unchanged"}, nil
	}
}
