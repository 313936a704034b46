// Package generator produces downstream integration artifacts from fetched
// descriptors. Each artifact kind is a self-contained strategy registered in
// a lookup table; new kinds are added without touching the orchestrator.
// Output is deterministic: the same descriptor and kind always produce
// byte-identical content.
package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"specsync/internal/config"
)

// Operation is one callable endpoint extracted from a descriptor.
type Operation struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
}

// Descriptor is the parsed, normalized view of a service descriptor that
// generators consume. Raw carries the full document for kinds that need
// fields not lifted here.
type Descriptor struct {
	Title      string
	Version    string
	Operations []Operation
	Raw        map[string]any
}

// Input bundles everything a kind strategy needs: the service's connection
// and auth metadata, the parsed descriptor, and the content hash of its
// normalized form.
type Input struct {
	Service    config.Service
	Descriptor *Descriptor
	Hash       string
}

// Generator is the per-kind artifact strategy.
type Generator interface {
	// Kind returns the identifier services reference in their artifact list.
	Kind() string
	// Filename returns the artifact's file name within the service's
	// output directory.
	Filename(svc config.Service) string
	// Generate renders the artifact content. Must be deterministic.
	Generate(input Input) ([]byte, error)
}

var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// ParseDescriptor lifts the fields generators care about out of a normalized
// descriptor. Operations are ordered by path then method so iteration order
// never depends on map traversal.
func ParseDescriptor(normalized []byte) (*Descriptor, error) {
	var raw map[string]any
	if err := json.Unmarshal(normalized, &raw); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}

	desc := &Descriptor{Raw: raw}

	if info, ok := raw["info"].(map[string]any); ok {
		if title, ok := info["title"].(string); ok {
			desc.Title = title
		}
		if version, ok := info["version"].(string); ok {
			desc.Version = version
		}
	}

	paths, _ := raw["paths"].(map[string]any)
	for path, node := range paths {
		item, ok := node.(map[string]any)
		if !ok {
			continue
		}
		for _, method := range httpMethods {
			opNode, ok := item[method].(map[string]any)
			if !ok {
				continue
			}
			op := Operation{
				Method: strings.ToUpper(method),
				Path:   path,
			}
			if id, ok := opNode["operationId"].(string); ok {
				op.OperationID = id
			}
			if summary, ok := opNode["summary"].(string); ok {
				op.Summary = summary
			}
			if op.OperationID == "" {
				op.OperationID = deriveOperationID(op.Method, op.Path)
			}
			desc.Operations = append(desc.Operations, op)
		}
	}

	sort.Slice(desc.Operations, func(i, j int) bool {
		if desc.Operations[i].Path != desc.Operations[j].Path {
			return desc.Operations[i].Path < desc.Operations[j].Path
		}
		return desc.Operations[i].Method < desc.Operations[j].Method
	})

	return desc, nil
}

func deriveOperationID(method, path string) string {
	cleaned := strings.NewReplacer("/", "_", "{", "", "}", "", "-", "_").Replace(strings.Trim(path, "/"))
	if cleaned == "" {
		cleaned = "root"
	}
	return strings.ToLower(method) + "_" + cleaned
}
