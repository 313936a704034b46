package generator

import (
	"encoding/json"
	"fmt"

	"specsync/internal/config"
)

// KindRegistration identifies the JSON registration payload artifact,
// consumed by service catalogs and gateway configuration.
const KindRegistration = "registration"

type registrationOperation struct {
	OperationID string `json:"operation_id"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Summary     string `json:"summary,omitempty"`
}

// registrationPayload uses a struct (fixed field order) rather than a map so
// the serialized form is byte-stable.
type registrationPayload struct {
	Service    string                  `json:"service"`
	BaseURL    string                  `json:"base_url"`
	AuthKind   string                  `json:"auth_kind"`
	HealthPath string                  `json:"health_path,omitempty"`
	Title      string                  `json:"title,omitempty"`
	Version    string                  `json:"version,omitempty"`
	SpecHash   string                  `json:"spec_hash"`
	Operations []registrationOperation `json:"operations"`
}

// Registration emits a deterministic JSON registration payload for a service.
type Registration struct{}

// NewRegistration creates the registration strategy.
func NewRegistration() *Registration {
	return &Registration{}
}

// Kind implements Generator.
func (g *Registration) Kind() string { return KindRegistration }

// Filename implements Generator.
func (g *Registration) Filename(svc config.Service) string {
	return svc.Name + ".registration.json"
}

// Generate implements Generator.
func (g *Registration) Generate(input Input) ([]byte, error) {
	payload := registrationPayload{
		Service:    input.Service.Name,
		BaseURL:    input.Service.BaseURL,
		AuthKind:   input.Service.Auth.Kind,
		HealthPath: input.Service.HealthPath,
		Title:      input.Descriptor.Title,
		Version:    input.Descriptor.Version,
		SpecHash:   input.Hash,
		Operations: make([]registrationOperation, 0, len(input.Descriptor.Operations)),
	}

	for _, op := range input.Descriptor.Operations {
		payload.Operations = append(payload.Operations, registrationOperation{
			OperationID: op.OperationID,
			Method:      op.Method,
			Path:        op.Path,
			Summary:     op.Summary,
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal registration payload: %w", err)
	}
	return append(data, '\n'), nil
}

var _ Generator = (*Registration)(nil)
