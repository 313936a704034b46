package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full specsync configuration document.
type Config struct {
	Version  string    `yaml:"version" validate:"required,semver"`
	Name     string    `yaml:"name" validate:"required,min=1,max=100"`
	Settings Settings  `yaml:"settings,omitempty"`
	Store    Store     `yaml:"store,omitempty"`
	Notifier Notifier  `yaml:"notifier,omitempty"`
	Secrets  Secrets   `yaml:"secrets,omitempty"`
	Services []Service `yaml:"services" validate:"required,min=1,dive"`
}

// Settings holds global pipeline parameters. Per-service overrides on the
// Service struct take precedence over the fetch values here.
type Settings struct {
	Parallel      int    `yaml:"parallel,omitempty" validate:"omitempty,min=1,max=32"`
	Interval      int    `yaml:"interval,omitempty" validate:"omitempty,min=1,max=86400"`
	FetchTimeout  int    `yaml:"fetch_timeout,omitempty" validate:"omitempty,min=1,max=300"`
	FetchRetries  int    `yaml:"fetch_retries,omitempty" validate:"omitempty,min=0,max=10"`
	OnChangeOnly  *bool  `yaml:"on_change_only,omitempty"`
	AutoRegen     bool   `yaml:"auto_regenerate,omitempty"`
	OutputDir     string `yaml:"output_dir,omitempty"`
	Verbose       bool   `yaml:"verbose,omitempty"`
	NotifyTimeout int    `yaml:"notify_timeout,omitempty" validate:"omitempty,min=1,max=300"`
}

// Store selects and locates the checksum store backend.
type Store struct {
	Driver string `yaml:"driver,omitempty" validate:"omitempty,oneof=file bolt"`
	Path   string `yaml:"path,omitempty"`
}

// Notifier selects the change-event publisher.
type Notifier struct {
	Driver string       `yaml:"driver,omitempty" validate:"omitempty,oneof=log kafka"`
	Topic  string       `yaml:"topic,omitempty"`
	Kafka  *KafkaConfig `yaml:"kafka,omitempty"`
}

// KafkaConfig holds broker connection parameters for the Kafka notifier.
type KafkaConfig struct {
	Brokers []string    `yaml:"brokers" validate:"required,min=1,dive,min=1"`
	TLS     bool        `yaml:"tls,omitempty"`
	SASL    *SASLConfig `yaml:"sasl,omitempty"`
}

// SASLConfig holds SASL authentication parameters. The password is a secret
// reference resolved at startup, never an inline credential.
type SASLConfig struct {
	Mechanism   string `yaml:"mechanism" validate:"required,oneof=plain scram-sha-256 scram-sha-512"`
	User        string `yaml:"user" validate:"required"`
	PasswordRef string `yaml:"password_ref" validate:"required"`
}

// Secrets configures the environment-backed secret resolver.
type Secrets struct {
	EnvPrefix string `yaml:"env_prefix,omitempty"`
}

// Service identifies one remote service whose API descriptor is synchronized.
type Service struct {
	Name       string   `yaml:"name" validate:"required,service_name"`
	BaseURL    string   `yaml:"base_url" validate:"required,url"`
	SpecPaths  []string `yaml:"spec_paths" validate:"required,min=1,dive,startswith=/"`
	Auth       Auth     `yaml:"auth,omitempty"`
	Artifacts  []string `yaml:"artifacts" validate:"required,min=1,dive,artifact_kind"`
	HealthPath string   `yaml:"health_path,omitempty" validate:"omitempty,startswith=/"`
	Timeout    int      `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=300"`
	Retries    *int     `yaml:"retries,omitempty"`
	Enabled    bool     `yaml:"enabled,omitempty"`
}

// Auth describes how descriptor requests are authenticated. Kind "bearer"
// substitutes the resolved secret as a bearer token; "header" injects it under
// the configured header name; "none" sends unauthenticated requests.
type Auth struct {
	Kind      string `yaml:"kind,omitempty" validate:"omitempty,oneof=none bearer header"`
	SecretRef string `yaml:"secret_ref,omitempty"`
	Header    string `yaml:"header,omitempty"`
}

// UnmarshalYAML applies service defaults: enabled unless stated otherwise,
// auth kind "none" when the block is absent.
func (s *Service) UnmarshalYAML(value *yaml.Node) error {
	type rawService Service
	var raw rawService
	if err := value.Decode(&raw); err != nil {
		return err
	}
	var temp struct {
		Enabled *bool `yaml:"enabled"`
	}
	if err := value.Decode(&temp); err != nil {
		return err
	}

	*s = Service(raw)
	if temp.Enabled != nil {
		s.Enabled = *temp.Enabled
	} else {
		s.Enabled = true
	}
	if s.Auth.Kind == "" {
		s.Auth.Kind = "none"
	}
	return nil
}

// FetchTimeout returns the effective per-attempt timeout for this service.
func (s Service) FetchTimeout(defaults Settings) time.Duration {
	seconds := defaults.FetchTimeout
	if s.Timeout > 0 {
		seconds = s.Timeout
	}
	if seconds <= 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}

// FetchRetries returns the effective retry cap for this service.
func (s Service) FetchRetries(defaults Settings) int {
	if s.Retries != nil {
		return *s.Retries
	}
	if defaults.FetchRetries > 0 {
		return defaults.FetchRetries
	}
	return 3
}

// ChangeGateEnabled reports whether generation is gated on content changes.
// Defaults to true; on_change_only: false regenerates on every pass.
func (s Settings) ChangeGateEnabled() bool {
	if s.OnChangeOnly == nil {
		return true
	}
	return *s.OnChangeOnly
}

// EnabledServices filters the configured services to those not disabled.
func (c *Config) EnabledServices() []Service {
	out := make([]Service, 0, len(c.Services))
	for _, svc := range c.Services {
		if svc.Enabled {
			out = append(out, svc)
		}
	}
	return out
}

// ServiceMap builds a lookup table for services by name.
func ServiceMap(services []Service) map[string]Service {
	out := make(map[string]Service, len(services))
	for _, svc := range services {
		out[svc.Name] = svc
	}
	return out
}
