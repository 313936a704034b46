package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	specsyncerrors "specsync/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseConfig loads a configuration file from disk, validates it, applies
// defaults, and returns the resulting model.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, specsyncerrors.NewParseError(path, 0, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, specsyncerrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Settings.Parallel <= 0 {
		cfg.Settings.Parallel = 4
	}
	if cfg.Settings.Interval <= 0 {
		cfg.Settings.Interval = 300
	}
	if cfg.Settings.FetchTimeout <= 0 {
		cfg.Settings.FetchTimeout = 10
	}
	if cfg.Settings.FetchRetries < 0 {
		cfg.Settings.FetchRetries = 3
	}
	if cfg.Settings.NotifyTimeout <= 0 {
		cfg.Settings.NotifyTimeout = 5
	}
	if cfg.Settings.OutputDir == "" {
		cfg.Settings.OutputDir = "generated"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "file"
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Driver {
		case "bolt":
			cfg.Store.Path = ".specsync/checksums.db"
		default:
			cfg.Store.Path = ".specsync/checksums.json"
		}
	}
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = "SPECSYNC_SECRET_"
	}
	if cfg.Notifier.Driver == "" {
		cfg.Notifier.Driver = "log"
	}
	if cfg.Notifier.Topic == "" {
		cfg.Notifier.Topic = "specsync.changes"
	}
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
