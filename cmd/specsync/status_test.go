package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specsync/internal/config"
	"specsync/internal/store"
)

func TestPrintStatusListsConfiguredAndStaleServices(t *testing.T) {
	cfg := &config.Config{
		Services: []config.Service{
			{Name: "billing", Enabled: true},
			{Name: "audit", Enabled: false},
			{Name: "payments", Enabled: true},
		},
	}
	records := map[string]store.Record{
		"billing": {
			Hash:      "0a1b2c3d4e5f67890a1b2c3d4e5f6789",
			Kinds:     []string{"client-stub", "registration"},
			UpdatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		"legacy": {
			Hash:      "ffff0000ffff0000ffff0000ffff0000",
			Kinds:     []string{"registration"},
			UpdatedAt: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
		},
	}

	buf := &bytes.Buffer{}
	printStatus(buf, cfg, records)
	output := buf.String()

	assert.Contains(t, output, "billing")
	assert.Contains(t, output, "0a1b2c3d4e5f")
	assert.Contains(t, output, "2026-08-01T12:00:00Z")

	// Never-synced services still appear.
	assert.Contains(t, output, "payments")
	assert.Contains(t, output, "never")

	// Stale records and disabled services are annotated, not hidden.
	assert.Contains(t, output, "legacy")
	assert.Contains(t, output, "not configured")
	assert.Contains(t, output, "disabled")
}

func TestStatusCommandFailsOnMissingConfig(t *testing.T) {
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"status", "--config", "/nonexistent/specsync.yaml"})

	require.Error(t, root.Execute())
}
