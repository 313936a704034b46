package generator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specsync/internal/config"
	"specsync/internal/logger"
	"specsync/internal/model"
	specsyncerrors "specsync/pkg/errors"
)

type failingGenerator struct{}

func (failingGenerator) Kind() string { return "broken" }

func (failingGenerator) Filename(svc config.Service) string { return svc.Name + ".broken" }

func (failingGenerator) Generate(input Input) ([]byte, error) {
	return nil, fmt.Errorf("render failed")
}

func newEngine(t *testing.T, registry *Registry) (*Engine, string) {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "error", Writer: io.Discard})
	require.NoError(t, err)
	dir := t.TempDir()
	return NewEngine(registry, dir, log), dir
}

func billingSpec() model.FetchedSpec {
	return model.FetchedSpec{
		Service: "billing",
		Path:    "/openapi.json",
		Content: []byte(billingDescriptor),
	}
}

func TestEngineGeneratesAllKinds(t *testing.T) {
	engine, dir := newEngine(t, DefaultRegistry())

	result, err := engine.Generate(context.Background(), billingService(), billingSpec(), "h1", []string{KindClientStub, KindRegistration})
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.Len(t, result.Artifacts, 2)

	for _, artifact := range result.Artifacts {
		require.NoError(t, artifact.Err)
		content, err := os.ReadFile(artifact.Path)
		require.NoError(t, err)
		assert.NotEmpty(t, content)
		assert.Equal(t, filepath.Join(dir, "billing"), filepath.Dir(artifact.Path))
	}
}

func TestEngineIsolatesKindFailures(t *testing.T) {
	registry := DefaultRegistry()
	require.NoError(t, registry.Register(failingGenerator{}))
	engine, _ := newEngine(t, registry)

	result, err := engine.Generate(context.Background(), billingService(), billingSpec(), "h1", []string{"broken", KindRegistration})
	require.NoError(t, err)
	assert.False(t, result.Succeeded())

	require.Len(t, result.Artifacts, 2)
	var genErr *specsyncerrors.GenerationError
	require.ErrorAs(t, result.Artifacts[0].Err, &genErr)
	assert.Equal(t, "broken", genErr.Kind)
	// The sibling kind still completes.
	require.NoError(t, result.Artifacts[1].Err)
	assert.FileExists(t, result.Artifacts[1].Path)
}

func TestEngineUnknownKindRecordedPerKind(t *testing.T) {
	engine, _ := newEngine(t, DefaultRegistry())

	result, err := engine.Generate(context.Background(), billingService(), billingSpec(), "h1", []string{"typed-models"})
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 1)
	require.Error(t, result.Artifacts[0].Err)
}

func TestEngineInvalidDescriptorFailsWholeService(t *testing.T) {
	engine, _ := newEngine(t, DefaultRegistry())

	spec := billingSpec()
	spec.Content = []byte("not json")
	_, err := engine.Generate(context.Background(), billingService(), spec, "h1", []string{KindRegistration})
	require.Error(t, err)
	var invalidErr *specsyncerrors.InvalidDescriptorError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestEngineSkipsRewriteOfIdenticalContent(t *testing.T) {
	engine, _ := newEngine(t, DefaultRegistry())
	svc := billingService()

	first, err := engine.Generate(context.Background(), svc, billingSpec(), "h1", []string{KindRegistration})
	require.NoError(t, err)
	path := first.Artifacts[0].Path
	info, err := os.Stat(path)
	require.NoError(t, err)

	second, err := engine.Generate(context.Background(), svc, billingSpec(), "h1", []string{KindRegistration})
	require.NoError(t, err)
	require.NoError(t, second.Artifacts[0].Err)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime(), "identical content must not be rewritten")
}

func TestEngineLeavesNoTempFiles(t *testing.T) {
	engine, dir := newEngine(t, DefaultRegistry())

	_, err := engine.Generate(context.Background(), billingService(), billingSpec(), "h1", []string{KindClientStub, KindRegistration})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "billing"))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-")
	}
}
