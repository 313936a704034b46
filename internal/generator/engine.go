package generator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"specsync/internal/config"
	"specsync/internal/detector"
	"specsync/internal/logger"
	"specsync/internal/model"
	specsyncerrors "specsync/pkg/errors"
)

// Engine drives artifact generation for one service at a time. Kinds are
// independent and write to distinct targets, so they run in parallel; one
// kind's failure never blocks its siblings.
type Engine struct {
	registry  *Registry
	outputDir string
	log       *logger.Logger
}

// NewEngine creates an Engine writing artifacts under outputDir/<service>/.
func NewEngine(registry *Registry, outputDir string, log *logger.Logger) *Engine {
	return &Engine{
		registry:  registry,
		outputDir: outputDir,
		log:       log,
	}
}

// Generate produces every requested kind for the service. The returned error
// is non-nil only when the descriptor itself cannot be consumed; per-kind
// failures are recorded in the result instead.
func (e *Engine) Generate(ctx context.Context, svc config.Service, spec model.FetchedSpec, hash string, kinds []string) (model.GenerationResult, error) {
	result := model.GenerationResult{Service: svc.Name}

	normalized, err := detector.Normalize(spec.Content)
	if err != nil {
		return result, specsyncerrors.NewInvalidDescriptorError(svc.Name, []string{spec.Path}, err)
	}
	desc, err := ParseDescriptor(normalized)
	if err != nil {
		return result, specsyncerrors.NewInvalidDescriptorError(svc.Name, []string{spec.Path}, err)
	}

	input := Input{Service: svc, Descriptor: desc, Hash: hash}
	serviceDir := filepath.Join(e.outputDir, svc.Name)

	results := make([]model.ArtifactResult, len(kinds))
	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind string) {
			defer wg.Done()
			results[i] = e.generateKind(ctx, serviceDir, input, kind)
		}(i, kind)
	}
	wg.Wait()

	result.Artifacts = results
	return result, nil
}

func (e *Engine) generateKind(ctx context.Context, serviceDir string, input Input, kind string) model.ArtifactResult {
	res := model.ArtifactResult{Kind: kind}

	if err := ctx.Err(); err != nil {
		res.Err = specsyncerrors.NewGenerationError(input.Service.Name, kind, err)
		return res
	}

	gen, err := e.registry.Get(kind)
	if err != nil {
		res.Err = specsyncerrors.NewGenerationError(input.Service.Name, kind, err)
		return res
	}

	content, err := gen.Generate(input)
	if err != nil {
		res.Err = specsyncerrors.NewGenerationError(input.Service.Name, kind, err)
		return res
	}

	path := filepath.Join(serviceDir, gen.Filename(input.Service))
	rewritten, err := writeFileAtomic(path, content)
	if err != nil {
		res.Err = specsyncerrors.NewGenerationError(input.Service.Name, kind, err)
		return res
	}

	if rewritten {
		e.log.WithFields(map[string]any{"service": input.Service.Name, "kind": kind, "path": path}).Debug("artifact written")
	}
	res.Path = path
	return res
}

// writeFileAtomic replaces path with content via write-to-temp-then-rename
// so readers never observe partial output. When the file already holds
// identical bytes the write is skipped entirely; the bool reports whether
// the file was rewritten.
func writeFileAtomic(path string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("chmod temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("rename temporary file: %w", err)
	}
	return true, nil
}
