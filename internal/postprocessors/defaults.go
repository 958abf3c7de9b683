package postprocessors

import (
	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/postprocessors/chunker"
	"github.com/custodia-labs/chateqt/internal/postprocessors/merger"
)

// RegisterDefaults registers the built-in splitter strategies.
func RegisterDefaults(r *Registry) {
	r.Register("recursive", buildRecursive)
	r.Register("window", buildWindow)
}

// NewPipelineFromSettings builds the merge-then-split pipeline described by
// the chunking settings. Invalid parameters return a ConfigurationError.
func NewPipelineFromSettings(settings domain.ChunkingSettings) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	m, err := merger.New(settings.MinLength)
	if err != nil {
		return nil, err
	}

	strategy := settings.Strategy
	if strategy == "" {
		strategy = "recursive"
	}

	r := NewRegistry()
	RegisterDefaults(r)
	splitter, err := r.Build(strategy, map[string]any{
		"chunk_size": settings.ChunkSize,
		"overlap":    settings.ChunkOverlap,
	})
	if err != nil {
		return nil, err
	}

	return NewPipeline(m, splitter), nil
}

// buildRecursive creates a recursive splitter from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 5000)
//   - overlap (int): Overlapping characters between chunks (default: 500)
func buildRecursive(cfg map[string]any) (driven.Splitter, error) {
	return chunker.NewRecursive(optionsFromConfig(cfg)...)
}

// buildWindow creates a fixed-stride splitter from generic config.
// Accepts the same keys as buildRecursive.
func buildWindow(cfg map[string]any) (driven.Splitter, error) {
	return chunker.NewWindow(optionsFromConfig(cfg)...)
}

func optionsFromConfig(cfg map[string]any) []chunker.Option {
	var opts []chunker.Option
	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return opts
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
