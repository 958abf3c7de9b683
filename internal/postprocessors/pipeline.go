// Package postprocessors turns raw units into chunks: short units are merged,
// then merged units are split into overlapping chunks.
package postprocessors

import (
	"context"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.ChunkPipeline = (*Pipeline)(nil)

// Pipeline runs a merger then a splitter over one file's raw units.
type Pipeline struct {
	merger   driven.Merger
	splitter driven.Splitter
}

// NewPipeline creates a pipeline from a merger and a splitter.
func NewPipeline(merger driven.Merger, splitter driven.Splitter) *Pipeline {
	return &Pipeline{
		merger:   merger,
		splitter: splitter,
	}
}

// Process merges the units and splits the result.
// Units from different calls never share a merge buffer.
func (p *Pipeline) Process(ctx context.Context, units []domain.RawUnit) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := p.merger.Merge(units)
	chunks := p.splitter.Split(merged)

	logger.Debug("%s: %d units -> %d merged -> %d chunks",
		p.splitter.Name(), len(units), len(merged), len(chunks))

	return chunks, nil
}

// SplitterName returns the name of the configured splitter strategy.
func (p *Pipeline) SplitterName() string {
	return p.splitter.Name()
}
