package driven

import (
	"context"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// Merger concatenates short raw units into length-bounded merged units.
type Merger interface {
	// Merge folds units into merged units, preserving order.
	Merge(units []domain.RawUnit) []domain.MergedUnit
}

// Splitter partitions merged units into overlapping chunks.
type Splitter interface {
	// Name returns the splitter strategy name for logging and configuration.
	Name() string

	// Split returns the chunks of every unit, in order.
	Split(units []domain.MergedUnit) []domain.Chunk
}

// ChunkPipeline runs merge then split over one file's raw units.
type ChunkPipeline interface {
	// Process returns the final chunks for the given raw units.
	Process(ctx context.Context, units []domain.RawUnit) ([]domain.Chunk, error)
}
