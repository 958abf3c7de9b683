package driven

import (
	"context"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// ChunkIndex is an opaque handle to one persisted index.
// Backends may search by vector (query.Vector) or by keyword (query.Text).
type ChunkIndex interface {
	// Name returns the index this handle refers to.
	Name() domain.IndexName

	// Add stores chunks. Vector backends require chunk embeddings.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// SimilaritySearch returns at most k chunks, closest first.
	SimilaritySearch(ctx context.Context, query domain.Query, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// IndexStore opens and creates named indexes at distinct persisted locations.
type IndexStore interface {
	// Open returns the existing index with the given name.
	// Returns domain.ErrNotFound if it has never been built.
	Open(ctx context.Context, name domain.IndexName) (ChunkIndex, error)

	// Create returns an empty index with the given name, replacing any
	// existing content.
	Create(ctx context.Context, name domain.IndexName) (ChunkIndex, error)

	// Replace builds the named index from chunks and swaps it in only once
	// every chunk is stored. On failure the existing index is left as it was.
	Replace(ctx context.Context, name domain.IndexName, chunks []domain.Chunk) (ChunkIndex, error)

	// Close releases resources shared by the store's indexes.
	Close() error
}
