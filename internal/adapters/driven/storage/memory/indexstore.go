package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.IndexStore = (*IndexStore)(nil)
	_ driven.ChunkIndex = (*ChunkIndex)(nil)
)

// ErrClosed indicates an operation on a closed index or store.
var ErrClosed = errors.New("index closed")

// IndexStore keeps named indexes in memory.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[domain.IndexName]*ChunkIndex
	closed  bool
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		indexes: make(map[domain.IndexName]*ChunkIndex),
	}
}

// Open returns the index with the given name.
func (s *IndexStore) Open(_ context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	idx, ok := s.indexes[name]
	if !ok {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	return idx, nil
}

// Create replaces the named index with an empty one.
func (s *IndexStore) Create(_ context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if old, ok := s.indexes[name]; ok {
		_ = old.Close()
	}
	idx := NewChunkIndex(name)
	s.indexes[name] = idx
	return idx, nil
}

// Replace fills a new index with chunks and swaps it in only if every
// chunk was accepted.
func (s *IndexStore) Replace(ctx context.Context, name domain.IndexName, chunks []domain.Chunk) (driven.ChunkIndex, error) {
	idx := NewChunkIndex(name)
	if err := idx.Add(ctx, chunks); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if old, ok := s.indexes[name]; ok {
		_ = old.Close()
	}
	s.indexes[name] = idx
	return idx, nil
}

// Close closes every index.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, idx := range s.indexes {
		_ = idx.Close()
	}
	s.closed = true
	return nil
}

// ChunkIndex is an in-memory vector index with exhaustive cosine search.
type ChunkIndex struct {
	name   domain.IndexName
	mu     sync.RWMutex
	chunks []domain.Chunk
	closed bool
}

// NewChunkIndex creates an empty index.
func NewChunkIndex(name domain.IndexName) *ChunkIndex {
	return &ChunkIndex{name: name}
}

// Name returns the index name.
func (i *ChunkIndex) Name() domain.IndexName {
	return i.name
}

// Add stores chunks. Every chunk must carry an embedding.
func (i *ChunkIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrClosed
	}
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("chunk %s: %w: missing embedding", c.ID, domain.ErrInvalidInput)
		}
		c.Metadata = c.Metadata.Clone()
		i.chunks = append(i.chunks, c)
	}
	return nil
}

// SimilaritySearch returns the k chunks closest to query.Vector.
func (i *ChunkIndex) SimilaritySearch(ctx context.Context, query domain.Query, k int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, ErrClosed
	}
	if len(query.Vector) == 0 {
		return nil, fmt.Errorf("%w: query vector required", domain.ErrInvalidInput)
	}
	return ranking.TopK(i.chunks, query.Vector, k)
}

// Count returns the number of stored chunks.
func (i *ChunkIndex) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return 0, ErrClosed
	}
	return len(i.chunks), nil
}

// Close marks the index closed. Later calls fail with ErrClosed.
func (i *ChunkIndex) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	return nil
}
