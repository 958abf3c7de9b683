// Package bleve provides a keyword-search index backend using Bleve.
//
// It needs no embedding service: chunks are indexed by their text and
// queries match against query.Text. Each index name maps to its own
// directory <dir>/<name>.bleve.
package bleve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/staging"
	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.IndexStore = (*IndexStore)(nil)
	_ driven.ChunkIndex = (*ChunkIndex)(nil)
)

// batchSize is the number of chunks submitted per bleve batch.
const batchSize = 100

// Stored field names.
const (
	fieldContent  = "content"
	fieldPosition = "position"
	fieldMetadata = "metadata"
)

// document is what bleve stores for each chunk.
type document struct {
	Content  string  `json:"content"`
	Position float64 `json:"position"`
	Metadata string  `json:"metadata"`
}

// IndexStore opens one bleve index directory per index name.
type IndexStore struct {
	dir string

	mu      sync.Mutex
	indexes map[domain.IndexName]*ChunkIndex
}

// NewIndexStore creates a store rooted at dir.
func NewIndexStore(dir string) (*IndexStore, error) {
	if dir == "" {
		return nil, domain.NewConfigurationError("index.dir", "must not be empty")
	}
	return &IndexStore{dir: dir, indexes: make(map[domain.IndexName]*ChunkIndex)}, nil
}

// PathFor returns the bleve directory of the named index.
func (s *IndexStore) PathFor(name domain.IndexName) string {
	return filepath.Join(s.dir, string(name)+".bleve")
}

// Open returns an existing index, or domain.ErrNotFound.
func (s *IndexStore) Open(_ context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indexes[name]; ok {
		return idx, nil
	}

	path := s.PathFor(name)
	index, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, fmt.Errorf("index %s at %s: %w", name, path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	idx := &ChunkIndex{name: name, index: index}
	s.indexes[name] = idx
	return idx, nil
}

// Create removes any existing directory for name and creates an empty index.
func (s *IndexStore) Create(_ context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.indexes[name]; ok {
		_ = old.Close()
		delete(s.indexes, name)
	}

	path := s.PathFor(name)
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("removing old index: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index %s: %w", name, err)
	}

	idx := &ChunkIndex{name: name, index: index}
	s.indexes[name] = idx
	return idx, nil
}

// Replace builds name in a staging directory and swaps it in once every
// chunk is indexed. A failed build leaves the existing index untouched.
func (s *IndexStore) Replace(ctx context.Context, name domain.IndexName, chunks []domain.Chunk) (driven.ChunkIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	path := s.PathFor(name)
	dir, err := staging.Dir(path)
	if err != nil {
		return nil, err
	}

	index, err := bleve.New(dir, newMapping())
	if err != nil {
		staging.Discard(dir)
		return nil, fmt.Errorf("creating index %s: %w", name, err)
	}
	built := &ChunkIndex{name: name, index: index}
	if err := built.Add(ctx, chunks); err != nil {
		_ = built.Close()
		staging.Discard(dir)
		return nil, err
	}
	if err := built.Close(); err != nil {
		staging.Discard(dir)
		return nil, fmt.Errorf("closing staged %s: %w", name, err)
	}

	if old, ok := s.indexes[name]; ok {
		_ = old.Close()
		delete(s.indexes, name)
	}
	if err := staging.Swap(dir, path); err != nil {
		staging.Discard(dir)
		return nil, err
	}

	index, err = bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	idx := &ChunkIndex{name: name, index: index}
	s.indexes[name] = idx
	return idx, nil
}

// Close closes every open index.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for name, idx := range s.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
		delete(s.indexes, name)
	}
	return errors.Join(errs...)
}

// newMapping indexes chunk content and stores the rest unindexed.
func newMapping() mapping.IndexMapping {
	content := bleve.NewTextFieldMapping()
	content.Store = true

	position := bleve.NewNumericFieldMapping()
	position.Index = false
	position.Store = true

	metadata := bleve.NewTextFieldMapping()
	metadata.Index = false
	metadata.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(fieldContent, content)
	doc.AddFieldMappingsAt(fieldPosition, position)
	doc.AddFieldMappingsAt(fieldMetadata, metadata)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// ChunkIndex is one bleve index.
type ChunkIndex struct {
	name  domain.IndexName
	index bleve.Index
}

// Name returns the index name.
func (c *ChunkIndex) Name() domain.IndexName {
	return c.name
}

// Add indexes chunks by content. Embeddings are ignored.
func (c *ChunkIndex) Add(ctx context.Context, chunks []domain.Chunk) error {
	batch := c.index.NewBatch()
	for i := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		meta := "{}"
		if chunks[i].Metadata != nil {
			b, err := json.Marshal(chunks[i].Metadata)
			if err != nil {
				return fmt.Errorf("marshaling metadata: %w", err)
			}
			meta = string(b)
		}

		doc := document{
			Content:  chunks[i].Content,
			Position: float64(chunks[i].Position),
			Metadata: meta,
		}
		if err := batch.Index(chunks[i].ID, doc); err != nil {
			return fmt.Errorf("adding chunk %s to batch: %w", chunks[i].ID, err)
		}

		if batch.Size() >= batchSize {
			if err := c.index.Batch(batch); err != nil {
				return fmt.Errorf("indexing batch: %w", err)
			}
			batch = c.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := c.index.Batch(batch); err != nil {
			return fmt.Errorf("indexing final batch: %w", err)
		}
	}
	return nil
}

// SimilaritySearch runs a match query over chunk content.
func (c *ChunkIndex) SimilaritySearch(ctx context.Context, query domain.Query, k int) ([]domain.ScoredChunk, error) {
	if query.Text == "" {
		return nil, fmt.Errorf("%w: keyword search needs query text", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	search := bleve.NewSearchRequest(bleve.NewMatchQuery(query.Text))
	search.Size = k
	search.Fields = []string{"*"}

	results, err := c.index.SearchInContext(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]domain.ScoredChunk, 0, len(results.Hits))
	for _, hit := range results.Hits {
		chunk := domain.Chunk{ID: hit.ID}
		if content, ok := hit.Fields[fieldContent].(string); ok {
			chunk.Content = content
		}
		if position, ok := hit.Fields[fieldPosition].(float64); ok {
			chunk.Position = int(position)
		}
		if raw, ok := hit.Fields[fieldMetadata].(string); ok && raw != "{}" {
			if err := json.Unmarshal([]byte(raw), &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling metadata of %s: %w", hit.ID, err)
			}
		}
		hits = append(hits, domain.ScoredChunk{Chunk: chunk, Score: hit.Score})
	}
	return hits, nil
}

// Count returns the number of indexed chunks.
func (c *ChunkIndex) Count(_ context.Context) (int, error) {
	n, err := c.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return int(n), nil
}

// Close closes the bleve index.
func (c *ChunkIndex) Close() error {
	return c.index.Close()
}
