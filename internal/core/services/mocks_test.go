package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	batches   [][]string
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batches = append(m.batches, texts)
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embedding"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	prompt   string
	opts     driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompt = prompt
	m.opts = opts
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockChunkIndex implements driven.ChunkIndex with fixed hits.
type mockChunkIndex struct {
	name      domain.IndexName
	hits      []domain.ScoredChunk
	searchErr error

	mu      sync.Mutex
	queries []domain.Query
}

func (m *mockChunkIndex) Name() domain.IndexName {
	return m.name
}

func (m *mockChunkIndex) Add(_ context.Context, _ []domain.Chunk) error {
	return nil
}

func (m *mockChunkIndex) SimilaritySearch(_ context.Context, query domain.Query, k int) ([]domain.ScoredChunk, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockChunkIndex) Count(_ context.Context) (int, error) {
	return len(m.hits), nil
}

func (m *mockChunkIndex) Close() error {
	return nil
}

// mockIndexStore implements driven.IndexStore over a fixed set of indexes.
type mockIndexStore struct {
	indexes map[domain.IndexName]*mockChunkIndex
	openErr map[domain.IndexName]error
}

func (m *mockIndexStore) Open(_ context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	if err := m.openErr[name]; err != nil {
		return nil, err
	}
	idx, ok := m.indexes[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return idx, nil
}

func (m *mockIndexStore) Create(_ context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	idx := &mockChunkIndex{name: name}
	m.indexes[name] = idx
	return idx, nil
}

func (m *mockIndexStore) Replace(ctx context.Context, name domain.IndexName, chunks []domain.Chunk) (driven.ChunkIndex, error) {
	idx := &mockChunkIndex{name: name}
	if err := idx.Add(ctx, chunks); err != nil {
		return nil, err
	}
	m.indexes[name] = idx
	return idx, nil
}

func (m *mockIndexStore) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore with a fixed template.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	return m.template, m.err
}

func (m *mockPromptStore) Reload() {}

// hits builds n scored chunks whose content is prefix-i.
func hits(prefix string, n int, meta domain.Metadata) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, n)
	for i := range out {
		out[i] = domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:       prefix + "-" + string(rune('a'+i)),
				Content:  prefix + " chunk " + string(rune('a'+i)),
				Metadata: meta,
			},
			Score: 1 - float64(i)/100,
		}
	}
	return out
}

func newStoreWith(base, companies []domain.ScoredChunk) *mockIndexStore {
	return &mockIndexStore{
		indexes: map[domain.IndexName]*mockChunkIndex{
			domain.IndexBase:      {name: domain.IndexBase, hits: base},
			domain.IndexCompanies: {name: domain.IndexCompanies, hits: companies},
		},
	}
}
