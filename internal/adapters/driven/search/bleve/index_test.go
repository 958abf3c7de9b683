package bleve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

func setupTestStore(t *testing.T) *IndexStore {
	t.Helper()
	store, err := NewIndexStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIndexStore_OpenMissing(t *testing.T) {
	_, err := setupTestStore(t).Open(context.Background(), domain.IndexBase)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexStore_EmptyDir(t *testing.T) {
	_, err := NewIndexStore("")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestChunkIndex_KeywordSearch(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	idx, err := store.Create(ctx, domain.IndexBase)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		{ID: "a", Content: "Foundation models dominate research output", Position: 0,
			Metadata: domain.Metadata{domain.MetaPageLabel: "12", domain.MetaPage: 11}},
		{ID: "b", Content: "Robotics startups raised record funding", Position: 1},
		{ID: "c", Content: "Cooking recipes for the weekend", Position: 2},
	}))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	hits, err := idx.SimilaritySearch(ctx, domain.Query{Text: "foundation models"}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "a", hits[0].Chunk.ID)
	assert.Equal(t, "Foundation models dominate research output", hits[0].Chunk.Content)
	label, ok := hits[0].Chunk.Metadata.PageLabel()
	require.True(t, ok)
	assert.Equal(t, "12", label)

	hits, err = idx.SimilaritySearch(ctx, domain.Query{Text: "funding"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Chunk.Position)
	assert.Nil(t, hits[0].Chunk.Metadata)
}

func TestChunkIndex_SearchLimit(t *testing.T) {
	ctx := context.Background()
	idx, err := setupTestStore(t).Create(ctx, domain.IndexCompanies)
	require.NoError(t, err)

	chunks := make([]domain.Chunk, 0, 150)
	for i := range 150 {
		chunks = append(chunks, domain.Chunk{ID: string(rune('A'+i%26)) + string(rune('a'+i/26)), Content: "agent benchmark"})
	}
	require.NoError(t, idx.Add(ctx, chunks))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 150, count)

	hits, err := idx.SimilaritySearch(ctx, domain.Query{Text: "agent"}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 10)
}

func TestChunkIndex_SearchRequiresText(t *testing.T) {
	ctx := context.Background()
	idx, err := setupTestStore(t).Create(ctx, domain.IndexBase)
	require.NoError(t, err)

	_, err = idx.SimilaritySearch(ctx, domain.Query{Vector: []float32{1}}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexStore_ReopenAndReplace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewIndexStore(dir)
	require.NoError(t, err)
	idx, err := first.Create(ctx, domain.IndexBase)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, []domain.Chunk{{ID: "a", Content: "alpha"}}))
	require.NoError(t, first.Close())

	second, err := NewIndexStore(dir)
	require.NoError(t, err)
	defer second.Close()

	opened, err := second.Open(ctx, domain.IndexBase)
	require.NoError(t, err)
	count, err := opened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	fresh, err := second.Create(ctx, domain.IndexBase)
	require.NoError(t, err)
	count, err = fresh.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.Replace(ctx, domain.IndexBase, []domain.Chunk{
		{ID: "a", Content: "Foundation models dominate research output"},
		{ID: "b", Content: "Robotics startups raised record funding", Position: 1},
	})
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Replace(canceled, domain.IndexBase, []domain.Chunk{{ID: "c", Content: "Cooking recipes"}})
	require.ErrorIs(t, err, context.Canceled)

	opened, err := store.Open(ctx, domain.IndexBase)
	require.NoError(t, err)
	count, err := opened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	hits, err := opened.SimilaritySearch(ctx, domain.Query{Text: "funding"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].Chunk.ID)
	assert.NoDirExists(t, store.PathFor(domain.IndexBase)+".staging")
}
