package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/chateqt/internal/core/domain"
)

func setupTestStore(t *testing.T) *IndexStore {
	t.Helper()
	store, err := NewIndexStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "a", Content: "alpha", Position: 0, Embedding: []float32{1, 0, 0},
			Metadata: domain.Metadata{domain.MetaSource: "r.pdf", domain.MetaPage: 2, domain.MetaPageLabel: "3"}},
		{ID: "b", Content: "beta", Position: 1, Embedding: []float32{0, 1, 0},
			Metadata: domain.Metadata{domain.MetaSource: "r.pdf"}},
		{ID: "c", Content: "gamma", Position: 2, Embedding: []float32{0.9, 0.1, 0}},
	}
}

func TestNewIndexStore_EmptyDir(t *testing.T) {
	_, err := NewIndexStore("")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestIndexStore_OpenMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Open(context.Background(), domain.IndexBase)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, statErr := os.Stat(store.PathFor(domain.IndexBase))
	assert.True(t, os.IsNotExist(statErr), "open must not create the database")
}

func TestIndexStore_SeparateFiles(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.Create(ctx, domain.IndexBase)
	require.NoError(t, err)
	_, err = store.Create(ctx, domain.IndexCompanies)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(store.Dir(), "base", DBFileName))
	assert.FileExists(t, filepath.Join(store.Dir(), "companies", DBFileName))
}

func TestChunkIndex_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	idx, err := store.Create(ctx, domain.IndexBase)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, testChunks()))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	hits, err := idx.SimilaritySearch(ctx, domain.Query{Vector: []float32{1, 0, 0}}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Chunk.ID)
	assert.Equal(t, "c", hits[1].Chunk.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)

	label, ok := hits[0].Chunk.Metadata.PageLabel()
	require.True(t, ok)
	assert.Equal(t, "3", label)
	page, ok := hits[0].Chunk.Metadata.Int(domain.MetaPage)
	require.True(t, ok)
	assert.Equal(t, 2, page)
	assert.Equal(t, []float32{1, 0, 0}, hits[0].Chunk.Embedding)
}

func TestChunkIndex_PersistsAcrossStores(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewIndexStore(dir)
	require.NoError(t, err)
	idx, err := first.Create(ctx, domain.IndexCompanies)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, testChunks()))
	require.NoError(t, first.Close())

	second, err := NewIndexStore(dir)
	require.NoError(t, err)
	defer second.Close()

	reopened, err := second.Open(ctx, domain.IndexCompanies)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexCompanies, reopened.Name())

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = second.Open(ctx, domain.IndexBase)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexStore_CreateReplaces(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	idx, err := store.Create(ctx, domain.IndexBase)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, testChunks()))

	fresh, err := store.Create(ctx, domain.IndexBase)
	require.NoError(t, err)

	count, err := fresh.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	opened, err := store.Open(ctx, domain.IndexBase)
	require.NoError(t, err)
	assert.Same(t, fresh, opened)
}

func TestChunkIndex_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch", func(t *testing.T) {
		idx, err := setupTestStore(t).Create(ctx, domain.IndexBase)
		require.NoError(t, err)
		require.NoError(t, idx.Add(ctx, nil))
	})

	t.Run("missing embedding", func(t *testing.T) {
		idx, err := setupTestStore(t).Create(ctx, domain.IndexBase)
		require.NoError(t, err)
		err = idx.Add(ctx, []domain.Chunk{{ID: "x", Content: "x"}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("dimension mismatch across batches", func(t *testing.T) {
		idx, err := setupTestStore(t).Create(ctx, domain.IndexBase)
		require.NoError(t, err)
		require.NoError(t, idx.Add(ctx, testChunks()))

		err = idx.Add(ctx, []domain.Chunk{{ID: "d", Embedding: []float32{1, 2}}})
		assert.ErrorIs(t, err, ranking.ErrDimensionMismatch)

		count, err := idx.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("same id overwrites", func(t *testing.T) {
		idx, err := setupTestStore(t).Create(ctx, domain.IndexBase)
		require.NoError(t, err)
		require.NoError(t, idx.Add(ctx, testChunks()))
		require.NoError(t, idx.Add(ctx, []domain.Chunk{{ID: "a", Content: "new", Embedding: []float32{0, 0, 1}}}))

		count, err := idx.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestChunkIndex_SearchRequiresVector(t *testing.T) {
	ctx := context.Background()
	idx, err := setupTestStore(t).Create(ctx, domain.IndexBase)
	require.NoError(t, err)

	_, err = idx.SimilaritySearch(ctx, domain.Query{Text: "agents"}, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChunkIndex_SearchEmpty(t *testing.T) {
	ctx := context.Background()
	idx, err := setupTestStore(t).Create(ctx, domain.IndexBase)
	require.NoError(t, err)

	hits, err := idx.SimilaritySearch(ctx, domain.Query{Vector: []float32{1, 0}}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DBFileName)

	db, err := openDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = openDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var versions int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

func TestIndexStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.Replace(ctx, domain.IndexBase, testChunks())
	require.NoError(t, err)

	idx, err := store.Replace(ctx, domain.IndexBase, testChunks()[:1])
	require.NoError(t, err)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	opened, err := store.Open(ctx, domain.IndexBase)
	require.NoError(t, err)
	assert.Same(t, idx, opened)
	assert.NoDirExists(t, filepath.Join(store.Dir(), "base.staging"))
	assert.NoDirExists(t, filepath.Join(store.Dir(), "base.old"))
}

func TestIndexStore_ReplaceFailureKeepsIndex(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.Replace(ctx, domain.IndexBase, testChunks())
	require.NoError(t, err)

	_, err = store.Replace(ctx, domain.IndexBase, []domain.Chunk{{ID: "x", Content: "no vector"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	opened, err := store.Open(ctx, domain.IndexBase)
	require.NoError(t, err)
	count, err := opened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoDirExists(t, filepath.Join(store.Dir(), "base.staging"))
}
