package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

func TestNewRetrievalService_DefaultK(t *testing.T) {
	assert.Equal(t, domain.DefaultRetrievalK, NewRetrievalService(nil, nil, 0).K())
	assert.Equal(t, domain.DefaultRetrievalK, NewRetrievalService(nil, nil, -3).K())
	assert.Equal(t, 4, NewRetrievalService(nil, nil, 4).K())
}

func TestRetrievalService_Retrieve_BaseThenCompanies(t *testing.T) {
	store := newStoreWith(
		hits("base", 2, domain.Metadata{domain.MetaSource: "r.pdf", domain.MetaPageLabel: "7"}),
		hits("co", 3, domain.Metadata{domain.MetaSource: "acme-1.md"}),
	)
	service := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1, 0}}, 10)

	result, err := service.Retrieve(context.Background(), "what is the trend?")

	require.NoError(t, err)
	require.Len(t, result, 5)
	for i, doc := range result {
		if i < 2 {
			assert.Equal(t, domain.IndexBase, doc.Index)
		} else {
			assert.Equal(t, domain.IndexCompanies, doc.Index)
		}
	}
	assert.Len(t, result.FromIndex(domain.IndexBase), 2)
	assert.Len(t, result.FromIndex(domain.IndexCompanies), 3)
}

func TestRetrievalService_Retrieve_PagePrefix(t *testing.T) {
	store := newStoreWith(
		hits("base", 1, domain.Metadata{domain.MetaPageLabel: "12"}),
		hits("co", 1, domain.Metadata{domain.MetaSource: "acme-1.md"}),
	)
	service := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1}}, 10)

	result, err := service.Retrieve(context.Background(), "q")

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "page-number 12: base chunk a", result[0].Content)
	assert.Equal(t, "12", result[0].PageLabel)
	assert.Equal(t, "co chunk a", result[1].Content)
	assert.Empty(t, result[1].PageLabel)
	assert.False(t, strings.HasPrefix(result[1].Content, "page-number"))
}

func TestRetrievalService_Retrieve_AtMostKPerIndex(t *testing.T) {
	store := newStoreWith(hits("base", 15, nil), hits("co", 15, nil))
	service := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1}}, 10)

	result, err := service.Retrieve(context.Background(), "q")

	require.NoError(t, err)
	assert.Len(t, result, 20)
	assert.Len(t, result.FromIndex(domain.IndexBase), 10)
}

func TestRetrievalService_Retrieve_EmptyIsNotAnError(t *testing.T) {
	store := newStoreWith(nil, nil)
	service := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{1}}, 10)

	result, err := service.Retrieve(context.Background(), "q")

	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Equal(t, "", result.String())
}

func TestRetrievalService_Retrieve_SharesQueryEmbedding(t *testing.T) {
	store := newStoreWith(nil, nil)
	service := NewRetrievalService(store, &mockEmbeddingService{embedding: []float32{0.5, 0.5}}, 10)

	_, err := service.Retrieve(context.Background(), "shared")
	require.NoError(t, err)

	for _, name := range domain.AllIndexes() {
		queries := store.indexes[name].queries
		require.Len(t, queries, 1)
		assert.Equal(t, "shared", queries[0].Text)
		assert.Equal(t, []float32{0.5, 0.5}, queries[0].Vector)
	}
}

func TestRetrievalService_Retrieve_KeywordWithoutEmbedder(t *testing.T) {
	store := newStoreWith(hits("base", 1, nil), nil)
	service := NewRetrievalService(store, nil, 10)

	result, err := service.Retrieve(context.Background(), "keyword")

	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Nil(t, store.indexes[domain.IndexBase].queries[0].Vector)
}

func TestRetrievalService_Retrieve_IndexUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		store   func() *mockIndexStore
		failing domain.IndexName
	}{
		{
			name: "companies never built",
			store: func() *mockIndexStore {
				s := newStoreWith(hits("base", 2, nil), nil)
				delete(s.indexes, domain.IndexCompanies)
				return s
			},
			failing: domain.IndexCompanies,
		},
		{
			name: "base cannot open",
			store: func() *mockIndexStore {
				s := newStoreWith(nil, hits("co", 2, nil))
				s.openErr = map[domain.IndexName]error{domain.IndexBase: errors.New("corrupt")}
				return s
			},
			failing: domain.IndexBase,
		},
		{
			name: "companies search fails",
			store: func() *mockIndexStore {
				s := newStoreWith(hits("base", 2, nil), nil)
				s.indexes[domain.IndexCompanies].searchErr = errors.New("disk error")
				return s
			},
			failing: domain.IndexCompanies,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewRetrievalService(tt.store(), &mockEmbeddingService{embedding: []float32{1}}, 10)

			result, err := service.Retrieve(context.Background(), "q")

			require.Error(t, err)
			assert.Nil(t, result, "no partial result from the healthy index")
			assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
			var unavailable *domain.IndexUnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Equal(t, tt.failing, unavailable.Index)
		})
	}
}

func TestRetrievalService_Retrieve_NoStore(t *testing.T) {
	service := NewRetrievalService(nil, nil, 10)

	_, err := service.Retrieve(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestRetrievalService_Retrieve_ContextErrorUnchanged(t *testing.T) {
	store := newStoreWith(nil, nil)
	store.indexes[domain.IndexBase].searchErr = context.DeadlineExceeded
	service := NewRetrievalService(store, nil, 10)

	_, err := service.Retrieve(context.Background(), "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestRetrievalService_Retrieve_EmbedError(t *testing.T) {
	store := newStoreWith(nil, nil)
	service := NewRetrievalService(store, &mockEmbeddingService{embedErr: errors.New("ollama down")}, 10)

	_, err := service.Retrieve(context.Background(), "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed question")
}
