package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chateqt/internal/adapters/driven/search/bleve"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/chateqt/internal/core/domain"
)

func TestNewIndexStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		backend domain.IndexBackend
		want    any
	}{
		{"sqlite", domain.IndexBackendSQLite, &sqlite.IndexStore{}},
		{"bleve", domain.IndexBackendBleve, &bleve.IndexStore{}},
		{"memory", domain.IndexBackendMemory, &memory.IndexStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewIndexStore(ctx, domain.IndexSettings{Backend: tt.backend, Dir: t.TempDir(), K: 10})
			require.NoError(t, err)
			defer store.Close()
			assert.IsType(t, tt.want, store)

			_, err = store.Open(ctx, domain.IndexBase)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestNewIndexStore_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewIndexStore(ctx, domain.IndexSettings{Backend: "faiss"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = NewIndexStore(ctx, domain.IndexSettings{Backend: domain.IndexBackendPostgres})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewIndexStore(ctx, domain.IndexSettings{Backend: domain.IndexBackendSQLite})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
