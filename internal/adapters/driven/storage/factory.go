// Package storage selects the index backend named in settings.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/chateqt/internal/adapters/driven/search/bleve"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// NewIndexStore creates the IndexStore for settings.Backend.
func NewIndexStore(ctx context.Context, settings domain.IndexSettings) (driven.IndexStore, error) {
	logger.Debug("Index backend: %s (dir=%s)", settings.Backend, settings.Dir)

	switch settings.Backend {
	case domain.IndexBackendSQLite:
		return sqlite.NewIndexStore(settings.Dir)
	case domain.IndexBackendPostgres:
		return postgres.NewIndexStore(ctx, settings.PostgresDSN)
	case domain.IndexBackendBleve:
		return bleve.NewIndexStore(settings.Dir)
	case domain.IndexBackendMemory:
		return memory.NewIndexStore(), nil
	default:
		return nil, fmt.Errorf("%w: index backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}
