package driving

import (
	"context"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// IngestService turns source folders into chunks and builds indexes from them.
type IngestService interface {
	// ParseDocuments returns the chunks of every file under folder.
	ParseDocuments(ctx context.Context, folder string) ([]domain.Chunk, error)

	// Build replaces the named index with the chunks parsed from folder.
	Build(ctx context.Context, name domain.IndexName, folder string) (*domain.BuildReport, error)
}
