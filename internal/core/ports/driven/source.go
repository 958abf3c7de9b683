package driven

import (
	"context"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// SourceWalker enumerates the files under an ingestion folder.
type SourceWalker interface {
	// Discover returns every file under folder at any depth, directories
	// excluded, in enumeration order. A missing folder is a LoadError.
	Discover(ctx context.Context, folder string) ([]domain.SourceFile, error)
}
