package driven

import (
	"context"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// Normaliser loads one kind of source file into raw units.
type Normaliser interface {
	// Kind returns the source kind this normaliser handles.
	Kind() domain.SourceKind

	// Normalise reads the file and returns its raw units in order.
	// Failures are returned as *domain.LoadError.
	Normalise(ctx context.Context, src domain.SourceFile) ([]domain.RawUnit, error)
}
