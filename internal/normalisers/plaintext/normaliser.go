// Package plaintext loads any non-PDF file as a single raw unit.
package plaintext

import (
	"context"
	"errors"
	"os"
	"unicode/utf8"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrNotText indicates the file is not valid UTF-8 text.
var ErrNotText = errors.New("not valid UTF-8 text")

// Normaliser reads whole files as text.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the source kind this normaliser handles.
func (n *Normaliser) Kind() domain.SourceKind {
	return domain.SourceKindText
}

// Normalise returns exactly one unit holding the full file content.
// Binary files that are not valid UTF-8 fail with a LoadError.
func (n *Normaliser) Normalise(ctx context.Context, src domain.SourceFile) ([]domain.RawUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, domain.NewLoadError(src.Path, err)
	}
	if !utf8.Valid(data) {
		return nil, domain.NewLoadError(src.Path, ErrNotText)
	}

	return []domain.RawUnit{{
		Content:  string(data),
		Metadata: domain.Metadata{domain.MetaSource: src.Path},
	}}, nil
}
