// Package merger folds short raw units into length-bounded merged units.
package merger

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Ensure Merger implements the interface.
var _ driven.Merger = (*Merger)(nil)

// DefaultMinLength is the default merge threshold in characters.
const DefaultMinLength = domain.DefaultMinLength

// Merger accumulates raw units until one is long enough on its own to
// trigger emission of everything buffered so far.
type Merger struct {
	minLength int
}

// New creates a merger with the given threshold.
// Returns a ConfigurationError if minLength is not positive.
func New(minLength int) (*Merger, error) {
	if minLength <= 0 {
		return nil, domain.NewConfigurationError("min_length", "must be positive")
	}
	return &Merger{minLength: minLength}, nil
}

// MinLength returns the merge threshold.
func (m *Merger) MinLength() int {
	return m.minLength
}

// Merge appends "\n"+content of each unit to a buffer. A unit at least
// minLength characters long emits the trimmed buffer with its own metadata
// and resets it; shorter units only accumulate. Emitted units that are still
// no longer than minLength are dropped, as is any trailing buffer.
func (m *Merger) Merge(units []domain.RawUnit) []domain.MergedUnit {
	var (
		out    []domain.MergedUnit
		buffer strings.Builder
	)

	for _, unit := range units {
		buffer.WriteString("\n")
		buffer.WriteString(unit.Content)

		// The unit's own length gates emission, not the buffer's.
		if utf8.RuneCountInString(unit.Content) < m.minLength {
			continue
		}

		content := strings.TrimSpace(buffer.String())
		buffer.Reset()

		if utf8.RuneCountInString(content) <= m.minLength {
			continue
		}
		out = append(out, domain.MergedUnit{
			Content:  content,
			Metadata: unit.Metadata.Clone(),
		})
	}

	return out
}
