package chunker

import (
	"github.com/google/uuid"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Ensure Window implements the interface.
var _ driven.Splitter = (*Window)(nil)

// Window cuts text into fixed-size windows with a stride of
// chunkSize - overlap characters, ignoring word boundaries.
type Window struct {
	config
}

// NewWindow creates a fixed-stride splitter.
// Returns a ConfigurationError for non-positive sizes or overlap >= size.
func NewWindow(opts ...Option) (*Window, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Window{config: c}, nil
}

// Name returns the strategy name.
func (w *Window) Name() string {
	return "window"
}

// Split returns the chunks of every unit in order.
func (w *Window) Split(units []domain.MergedUnit) []domain.Chunk {
	var chunks []domain.Chunk
	for _, unit := range units {
		for i, text := range w.SplitText(unit.Content) {
			chunks = append(chunks, domain.Chunk{
				ID:       uuid.New().String(),
				Content:  text,
				Position: i,
				Metadata: unit.Metadata.Clone(),
			})
		}
	}
	return chunks
}

// SplitText cuts one text into windows.
func (w *Window) SplitText(text string) []string {
	if text == "" {
		return nil
	}

	content := []rune(text)
	stride := w.chunkSize - w.overlap
	windows := make([]string, 0, len(content)/stride+1)

	for start := 0; start < len(content); start += stride {
		end := start + w.chunkSize
		if end > len(content) {
			end = len(content)
		}
		windows = append(windows, string(content[start:end]))
		if end == len(content) {
			break
		}
	}
	return windows
}
