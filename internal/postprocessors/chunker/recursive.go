package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Ensure Recursive implements the interface.
var _ driven.Splitter = (*Recursive)(nil)

// Recursive splits on the coarsest separator present in the text, recurses
// into pieces that are still too long, and greedily packs pieces into
// windows of at most chunkSize characters. Each window after the first
// starts with the trailing pieces of the previous one, up to overlap
// characters.
type Recursive struct {
	config
}

// NewRecursive creates a recursive splitter.
// Returns a ConfigurationError for non-positive sizes or overlap >= size.
func NewRecursive(opts ...Option) (*Recursive, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Recursive{config: c}, nil
}

// Name returns the strategy name.
func (r *Recursive) Name() string {
	return "recursive"
}

// Split returns the chunks of every unit in order. Metadata is copied
// unchanged onto each chunk; Position restarts at zero for each unit.
func (r *Recursive) Split(units []domain.MergedUnit) []domain.Chunk {
	var chunks []domain.Chunk
	for _, unit := range units {
		for i, text := range r.SplitText(unit.Content) {
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

// SplitText splits one text into windows.
func (r *Recursive) SplitText(text string) []string {
	return r.split(text, r.separators)
}

func (r *Recursive) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			finer = separators[i+1:]
			break
		}
	}

	var out, small []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < r.chunkSize {
			small = append(small, piece)
			continue
		}
		if len(small) > 0 {
			out = append(out, r.pack(small)...)
			small = nil
		}
		if len(finer) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, r.split(piece, finer)...)
		}
	}
	if len(small) > 0 {
		out = append(out, r.pack(small)...)
	}
	return out
}

// pack merges pieces into windows, carrying trailing pieces into the next
// window while they fit in the overlap.
func (r *Recursive) pack(pieces []string) []string {
	var (
		windows []string
		current []string
		lengths []int
		total   int
	)

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > r.chunkSize && len(current) > 0 {
			if w := strings.TrimSpace(strings.Join(current, "")); w != "" {
				windows = append(windows, w)
			}
			for total > r.overlap || (total+n > r.chunkSize && total > 0) {
				total -= lengths[0]
				current, lengths = current[1:], lengths[1:]
			}
		}
		current = append(current, piece)
		lengths = append(lengths, n)
		total += n
	}

	if w := strings.TrimSpace(strings.Join(current, "")); w != "" {
		windows = append(windows, w)
	}
	return windows
}

// splitKeepingSeparator splits text on separator and re-attaches the
// separator to the start of each following piece. Empty pieces are dropped.
func splitKeepingSeparator(text, separator string) []string {
	if separator == "" {
		pieces := make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, separator)
	pieces := make([]string, 0, len(parts))
	if parts[0] != "" {
		pieces = append(pieces, parts[0])
	}
	for _, part := range parts[1:] {
		pieces = append(pieces, separator+part)
	}
	return pieces
}
