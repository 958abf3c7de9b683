// Package chunker splits merged units into fixed-size overlapping chunks.
//
// Two strategies are provided. Recursive prefers paragraph, line and word
// boundaries and only cuts mid-word when a window has no boundary left.
// Window cuts at a fixed character stride.
package chunker

import (
	"unicode/utf8"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order, coarsest boundary first.
// The empty separator splits between characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

type config struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures a splitter.
type Option func(*config)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *config) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *config) {
		c.overlap = overlap
	}
}

// WithSeparators replaces the boundary separators of the recursive strategy.
func WithSeparators(separators ...string) Option {
	return func(c *config) {
		c.separators = append([]string(nil), separators...)
	}
}

func newConfig(opts []Option) (config, error) {
	c := config{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(&c)
	}

	settings := domain.ChunkingSettings{ChunkSize: c.chunkSize, ChunkOverlap: c.overlap, MinLength: 1}
	if err := settings.Validate(); err != nil {
		return config{}, err
	}
	if len(c.separators) == 0 {
		return config{}, domain.NewConfigurationError("separators", "must not be empty")
	}
	return c, nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
