// Package tokenizer counts prompt tokens with tiktoken.
package tokenizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// Verify interface compliance.
var _ driven.TokenCounter = (*Counter)(nil)

// DefaultModel is used when the configured model has no known encoding.
const DefaultModel = "gpt-3.5-turbo"

// runesPerToken approximates the tokenizer when no encoding is available.
const runesPerToken = 4

// Counter counts tokens with the encoding of a model. The encoding is
// loaded on first use; if it cannot be loaded, counts are estimated from
// the rune length.
type Counter struct {
	load func() (*tiktoken.Tiktoken, error)

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// New creates a counter for model, falling back to DefaultModel's encoding.
func New(model string) *Counter {
	return newCounter(func() (*tiktoken.Tiktoken, error) {
		enc, err := tiktoken.EncodingForModel(model)
		if err == nil {
			return enc, nil
		}
		logger.Debug("No tiktoken encoding for %q, using %s", model, DefaultModel)
		return tiktoken.EncodingForModel(DefaultModel)
	})
}

func newCounter(load func() (*tiktoken.Tiktoken, error)) *Counter {
	return &Counter{load: load}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	c.once.Do(func() {
		enc, err := c.load()
		if err != nil {
			logger.Warn("Token encoding unavailable, estimating: %v", err)
			return
		}
		c.enc = enc
	})

	if c.enc == nil {
		return Estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Estimate approximates a token count as one token per four runes.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + runesPerToken - 1) / runesPerToken
}
