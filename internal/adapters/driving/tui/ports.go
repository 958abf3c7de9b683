// Package tui provides the interactive chat terminal interface.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
)

// PromptReloader drops cached prompt templates so edits take effect.
type PromptReloader interface {
	Reload()
}

// Ports aggregates the services the chat needs.
type Ports struct {
	// Answer answers questions from retrieved context.
	Answer driving.AnswerService

	// Prompts is reloaded by the /reload command. Optional.
	Prompts PromptReloader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
