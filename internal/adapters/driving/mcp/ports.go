package mcp

import (
	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
)

// PromptLoader reads prompt templates by name.
type PromptLoader interface {
	Load(name string) (string, error)
}

// Ports aggregates the services the MCP server exposes.
type Ports struct {
	// Retrieval finds context across both indexes.
	Retrieval driving.RetrievalService

	// Answer generates grounded answers. Optional.
	Answer driving.AnswerService

	// Prompts exposes the prompt templates as resources. Optional.
	Prompts PromptLoader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
