// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants retrieve context from the report and company
// indexes and ask grounded questions.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrAnswerUnavailable is returned by the ask tool when no LLM is configured.
var ErrAnswerUnavailable = errors.New("mcp: answering is not configured")
