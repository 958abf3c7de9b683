package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown backend, provider or strategy.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLoad indicates a source file could not be parsed by its loader.
	// Ingestion for the current call aborts; no partial output is returned.
	ErrLoad = errors.New("load failed")

	// ErrConfiguration indicates invalid chunking parameters or settings.
	// Raised before any I/O takes place.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrIndexUnavailable indicates a named index cannot be opened or queried.
	// Retrieval never falls back to the other index.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrTemplateBinding indicates a prompt template does not bind exactly
	// the expected placeholders.
	ErrTemplateBinding = errors.New("template binding failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector indexes cannot be built or queried without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// LoadError reports a source file that its selected loader could not parse.
type LoadError struct {
	Path string
	Err  error
}

// NewLoadError wraps err as a LoadError for path.
func NewLoadError(path string, err error) *LoadError {
	return &LoadError{Path: path, Err: err}
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: failed", e.Path)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error { return e.Err }

// Is reports whether target is ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// ConfigurationError reports an invalid configuration value.
type ConfigurationError struct {
	Field  string
	Reason string
}

// NewConfigurationError creates a ConfigurationError for field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// IndexUnavailableError reports a named index that could not be opened or queried.
type IndexUnavailableError struct {
	Index IndexName
	Err   error
}

// NewIndexUnavailableError wraps err as an IndexUnavailableError for index.
func NewIndexUnavailableError(index IndexName, err error) *IndexUnavailableError {
	return &IndexUnavailableError{Index: index, Err: err}
}

func (e *IndexUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("index %q unavailable", e.Index)
	}
	return fmt.Sprintf("index %q unavailable: %v", e.Index, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IndexUnavailableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIndexUnavailable.
func (e *IndexUnavailableError) Is(target error) bool { return target == ErrIndexUnavailable }

// TemplateBindingError lists the placeholders a template failed to bind.
type TemplateBindingError struct {
	// Missing are required placeholders absent from the template.
	Missing []string

	// Unexpected are placeholders the template declares but nothing binds.
	Unexpected []string
}

func (e *TemplateBindingError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unbound "+strings.Join(e.Unexpected, ", "))
	}
	if len(parts) == 0 {
		return ErrTemplateBinding.Error()
	}
	return fmt.Sprintf("%s: %s", ErrTemplateBinding, strings.Join(parts, "; "))
}

// Is reports whether target is ErrTemplateBinding.
func (e *TemplateBindingError) Is(target error) bool { return target == ErrTemplateBinding }
