package driven

import "github.com/custodia-labs/chateqt/internal/core/domain"

// AIConfigValidator checks provider settings against the live service.
type AIConfigValidator interface {
	// ValidateEmbedding pings the configured embedding provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the configured LLM provider.
	ValidateLLM(config *domain.LLMSettings) error
}
