package driving

import "github.com/custodia-labs/chateqt/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its config key.
	Set(key, value string) error

	// Keys lists the config keys accepted by Set.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig checks the configured embedding provider is reachable.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig checks the configured LLM provider is reachable.
	ValidateLLMConfig() error
}
