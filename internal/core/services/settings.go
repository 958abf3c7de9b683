package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyChunkStrategy    = "chunking.strategy"
	keyChunkSize        = "chunking.chunk_size"
	keyChunkOverlap     = "chunking.chunk_overlap"
	keyChunkMinLength   = "chunking.min_length"
	keyIndexBackend     = "index.backend"
	keyIndexDir         = "index.dir"
	keyIndexPostgresDSN = "index.postgres_dsn"
	keyIndexK           = "index.k"
	keyDataRawDir       = "data.raw_dir"
	keyDataReportURL    = "data.report_url"
	keyDataCompanies    = "data.companies_file"
	keyCrawlConcurrency = "crawl.concurrency"
	keyCrawlRPS         = "crawl.requests_per_second"
	keyCrawlWords       = "crawl.word_threshold"
)

// API key environment fallbacks, read when no key is configured.
//
//nolint:gosec // G101: environment variable names, not credentials.
var apiKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// The validator may be nil, in which case provider checks are skipped.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings, filling unset keys with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:       s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
		},
		Chunking: domain.ChunkingSettings{
			Strategy:     s.getString(keyChunkStrategy, d.Chunking.Strategy),
			ChunkSize:    s.getInt(keyChunkSize, d.Chunking.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, d.Chunking.ChunkOverlap),
			MinLength:    s.getInt(keyChunkMinLength, d.Chunking.MinLength),
		},
		Index: domain.IndexSettings{
			Backend:     s.getBackend(d.Index.Backend),
			Dir:         s.getString(keyIndexDir, d.Index.Dir),
			PostgresDSN: s.configStore.GetString(keyIndexPostgresDSN),
			K:           s.getInt(keyIndexK, d.Index.K),
		},
		Data: domain.DataSettings{
			RawDir:        s.getString(keyDataRawDir, d.Data.RawDir),
			ReportURL:     s.getString(keyDataReportURL, d.Data.ReportURL),
			CompaniesFile: s.getString(keyDataCompanies, d.Data.CompaniesFile),
		},
		Crawl: domain.CrawlSettings{
			Concurrency:       s.getInt(keyCrawlConcurrency, d.Crawl.Concurrency),
			RequestsPerSecond: s.getFloat(keyCrawlRPS, d.Crawl.RequestsPerSecond),
			WordThreshold:     s.getInt(keyCrawlWords, d.Crawl.WordThreshold),
		},
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = os.Getenv(apiKeyEnv[settings.Embedding.Provider])
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = os.Getenv(apiKeyEnv[settings.LLM.Provider])
	}

	return settings, nil
}

// Save persists application settings. API keys taken from the environment
// are not written to the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyChunkStrategy, settings.Chunking.Strategy},
		{keyChunkSize, settings.Chunking.ChunkSize},
		{keyChunkOverlap, settings.Chunking.ChunkOverlap},
		{keyChunkMinLength, settings.Chunking.MinLength},
		{keyIndexBackend, settings.Index.Backend.String()},
		{keyIndexDir, settings.Index.Dir},
		{keyIndexPostgresDSN, settings.Index.PostgresDSN},
		{keyIndexK, settings.Index.K},
		{keyDataRawDir, settings.Data.RawDir},
		{keyDataReportURL, settings.Data.ReportURL},
		{keyDataCompanies, settings.Data.CompaniesFile},
		{keyCrawlConcurrency, settings.Crawl.Concurrency},
		{keyCrawlRPS, settings.Crawl.RequestsPerSecond},
		{keyCrawlWords, settings.Crawl.WordThreshold},
	}

	if key := settings.Embedding.APIKey; key != "" && key != os.Getenv(apiKeyEnv[settings.Embedding.Provider]) {
		values = append(values, struct {
			key   string
			value any
		}{keyEmbedAPIKey, key})
	}
	if key := settings.LLM.APIKey; key != "" && key != os.Getenv(apiKeyEnv[settings.LLM.Provider]) {
		values = append(values, struct {
			key   string
			value any
		}{keyLLMAPIKey, key})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// setters parse a string value into one settings field.
var setters = map[string]func(*domain.AppSettings, string) error{
	keyEmbedProvider: func(a *domain.AppSettings, v string) error {
		p := domain.AIProvider(v)
		if !p.IsValid() || p == domain.AIProviderAnthropic {
			return domain.NewConfigurationError(keyEmbedProvider, "must be ollama or openai")
		}
		a.Embedding.Provider = p
		return nil
	},
	keyEmbedModel:   func(a *domain.AppSettings, v string) error { a.Embedding.Model = v; return nil },
	keyEmbedBaseURL: func(a *domain.AppSettings, v string) error { a.Embedding.BaseURL = v; return nil },
	keyEmbedAPIKey:  func(a *domain.AppSettings, v string) error { a.Embedding.APIKey = v; return nil },
	keyLLMProvider: func(a *domain.AppSettings, v string) error {
		p := domain.AIProvider(v)
		if !p.IsValid() {
			return domain.NewConfigurationError(keyLLMProvider, "must be ollama, openai or anthropic")
		}
		a.LLM.Provider = p
		return nil
	},
	keyLLMModel:   func(a *domain.AppSettings, v string) error { a.LLM.Model = v; return nil },
	keyLLMBaseURL: func(a *domain.AppSettings, v string) error { a.LLM.BaseURL = v; return nil },
	keyLLMAPIKey:  func(a *domain.AppSettings, v string) error { a.LLM.APIKey = v; return nil },
	keyLLMTemperature: func(a *domain.AppSettings, v string) error {
		return parseFloat(keyLLMTemperature, v, &a.LLM.Temperature)
	},
	keyChunkStrategy: func(a *domain.AppSettings, v string) error { a.Chunking.Strategy = v; return nil },
	keyChunkSize:     func(a *domain.AppSettings, v string) error { return parseInt(keyChunkSize, v, &a.Chunking.ChunkSize) },
	keyChunkOverlap: func(a *domain.AppSettings, v string) error {
		return parseInt(keyChunkOverlap, v, &a.Chunking.ChunkOverlap)
	},
	keyChunkMinLength: func(a *domain.AppSettings, v string) error {
		return parseInt(keyChunkMinLength, v, &a.Chunking.MinLength)
	},
	keyIndexBackend: func(a *domain.AppSettings, v string) error {
		a.Index.Backend = domain.IndexBackend(v)
		return nil
	},
	keyIndexDir:         func(a *domain.AppSettings, v string) error { a.Index.Dir = v; return nil },
	keyIndexPostgresDSN: func(a *domain.AppSettings, v string) error { a.Index.PostgresDSN = v; return nil },
	keyIndexK:           func(a *domain.AppSettings, v string) error { return parseInt(keyIndexK, v, &a.Index.K) },
	keyDataRawDir:       func(a *domain.AppSettings, v string) error { a.Data.RawDir = v; return nil },
	keyDataReportURL:    func(a *domain.AppSettings, v string) error { a.Data.ReportURL = v; return nil },
	keyDataCompanies:    func(a *domain.AppSettings, v string) error { a.Data.CompaniesFile = v; return nil },
	keyCrawlConcurrency: func(a *domain.AppSettings, v string) error {
		return parseInt(keyCrawlConcurrency, v, &a.Crawl.Concurrency)
	},
	keyCrawlRPS: func(a *domain.AppSettings, v string) error {
		return parseFloat(keyCrawlRPS, v, &a.Crawl.RequestsPerSecond)
	},
	keyCrawlWords: func(a *domain.AppSettings, v string) error {
		return parseInt(keyCrawlWords, v, &a.Crawl.WordThreshold)
	},
}

// Keys returns every settable config key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keys returns every settable config key, sorted.
func (s *SettingsService) Keys() []string {
	return Keys()
}

// Set updates a single setting by its config key. The resulting settings
// must validate before anything is persisted.
func (s *SettingsService) Set(key, value string) error {
	setter, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := setter(settings, value); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func parseInt(key, value string, dst *int) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return domain.NewConfigurationError(key, "must be an integer")
	}
	*dst = n
	return nil
}

func parseFloat(key, value string, dst *float64) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return domain.NewConfigurationError(key, "must be a number")
	}
	*dst = f
	return nil
}
