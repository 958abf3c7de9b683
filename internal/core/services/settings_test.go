package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chateqt/internal/core/domain"
)

type mockAIValidator struct {
	embedErr error
	llmErr   error
	embedded *domain.EmbeddingSettings
	llm      *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	m.embedded = config
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(config *domain.LLMSettings) error {
	m.llm = config
	return m.llmErr
}

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("index.backend", "postgres")
	_ = store.Set("index.k", int64(4))
	_ = store.Set("llm.temperature", 0.3)

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, domain.IndexBackendPostgres, settings.Index.Backend)
	assert.Equal(t, 4, settings.Index.K)
	assert.InDelta(t, 0.3, settings.LLM.Temperature, 1e-9)
}

func TestSettingsService_Get_ZeroOverlapIsKept(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("chunking.chunk_overlap", 0)

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, 0, settings.Chunking.ChunkOverlap)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("index.backend", "faiss")
	_ = store.Set("embedding.provider", "invalid_provider")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Index.Backend, settings.Index.Backend)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
}

func TestSettingsService_Get_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	store := memory.NewConfigStore()
	_ = store.Set("llm.provider", "anthropic")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, "env-key", settings.LLM.APIKey)
}

func TestSettingsService_Get_StoredAPIKeyWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	store := memory.NewConfigStore()
	_ = store.Set("llm.provider", "openai")
	_ = store.Set("llm.api_key", "stored-key")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, "stored-key", settings.LLM.APIKey)
}

func TestSettingsService_Save(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Embedding.Provider = domain.AIProviderOpenAI
	settings.Embedding.APIKey = "sk-test"
	settings.Chunking.ChunkSize = 1000
	settings.Chunking.ChunkOverlap = 100

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, "sk-test", store.GetString("embedding.api_key"))
	assert.Equal(t, 1000, store.GetInt("chunking.chunk_size"))
	assert.Equal(t, 100, store.GetInt("chunking.chunk_overlap"))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *loaded)
}

func TestSettingsService_Save_SkipsEnvironmentKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.LLM.Provider = domain.AIProviderOpenAI
	settings.LLM.APIKey = "env-key"

	require.NoError(t, service.Save(&settings))

	_, exists := store.Get("llm.api_key")
	assert.False(t, exists)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("index.k", "5"))
	require.NoError(t, service.Set("chunking.strategy", "window"))
	require.NoError(t, service.Set("llm.temperature", "0.7"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, settings.Index.K)
	assert.Equal(t, "window", settings.Chunking.Strategy)
	assert.InDelta(t, 0.7, settings.LLM.Temperature, 1e-9)
}

func TestSettingsService_Set_Errors(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		target error
	}{
		{"unknown key", "search.mode", "hybrid", domain.ErrInvalidInput},
		{"not an integer", "index.k", "ten", domain.ErrConfiguration},
		{"not a number", "llm.temperature", "warm", domain.ErrConfiguration},
		{"overlap too large", "chunking.chunk_overlap", "5000", domain.ErrConfiguration},
		{"unknown backend", "index.backend", "faiss", domain.ErrConfiguration},
		{"anthropic embeddings", "embedding.provider", "anthropic", domain.ErrConfiguration},
		{"zero k", "index.k", "0", domain.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			_, exists := store.Get(tt.key)
			assert.False(t, exists, "nothing persisted on failure")
		})
	}
}

func TestKeys_Sorted(t *testing.T) {
	keys := Keys()

	require.NotEmpty(t, keys)
	assert.Contains(t, keys, "index.k")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateConfig(t *testing.T) {
	t.Run("nil validator skips", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, service.ValidateEmbeddingConfig())
		assert.NoError(t, service.ValidateLLMConfig())
	})

	t.Run("passes current settings", func(t *testing.T) {
		validator := &mockAIValidator{llmErr: errors.New("unreachable")}
		service := NewSettingsService(memory.NewConfigStore(), validator)

		require.NoError(t, service.ValidateEmbeddingConfig())
		err := service.ValidateLLMConfig()

		require.Error(t, err)
		require.NotNil(t, validator.embedded)
		assert.Equal(t, domain.AIProviderOllama, validator.embedded.Provider)
		require.NotNil(t, validator.llm)
	})
}
