package domain

import "path/filepath"

const unknownDescription = "Unknown"

// Chunking defaults.
const (
	DefaultChunkSize    = 5000
	DefaultChunkOverlap = 500
	DefaultMinLength    = 500
	DefaultRetrievalK   = 10
)

// DefaultReportURL is the AI Index report downloaded into the base folder.
const DefaultReportURL = "https://aiindex.stanford.edu/wp-content/uploads/2024/05/HAI_AI-Index-Report-2024.pdf"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects where indexes are persisted.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite stores vectors in one SQLite file per index.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendPostgres stores vectors in PostgreSQL with pgvector.
	IndexBackendPostgres IndexBackend = "postgres"

	// IndexBackendBleve stores a keyword index per index name.
	IndexBackendBleve IndexBackend = "bleve"

	// IndexBackendMemory keeps indexes in process memory only.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendPostgres, IndexBackendBleve, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if the backend searches by vector.
func (b IndexBackend) RequiresEmbedding() bool {
	return b != IndexBackendBleve
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendSQLite:
		return "SQLite (local vector files)"
	case IndexBackendPostgres:
		return "PostgreSQL + pgvector"
	case IndexBackendBleve:
		return "Bleve (local keyword index)"
	case IndexBackendMemory:
		return "Memory (not persisted)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature controls randomness; answers default to deterministic.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls merge-then-split chunking.
type ChunkingSettings struct {
	// Strategy names the splitter ("recursive" or "window").
	Strategy string

	// ChunkSize is the maximum characters per chunk.
	ChunkSize int

	// ChunkOverlap is the characters shared by adjacent chunks.
	ChunkOverlap int

	// MinLength is the merge threshold.
	MinLength int
}

// Validate checks the chunking parameters.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return NewConfigurationError("chunk_size", "must be positive")
	}
	if c.ChunkOverlap < 0 {
		return NewConfigurationError("chunk_overlap", "must not be negative")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return NewConfigurationError("chunk_overlap", "must be smaller than chunk_size")
	}
	if c.MinLength <= 0 {
		return NewConfigurationError("min_length", "must be positive")
	}
	return nil
}

// IndexSettings holds index storage configuration.
type IndexSettings struct {
	// Backend selects the storage implementation.
	Backend IndexBackend

	// Dir is the parent folder of persisted local indexes.
	Dir string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string

	// K is the number of hits requested from each index.
	K int
}

// DataSettings locates raw source folders and remote sources.
type DataSettings struct {
	// RawDir holds the base/ and companies/ source folders.
	RawDir string

	// ReportURL is the report PDF downloaded into the base folder.
	ReportURL string

	// CompaniesFile lists the company pages to crawl.
	CompaniesFile string
}

// BaseDir returns the folder ingested into the base index.
func (d DataSettings) BaseDir() string {
	return d.FolderFor(IndexBase)
}

// CompaniesDir returns the folder ingested into the companies index.
func (d DataSettings) CompaniesDir() string {
	return d.FolderFor(IndexCompanies)
}

// FolderFor returns the raw folder an index is built from.
func (d DataSettings) FolderFor(name IndexName) string {
	return filepath.Join(d.RawDir, string(name))
}

// CrawlSettings controls company page fetching.
type CrawlSettings struct {
	// Concurrency is the maximum number of pages fetched at once.
	Concurrency int

	// RequestsPerSecond throttles fetches across all workers.
	RequestsPerSecond float64

	// WordThreshold drops text blocks with fewer words.
	WordThreshold int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunking  ChunkingSettings
	Index     IndexSettings
	Data      DataSettings
	Crawl     CrawlSettings
}

// Validate checks settings that must hold before any I/O.
func (s AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if !s.Index.Backend.IsValid() {
		return NewConfigurationError("index.backend", "must be one of sqlite, postgres, bleve, memory")
	}
	if s.Index.K <= 0 {
		return NewConfigurationError("index.k", "must be positive")
	}
	if s.Index.Backend == IndexBackendPostgres && s.Index.PostgresDSN == "" {
		return NewConfigurationError("index.postgres_dsn", "is required for the postgres backend")
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// Embedding and LLM default to a local Ollama instance.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		Chunking: ChunkingSettings{
			Strategy:     "recursive",
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
			MinLength:    DefaultMinLength,
		},
		Index: IndexSettings{
			Backend: IndexBackendSQLite,
			Dir:     "data/embeddings",
			K:       DefaultRetrievalK,
		},
		Data: DataSettings{
			RawDir:        "data/raw",
			ReportURL:     DefaultReportURL,
			CompaniesFile: "companies.yaml",
		},
		Crawl: CrawlSettings{
			Concurrency:       4,
			RequestsPerSecond: 2,
			WordThreshold:     15,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllIndexBackends returns the available index backends.
func AllIndexBackends() []IndexBackend {
	return []IndexBackend{
		IndexBackendSQLite,
		IndexBackendPostgres,
		IndexBackendBleve,
		IndexBackendMemory,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
