package cli

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

type mockIngestService struct {
	mu     sync.Mutex
	builds []domain.IndexName
	err    error
}

func (m *mockIngestService) Builds() []domain.IndexName {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.IndexName(nil), m.builds...)
}

func (m *mockIngestService) ParseDocuments(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockIngestService) Build(_ context.Context, name domain.IndexName, folder string) (*domain.BuildReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	m.builds = append(m.builds, name)
	m.mu.Unlock()
	return &domain.BuildReport{Index: name, Folder: folder, Files: 2, Chunks: 7, Duration: time.Second}, nil
}

type mockRetrievalService struct {
	docs domain.Context
	err  error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string) (domain.Context, error) {
	return m.docs, m.err
}

type mockAnswerService struct {
	err error
}

func (m *mockAnswerService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{
		Question: question,
		Text:     "Foundation models dominate.",
		Sources:  testDocs(),
		Prompt:   domain.Prompt{Text: "prompt", Tokens: 42},
	}, nil
}

type mockAcquireService struct {
	downloads int
	crawled   []domain.Company
	outDir    string
	err       error
}

func (m *mockAcquireService) Download(_ context.Context) error {
	m.downloads++
	return m.err
}

func (m *mockAcquireService) Crawl(_ context.Context, companies []domain.Company, outDir string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.crawled = companies
	m.outDir = outDir
	return []string{outDir + "/acme-0.md"}, nil
}

type mockCompanySource struct {
	companies []domain.Company
	err       error
}

func (m *mockCompanySource) Companies() ([]domain.Company, error) {
	return m.companies, m.err
}

type mockPromptStore struct{}

func (m *mockPromptStore) Load(_ string) (string, error) { return "{context} {question}", nil }
func (m *mockPromptStore) Reload()                      {}

var _ driven.PromptStore = (*mockPromptStore)(nil)

type mockSettingsService struct {
	settings domain.AppSettings
	setKey      string
	setValue    string
	err         error
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return m.err
}

func (m *mockSettingsService) Set(key, value string) error {
	m.setKey = key
	m.setValue = value
	return m.err
}

func (m *mockSettingsService) Keys() []string {
	return []string{"index.backend", "index.k"}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.validateErr }
func (m *mockSettingsService) ValidateLLMConfig() error       { return m.validateErr }

func testDocs() domain.Context {
	return domain.Context{
		{
			Index:     domain.IndexBase,
			Content:   "page-number 3: Generative AI investment grew.",
			PageLabel: "3",
			Score:     0.91,
			Metadata:  domain.Metadata{domain.MetaSource: "data/raw/base/index_info.pdf"},
		},
		{
			Index:    domain.IndexCompanies,
			Content:  "Acme builds robots.",
			Score:    0.72,
			Metadata: domain.Metadata{domain.MetaSource: "data/raw/companies/acme-0.md"},
		},
	}
}

// testRuntime holds the doubles behind the runtime handed to commands.
type testRuntime struct {
	ingest    *mockIngestService
	retrieval *mockRetrievalService
	answer    *mockAnswerService
	acquire   *mockAcquireService
	companies *mockCompanySource
	runtime   *Runtime
	withLLM   []bool
	closed    int
}

// setupTestServices installs test doubles and returns a restore func.
func setupTestServices() (*testRuntime, func()) {
	tr := &testRuntime{
		ingest:    &mockIngestService{},
		retrieval: &mockRetrievalService{docs: testDocs()},
		answer:    &mockAnswerService{},
		acquire:   &mockAcquireService{},
		companies: &mockCompanySource{companies: []domain.Company{
			{Name: "Acme", URLs: []string{"https://acme.example"}},
		}},
	}
	tr.runtime = &Runtime{
		Data:      domain.DataSettings{RawDir: "data/raw"},
		Ingest:    tr.ingest,
		Retrieval: tr.retrieval,
		Answer:    tr.answer,
		Acquire:   tr.acquire,
		Companies: tr.companies,
		Prompts:   &mockPromptStore{},
		Close:     func() { tr.closed++ },
	}

	oldFactory := runtimeFactory
	oldSettings := settingsService
	runtimeFactory = func(_ context.Context, opts RuntimeOptions) (*Runtime, error) {
		tr.withLLM = append(tr.withLLM, opts.WithLLM)
		return tr.runtime, nil
	}
	settingsService = newMockSettingsService()

	return tr, func() {
		runtimeFactory = oldFactory
		settingsService = oldSettings
	}
}
