// Command chateqt answers questions about AI trends and portfolio companies
// from the AI Index report and crawled company pages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/chateqt/internal/adapters/driven/ai"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/config/file"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/tokenizer"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/web"
	"github.com/custodia-labs/chateqt/internal/adapters/driving/cli"
	"github.com/custodia-labs/chateqt/internal/connectors/filesystem"
	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/core/services"
	"github.com/custodia-labs/chateqt/internal/logger"
	"github.com/custodia-labs/chateqt/internal/normalisers/pdf"
	"github.com/custodia-labs/chateqt/internal/normalisers/plaintext"
	"github.com/custodia-labs/chateqt/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; the environment may already hold the keys.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: reading .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configDir := os.Getenv("CHATEQT_CONFIG_DIR")
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}

	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading prompts: %v\n", err)
		return 1
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetRuntimeFactory(func(ctx context.Context, opts cli.RuntimeOptions) (*cli.Runtime, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		return buildRuntime(ctx, settings, prompts, opts)
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// buildRuntime wires adapters into services for one command invocation.
func buildRuntime(
	ctx context.Context,
	settings *domain.AppSettings,
	prompts *file.PromptStore,
	opts cli.RuntimeOptions,
) (*cli.Runtime, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	pipeline, err := postprocessors.NewPipelineFromSettings(settings.Chunking)
	if err != nil {
		return nil, err
	}

	assembler := services.NewPromptAssembler(tokenizer.New(settings.LLM.Model))
	if opts.WithLLM {
		template, err := prompts.Load(driven.PromptAnswer)
		if err != nil {
			return nil, fmt.Errorf("load answer prompt: %w", err)
		}
		if err := assembler.Validate(template); err != nil {
			return nil, err
		}
	}

	aiServices, err := ai.Init(settings, opts.WithLLM)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewIndexStore(ctx, settings.Index)
	if err != nil {
		aiServices.Close()
		return nil, err
	}

	ingestor := services.NewDocumentIngestor(filesystem.NewWalker(), pipeline, pdf.New(), plaintext.New())
	ingest := services.NewIngestService(ingestor, store, aiServices.EmbeddingService)
	retrieval := services.NewRetrievalService(store, aiServices.EmbeddingService, settings.Index.K)

	answer := services.NewAnswerService(
		retrieval,
		prompts,
		assembler,
		aiServices.LLMService,
	)
	answer.SetTemperature(settings.LLM.Temperature)

	companies := web.NewCompanyFile(settings.Data.CompaniesFile)
	acquire := services.NewAcquireService(
		web.NewDownloader(nil),
		web.NewCrawler(settings.Crawl),
		companies,
		settings.Data,
	)

	watcher := filesystem.New(settings.Data.RawDir)

	return &cli.Runtime{
		Data:      settings.Data,
		Ingest:    ingest,
		Retrieval: retrieval,
		Answer:    answer,
		Acquire:   acquire,
		Companies: companies,
		Prompts:   prompts,
		Watch:     watcher.Watch,
		Close: func() {
			if err := watcher.Close(); err != nil {
				logger.Debug("Closing watcher: %v", err)
			}
			if err := store.Close(); err != nil {
				logger.Warn("Closing index store: %v", err)
			}
			aiServices.Close()
		},
	}, nil
}
