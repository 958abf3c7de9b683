// Package cli provides the chateqt command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "chateqt",
	Short: "Chat with the AI Index report and portfolio company pages",
	Long: `chateqt answers questions about AI trends and portfolio companies.

It downloads the AI Index report and crawls company pages, builds two
indexes (base and companies), and answers questions from the ten closest
chunks of each index.

Typical flow:
  chateqt download
  chateqt ingest
  chateqt ask "Which industries adopted generative AI fastest?"
  chateqt chat`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Runtime bundles the services built from the current settings.
type Runtime struct {
	// Data locates the raw source folders.
	Data domain.DataSettings

	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Acquire   driving.AcquireService

	// Companies lists the pages to crawl.
	Companies driven.CompanySource

	// Prompts serves and reloads prompt templates.
	Prompts driven.PromptStore

	// Watch reports changes under the raw folder. Optional.
	Watch func(ctx context.Context) (<-chan domain.SourceChange, error)

	// Close releases the index store and AI clients. Optional.
	Close func()
}

// RuntimeOptions selects which parts of the runtime are needed.
type RuntimeOptions struct {
	// WithLLM requires a configured LLM provider.
	WithLLM bool
}

// RuntimeFactory builds a Runtime from the current settings.
type RuntimeFactory func(ctx context.Context, opts RuntimeOptions) (*Runtime, error)

var (
	settingsService driving.SettingsService
	runtimeFactory  RuntimeFactory
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the service used by the settings commands.
func SetSettingsService(svc driving.SettingsService) {
	settingsService = svc
}

// SetRuntimeFactory sets how commands build their services.
func SetRuntimeFactory(factory RuntimeFactory) {
	runtimeFactory = factory
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime builds the runtime for a command. The caller must call
// closeRuntime when done.
func loadRuntime(cmd *cobra.Command, withLLM bool) (*Runtime, error) {
	if runtimeFactory == nil {
		return nil, errors.New("services not configured")
	}
	return runtimeFactory(commandContext(cmd), RuntimeOptions{WithLLM: withLLM})
}

func closeRuntime(rt *Runtime) {
	if rt != nil && rt.Close != nil {
		rt.Close()
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
