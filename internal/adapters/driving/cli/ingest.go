package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// watchDebounce collects bursts of file events into one rebuild.
const watchDebounce = 2 * time.Second

var (
	ingestIndex string
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the base and companies indexes",
	Long: `Parses every file in the raw base and companies folders, merges short
pages, splits them into overlapping chunks and replaces each index with the
result. An index is only replaced once every file in its folder has loaded.

With --watch the command keeps running and rebuilds an index whenever a file
in its folder changes.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestIndex, "index", "i", "", "build only this index (base or companies)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "rebuild indexes when their source files change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	names, err := selectedIndexes(ingestIndex)
	if err != nil {
		return err
	}

	rt, err := loadRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	ctx := commandContext(cmd)
	for _, name := range names {
		if err := buildIndex(ctx, cmd, rt, name); err != nil {
			return err
		}
	}

	if !ingestWatch {
		return nil
	}
	return watchAndRebuild(ctx, cmd, rt, names)
}

func selectedIndexes(flag string) ([]domain.IndexName, error) {
	if flag == "" {
		return domain.AllIndexes(), nil
	}
	name := domain.IndexName(flag)
	if !name.IsValid() {
		return nil, fmt.Errorf("%w: unknown index %q (want base or companies)", domain.ErrInvalidInput, flag)
	}
	return []domain.IndexName{name}, nil
}

func buildIndex(ctx context.Context, cmd *cobra.Command, rt *Runtime, name domain.IndexName) error {
	folder := rt.Data.FolderFor(name)
	cmd.Printf("Building %s index from %s...\n", name, folder)

	report, err := rt.Ingest.Build(ctx, name, folder)
	if err != nil {
		return fmt.Errorf("build %s failed: %w", name, err)
	}

	cmd.Printf("Indexed %d chunks from %d files into %s (%s).\n",
		report.Chunks, report.Files, name, report.Duration.Round(time.Millisecond))
	return nil
}

// watchAndRebuild rebuilds indexes whose folders change until ctx is done.
func watchAndRebuild(ctx context.Context, cmd *cobra.Command, rt *Runtime, names []domain.IndexName) error {
	if rt.Watch == nil {
		return fmt.Errorf("%w: watching is not supported", domain.ErrUnsupportedType)
	}

	changes, err := rt.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Printf("Watching %s for changes (ctrl+c to stop)...\n", rt.Data.RawDir)

	wanted := make(map[domain.IndexName]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	dirty := make(map[domain.IndexName]bool)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			name, ok := indexForPath(rt.Data, change.Path)
			if !ok || !wanted[name] {
				continue
			}
			logger.Debug("Change %s: %s", change.Type, change.Path)
			dirty[name] = true
			timer.Reset(watchDebounce)
		case <-timer.C:
			for _, name := range names {
				if !dirty[name] {
					continue
				}
				delete(dirty, name)
				if err := buildIndex(ctx, cmd, rt, name); err != nil {
					// A broken file must not stop the watcher; the next change retries.
					logger.Warn("%v", err)
				}
			}
		}
	}
}

// indexForPath returns the index whose raw folder contains path.
func indexForPath(data domain.DataSettings, path string) (domain.IndexName, bool) {
	for _, name := range domain.AllIndexes() {
		rel, err := filepath.Rel(data.FolderFor(name), path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return name, true
	}
	return "", false
}
