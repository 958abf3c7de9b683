// Package filesystem discovers source files under a folder and watches the
// folder for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// Ensure Walker implements the interface.
var _ driven.SourceWalker = (*Walker)(nil)

// ErrWatcherClosed indicates Watch was called on a closed connector.
var ErrWatcherClosed = errors.New("watcher closed")

// Connector enumerates and watches one folder.
type Connector struct {
	rootPath string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Root returns the folder the connector enumerates.
func (c *Connector) Root() string {
	return c.rootPath
}

// Discover returns every file under the root at any depth, in lexical walk
// order. Directories are not returned. A missing root is a LoadError.
func (c *Connector) Discover(ctx context.Context) ([]domain.SourceFile, error) {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewLoadError(c.rootPath, fmt.Errorf("folder does not exist"))
		}
		return nil, domain.NewLoadError(c.rootPath, err)
	}
	if !info.IsDir() {
		return nil, domain.NewLoadError(c.rootPath, fmt.Errorf("not a folder"))
	}

	var files []domain.SourceFile
	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return domain.NewLoadError(path, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, domain.NewSourceFile(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Watch reports file changes under the root until ctx is cancelled.
// Hidden files and directories are ignored. New subdirectories are watched
// as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.SourceChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrWatcherClosed
	}
	if c.watcher != nil {
		return nil, fmt.Errorf("already watching %s", c.rootPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && isHidden(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	c.watcher = watcher
	changes := make(chan domain.SourceChange)

	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change := c.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", c.rootPath, err)
			}
		}
	}()

	return changes, nil
}

// handleFsEvent maps an fsnotify event to a source change.
// Returns nil for events that do not change source content.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.SourceChange {
	if isHidden(event.Name) {
		return nil
	}

	switch {
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return &domain.SourceChange{Path: event.Name, Type: domain.ChangeDeleted}
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			c.addDir(event.Name)
			return nil
		}
		return &domain.SourceChange{Path: event.Name, Type: domain.ChangeCreated}
	case event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		return &domain.SourceChange{Path: event.Name, Type: domain.ChangeUpdated}
	default:
		return nil
	}
}

func (c *Connector) addDir(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return
	}
	if err := c.watcher.Add(path); err != nil {
		logger.Warn("watch %s: %v", path, err)
	}
}

// Close stops watching. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Walker discovers files under any folder.
type Walker struct{}

// NewWalker creates a folder walker.
func NewWalker() *Walker {
	return &Walker{}
}

// Discover returns every file under folder. See Connector.Discover.
func (w *Walker) Discover(ctx context.Context, folder string) ([]domain.SourceFile, error) {
	return New(folder).Discover(ctx)
}
