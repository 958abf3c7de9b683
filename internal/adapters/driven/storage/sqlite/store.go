package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/staging"
	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// DBFileName is the database file inside each index folder.
const DBFileName = "index.db"

// IndexStore opens one SQLite database per index name under a parent folder.
// Handles are cached and owned by the store; Close releases them all.
type IndexStore struct {
	dir string

	mu      sync.Mutex
	indexes map[domain.IndexName]*ChunkIndex
}

// NewIndexStore creates a store rooted at dir. Nothing is created on disk
// until an index is built.
func NewIndexStore(dir string) (*IndexStore, error) {
	if dir == "" {
		return nil, domain.NewConfigurationError("index.dir", "must not be empty")
	}
	return &IndexStore{
		dir:     dir,
		indexes: make(map[domain.IndexName]*ChunkIndex),
	}, nil
}

// Dir returns the parent folder of the index databases.
func (s *IndexStore) Dir() string {
	return s.dir
}

// PathFor returns the database path of the named index.
func (s *IndexStore) PathFor(name domain.IndexName) string {
	return filepath.Join(s.dir, string(name), DBFileName)
}

// Open returns the existing index with the given name. An index that has
// never been built returns domain.ErrNotFound.
func (s *IndexStore) Open(ctx context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indexes[name]; ok {
		return idx, nil
	}

	path := s.PathFor(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("index %s at %s: %w", name, path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	idx, err := openChunkIndex(ctx, name, path)
	if err != nil {
		return nil, err
	}
	s.indexes[name] = idx
	return idx, nil
}

// Create deletes any existing database for name and returns a fresh, empty index.
func (s *IndexStore) Create(ctx context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.indexes[name]; ok {
		_ = old.Close()
		delete(s.indexes, name)
	}

	folder := filepath.Dir(s.PathFor(name))
	if err := os.RemoveAll(folder); err != nil {
		return nil, fmt.Errorf("removing %s: %w", folder, err)
	}
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := openChunkIndex(ctx, name, s.PathFor(name))
	if err != nil {
		return nil, err
	}
	s.indexes[name] = idx
	return idx, nil
}

// Replace builds name in a staging folder and swaps it in once every chunk
// is stored. A failed build leaves the existing database untouched.
func (s *IndexStore) Replace(ctx context.Context, name domain.IndexName, chunks []domain.Chunk) (driven.ChunkIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder := filepath.Dir(s.PathFor(name))
	dir, err := staging.Dir(folder)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	built, err := openChunkIndex(ctx, name, filepath.Join(dir, DBFileName))
	if err != nil {
		staging.Discard(dir)
		return nil, err
	}
	if err := built.Add(ctx, chunks); err != nil {
		_ = built.Close()
		staging.Discard(dir)
		return nil, err
	}
	if err := built.Close(); err != nil {
		staging.Discard(dir)
		return nil, fmt.Errorf("closing staged %s: %w", name, err)
	}

	if old, ok := s.indexes[name]; ok {
		_ = old.Close()
		delete(s.indexes, name)
	}
	if err := staging.Swap(dir, folder); err != nil {
		staging.Discard(dir)
		return nil, err
	}

	idx, err := openChunkIndex(ctx, name, s.PathFor(name))
	if err != nil {
		return nil, err
	}
	s.indexes[name] = idx
	return idx, nil
}

// Close closes every open index database.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for name, idx := range s.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
		delete(s.indexes, name)
	}
	return errors.Join(errs...)
}

// openDB opens a database file in WAL mode and applies pending migrations.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(ctx, db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// migrate runs all pending .up.sql migrations in version order and records them.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_chunks.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
