// Package postgres stores named indexes in PostgreSQL using pgvector.
//
// Each index gets its own table (chateqt_base, chateqt_companies), so the
// indexes never share rows. Similarity is cosine distance via the <=>
// operator.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.IndexStore = (*IndexStore)(nil)
	_ driven.ChunkIndex = (*ChunkIndex)(nil)
)

// ErrClosed indicates the store's pool has been closed.
var ErrClosed = errors.New("postgres store closed")

const tablePrefix = "chateqt_"

// IndexStore opens index tables from a shared connection pool.
type IndexStore struct {
	mu   sync.RWMutex
	pool *pgxpool.Pool
}

// NewIndexStore connects to dsn and makes sure the vector extension exists.
func NewIndexStore(ctx context.Context, dsn string) (*IndexStore, error) {
	if dsn == "" {
		return nil, domain.NewConfigurationError("index.postgres_dsn", "must not be empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("enabling vector extension: %w", err)
	}

	return &IndexStore{pool: pool}, nil
}

// TableName returns the table holding the named index.
func TableName(name domain.IndexName) (string, error) {
	if !name.IsValid() {
		return "", fmt.Errorf("%w: unknown index %q", domain.ErrInvalidInput, name)
	}
	return tablePrefix + string(name), nil
}

func (s *IndexStore) acquire() (*pgxpool.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pool == nil {
		return nil, ErrClosed
	}
	return s.pool, nil
}

// Open returns the index if its table exists, otherwise domain.ErrNotFound.
func (s *IndexStore) Open(ctx context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	pool, err := s.acquire()
	if err != nil {
		return nil, err
	}
	table, err := TableName(name)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking table %s: %w", table, err)
	}
	if !exists {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}

	return &ChunkIndex{name: name, table: table, store: s}, nil
}

// Create drops and recreates the index table.
func (s *IndexStore) Create(ctx context.Context, name domain.IndexName) (driven.ChunkIndex, error) {
	pool, err := s.acquire()
	if err != nil {
		return nil, err
	}
	table, err := TableName(name)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, recreateTableSQL(table)); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}

	return &ChunkIndex{name: name, table: table, store: s}, nil
}

// Replace drops, recreates and fills the index table in one transaction,
// so a failed build rolls back to the previous table.
func (s *IndexStore) Replace(ctx context.Context, name domain.IndexName, chunks []domain.Chunk) (driven.ChunkIndex, error) {
	pool, err := s.acquire()
	if err != nil {
		return nil, err
	}
	table, err := TableName(name)
	if err != nil {
		return nil, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, recreateTableSQL(table)); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}
	if err := insertChunks(ctx, tx, table, chunks); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing %s: %w", table, err)
	}

	return &ChunkIndex{name: name, table: table, store: s}, nil
}

// recreateTableSQL drops and creates table. table is one of the fixed
// names returned by TableName.
func recreateTableSQL(table string) string {
	return fmt.Sprintf(`
		DROP TABLE IF EXISTS %[1]s;
		CREATE TABLE %[1]s (
			seq       BIGSERIAL PRIMARY KEY,
			id        TEXT NOT NULL UNIQUE,
			position  INT NOT NULL,
			content   TEXT NOT NULL,
			metadata  JSONB NOT NULL DEFAULT '{}',
			embedding vector NOT NULL
		);
	`, table)
}

// Close closes the connection pool.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

// ChunkIndex is one index table.
type ChunkIndex struct {
	name  domain.IndexName
	table string
	store *IndexStore
}

// Name returns the index name.
func (c *ChunkIndex) Name() domain.IndexName {
	return c.name
}

// Add inserts chunks in one transaction.
func (c *ChunkIndex) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	pool, err := c.store.acquire()
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertChunks(ctx, tx, c.table, chunks); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// insertChunks upserts chunks into table inside tx.
func insertChunks(ctx context.Context, tx pgx.Tx, table string, chunks []domain.Chunk) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, position, content, metadata, embedding)
		VALUES ($1, $2, $3, $4::jsonb, $5)
		ON CONFLICT (id) DO UPDATE SET
			position = EXCLUDED.position,
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`, table)

	for i := range chunks {
		chunk := &chunks[i]
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunk.ID)
		}
		metadata, err := encodeMetadata(chunk.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, chunk.ID, chunk.Position, chunk.Content,
			metadata, pgvector.NewVector(chunk.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// SimilaritySearch orders rows by cosine distance to query.Vector.
func (c *ChunkIndex) SimilaritySearch(ctx context.Context, query domain.Query, k int) ([]domain.ScoredChunk, error) {
	if len(query.Vector) == 0 {
		return nil, fmt.Errorf("%w: postgres index searches by vector", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}
	pool, err := c.store.acquire()
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT id, position, content, metadata::text, embedding,
		       1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1, seq
		LIMIT $2
	`, c.table)

	rows, err := pool.Query(ctx, sql, pgvector.NewVector(query.Vector), k)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", c.table, err)
	}
	defer rows.Close()

	hits := make([]domain.ScoredChunk, 0, k)
	for rows.Next() {
		var hit domain.ScoredChunk
		var metadata string
		var embedding pgvector.Vector
		if err := rows.Scan(&hit.Chunk.ID, &hit.Chunk.Position, &hit.Chunk.Content,
			&metadata, &embedding, &hit.Score); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		hit.Chunk.Embedding = embedding.Slice()
		if hit.Chunk.Metadata, err = decodeMetadata(metadata); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return hits, nil
}

// Count returns the number of rows in the index table.
func (c *ChunkIndex) Count(ctx context.Context) (int, error) {
	pool, err := c.store.acquire()
	if err != nil {
		return 0, err
	}
	var n int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Close is a no-op; the pool belongs to the store.
func (c *ChunkIndex) Close() error {
	return nil
}

func encodeMetadata(m domain.Metadata) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(s string) (domain.Metadata, error) {
	var m domain.Metadata
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
