package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/custodia-labs/chateqt/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Ensure ChunkIndex implements the interface.
var _ driven.ChunkIndex = (*ChunkIndex)(nil)

// infoDimensions is the index_info key holding the vector size.
const infoDimensions = "dimensions"

// ChunkIndex is one index database.
type ChunkIndex struct {
	name domain.IndexName
	path string
	db   *sql.DB
}

func openChunkIndex(ctx context.Context, name domain.IndexName, path string) (*ChunkIndex, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	return &ChunkIndex{name: name, path: path, db: db}, nil
}

// Name returns the index name.
func (c *ChunkIndex) Name() domain.IndexName {
	return c.name
}

// Path returns the database file path.
func (c *ChunkIndex) Path() string {
	return c.path
}

// Add stores chunks in one transaction. Every chunk needs an embedding of
// the same size as those already stored.
func (c *ChunkIndex) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dims, err := c.Dimensions(ctx)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, position, content, metadata, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			position = excluded.position,
			content = excluded.content,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		chunk := &chunks[i]
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunk.ID)
		}
		if dims == 0 {
			dims = len(chunk.Embedding)
		}
		if len(chunk.Embedding) != dims {
			return fmt.Errorf("chunk %s: %w: got %d, index has %d",
				chunk.ID, ranking.ErrDimensionMismatch, len(chunk.Embedding), dims)
		}

		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Position, chunk.Content,
			string(metadata), float32SliceToBytes(chunk.Embedding), len(chunk.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_info (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, infoDimensions, strconv.Itoa(dims)); err != nil {
		return fmt.Errorf("recording dimensions: %w", err)
	}

	return tx.Commit()
}

// SimilaritySearch ranks every stored chunk by cosine similarity to query.Vector.
func (c *ChunkIndex) SimilaritySearch(ctx context.Context, query domain.Query, k int) ([]domain.ScoredChunk, error) {
	if len(query.Vector) == 0 {
		return nil, fmt.Errorf("%w: sqlite index searches by vector", domain.ErrInvalidInput)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, position, content, metadata, embedding FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return ranking.TopK(chunks, query.Vector, k)
}

// Count returns the number of stored chunks.
func (c *ChunkIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Dimensions returns the stored vector size, or 0 for an empty index.
func (c *ChunkIndex) Dimensions(ctx context.Context) (int, error) {
	var value string
	err := c.db.QueryRowContext(ctx, "SELECT value FROM index_info WHERE key = ?", infoDimensions).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading dimensions: %w", err)
	}
	return strconv.Atoi(value)
}

// Close closes the database.
func (c *ChunkIndex) Close() error {
	return c.db.Close()
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := rows.Scan(&chunk.ID, &chunk.Position, &chunk.Content, &metadataJSON, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}
