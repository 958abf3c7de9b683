// Package ranking holds the exhaustive cosine scan shared by the local
// vector stores.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// ErrDimensionMismatch indicates a query vector does not match the stored vectors.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Cosine returns the cosine similarity of a and b, or 0 if either is zero.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK scores every chunk against vector and returns the k best, highest
// score first. Ties keep insertion order.
func TopK(chunks []domain.Chunk, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 || len(chunks) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) != len(vector) {
			return nil, fmt.Errorf("%w: query has %d, chunk %s has %d",
				ErrDimensionMismatch, len(vector), c.ID, len(c.Embedding))
		}
		scored = append(scored, domain.ScoredChunk{Chunk: c, Score: Cosine(c.Embedding, vector)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
