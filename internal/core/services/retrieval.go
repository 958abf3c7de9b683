package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// errNoStore is reported when no index store is configured.
var errNoStore = errors.New("no index store configured")

// RetrievalService queries the base and companies indexes with one shared
// query embedding and concatenates their hits, base first.
type RetrievalService struct {
	store    driven.IndexStore
	embedder driven.EmbeddingService
	k        int
}

// NewRetrievalService creates a retriever. The embedder may be nil when the
// store searches by keyword. Non-positive k falls back to the default of 10.
func NewRetrievalService(store driven.IndexStore, embedder driven.EmbeddingService, k int) *RetrievalService {
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}
	return &RetrievalService{
		store:    store,
		embedder: embedder,
		k:        k,
	}
}

// K returns the number of hits requested from each index.
func (s *RetrievalService) K() int {
	return s.k
}

// Retrieve returns at most k base hits followed by at most k companies
// hits. Hits are not re-ranked or deduplicated. Chunks with a page label
// are prefixed with their page citation. An index that cannot be opened or
// queried fails the whole call with IndexUnavailable; there is no fallback.
// Context cancellation and deadlines are returned unchanged.
func (s *RetrievalService) Retrieve(ctx context.Context, question string) (domain.Context, error) {
	logger.Section("Retrieval")
	defer logger.Timed("retrieve")()
	logger.Debug("Question: %q, k=%d", question, s.k)

	query := domain.Query{Text: question}
	if s.embedder != nil {
		vector, err := s.embedder.Embed(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			return nil, fmt.Errorf("embed question: %w", err)
		}
		query.Vector = vector
	}

	indexes := domain.AllIndexes()
	hits := make([][]domain.ScoredChunk, len(indexes))
	errs := make([]error, len(indexes))

	var wg sync.WaitGroup
	for i, name := range indexes {
		wg.Add(1)
		go func(i int, name domain.IndexName) {
			defer wg.Done()
			hits[i], errs[i] = s.search(ctx, name, query)
		}(i, name)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			logger.Warn("Retrieval failed: %v", err)
			return nil, err
		}
	}

	result := make(domain.Context, 0, len(hits[0])+len(hits[1]))
	for i, name := range indexes {
		logger.Debug("%s: %d hits", name, len(hits[i]))
		for _, hit := range hits[i] {
			result = append(result, domain.NewRetrievedDocument(name, hit))
		}
	}

	logger.Info("Retrieved %d documents", len(result))
	return result, nil
}

func (s *RetrievalService) search(ctx context.Context, name domain.IndexName, query domain.Query) ([]domain.ScoredChunk, error) {
	if s.store == nil {
		return nil, domain.NewIndexUnavailableError(name, errNoStore)
	}

	index, err := s.store.Open(ctx, name)
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		return nil, domain.NewIndexUnavailableError(name, err)
	}
	if index == nil {
		return nil, domain.NewIndexUnavailableError(name, nil)
	}

	hits, err := index.SimilaritySearch(ctx, query, s.k)
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		return nil, domain.NewIndexUnavailableError(name, err)
	}
	if len(hits) > s.k {
		hits = hits[:s.k]
	}
	return hits, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
