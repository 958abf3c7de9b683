package driving

import (
	"context"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// RetrievalService finds the context for a question across both indexes.
type RetrievalService interface {
	// Retrieve returns base hits followed by companies hits.
	Retrieve(ctx context.Context, question string) (domain.Context, error)
}

// AnswerService answers questions grounded in retrieved context.
type AnswerService interface {
	// Ask retrieves context, renders the answer prompt and generates an answer.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}
