package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

var validate = validator.New()

// QueryParams is the request body of retrieve and ask.
type QueryParams struct {
	Question string `json:"question" validate:"required,max=4000"`
}

// Validate returns field errors, or nil when params are valid.
func (p *QueryParams) Validate() map[string]string {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return map[string]string{"request": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return out
}

// Document is one retrieved chunk.
type Document struct {
	ID        string          `json:"id"`
	Index     string          `json:"index"`
	Content   string          `json:"content"`
	PageLabel string          `json:"page_label,omitempty"`
	Score     float64         `json:"score"`
	Metadata  domain.Metadata `json:"metadata,omitempty"`
}

// RetrieveResponse is the body returned by /api/v1/retrieve.
type RetrieveResponse struct {
	Question  string     `json:"question"`
	Documents []Document `json:"documents"`
}

// AskResponse is the body returned by /api/v1/ask.
type AskResponse struct {
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	Sources      []Document `json:"sources"`
	PromptTokens int        `json:"prompt_tokens,omitempty"`
}

func toDocuments(ctx domain.Context) []Document {
	docs := make([]Document, len(ctx))
	for i := range ctx {
		docs[i] = Document{
			ID:        ctx[i].ID,
			Index:     ctx[i].Index.String(),
			Content:   ctx[i].Content,
			PageLabel: ctx[i].PageLabel,
			Score:     ctx[i].Score,
			Metadata:  ctx[i].Metadata,
		}
	}
	return docs
}
