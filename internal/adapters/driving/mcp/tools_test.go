package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

func sampleDocs() domain.Context {
	return domain.Context{
		{Index: domain.IndexBase, Content: "page-number 7: robotics", PageLabel: "7", Score: 0.8},
		{Index: domain.IndexCompanies, Content: "Acme ships robots", Score: 0.6},
	}
}

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents in order", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{docs: sampleDocs()}})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, QuestionInput{Question: "robots?"})
		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "base", output.Documents[0].Index)
		assert.Equal(t, "7", output.Documents[0].PageLabel)
		assert.Equal(t, "page-number 7: robotics", output.Documents[0].Content)
		assert.Equal(t, "companies", output.Documents[1].Index)
	})

	t.Run("empty result", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, QuestionInput{Question: "q"})
		require.NoError(t, err)
		assert.Zero(t, output.Count)
		assert.Empty(t, output.Documents)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{
			err: domain.NewIndexUnavailableError(domain.IndexBase, errors.New("missing")),
		}})
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, QuestionInput{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval: &mockRetrievalService{},
			Answer:    &mockAnswerService{answer: &domain.Answer{Text: "Robots.", Sources: sampleDocs()}},
		})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, QuestionInput{Question: "What?"})
		require.NoError(t, err)
		assert.Equal(t, "Robots.", output.Answer)
		assert.Len(t, output.Sources, 2)
	})

	t.Run("not configured", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, QuestionInput{Question: "What?"})
		assert.ErrorIs(t, err, ErrAnswerUnavailable)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval: &mockRetrievalService{},
			Answer:    &mockAnswerService{err: domain.ErrLLMUnavailable},
		})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, QuestionInput{Question: "What?"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
