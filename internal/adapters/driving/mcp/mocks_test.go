package mcp

import (
	"context"
	"errors"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	docs domain.Context
	err  error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string) (domain.Context, error) {
	return m.docs, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockPromptLoader serves prompts from a map.
type mockPromptLoader struct {
	prompts map[string]string
}

func (m *mockPromptLoader) Load(name string) (string, error) {
	text, ok := m.prompts[name]
	if !ok {
		return "", errors.New("unknown prompt")
	}
	return text, nil
}
