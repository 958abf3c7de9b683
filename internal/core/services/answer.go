package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService answers a question from retrieved context: retrieve,
// render the answer template, generate.
type AnswerService struct {
	retriever   driving.RetrievalService
	prompts     driven.PromptStore
	assembler   *PromptAssembler
	llm         driven.LLMService
	temperature float64
}

// NewAnswerService creates an answer service. Generation runs at
// temperature 0 unless SetTemperature is called.
func NewAnswerService(
	retriever driving.RetrievalService,
	prompts driven.PromptStore,
	assembler *PromptAssembler,
	llm driven.LLMService,
) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		prompts:   prompts,
		assembler: assembler,
		llm:       llm,
	}
}

// SetTemperature overrides the generation temperature.
func (s *AnswerService) SetTemperature(t float64) {
	s.temperature = t
}

// Ask answers question. An empty retrieval still produces an answer; the
// template decides how the model should respond to missing context.
func (s *AnswerService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	template, err := s.LoadTemplate()
	if err != nil {
		return nil, err
	}

	sources, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	prompt, err := s.assembler.Render(template, sources, question)
	if err != nil {
		return nil, err
	}

	logger.Section("Generation")
	logger.Debug("Model: %s, prompt tokens: %d, sources: %d", s.llm.ModelName(), prompt.Tokens, len(sources))
	defer logger.Timed("generate")()

	text, err := s.llm.Generate(ctx, prompt.Text, driven.GenerateOptions{Temperature: s.temperature})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Question: question,
		Text:     strings.TrimSpace(text),
		Sources:  sources,
		Prompt:   prompt,
	}, nil
}

// LoadTemplate loads the answer template and checks its placeholders.
// Ask calls it before retrieval so a bad template fails without any
// embedding or index I/O.
func (s *AnswerService) LoadTemplate() (string, error) {
	template, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}
	if err := s.assembler.Validate(template); err != nil {
		return "", err
	}
	return template, nil
}
