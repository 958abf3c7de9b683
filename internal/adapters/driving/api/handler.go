package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
)

// CheckHandler serves health checks.
type CheckHandler struct{}

// NewCheckHandler creates a check handler.
func NewCheckHandler() *CheckHandler {
	return &CheckHandler{}
}

// HandleHealthy reports that the server is up.
func (h CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

// QueryHandler serves retrieve and ask.
type QueryHandler struct {
	retrieval driving.RetrievalService
	answer    driving.AnswerService
}

// NewQueryHandler creates a query handler. Either service may be nil; its
// route then answers 503.
func NewQueryHandler(retrieval driving.RetrievalService, answer driving.AnswerService) *QueryHandler {
	return &QueryHandler{retrieval: retrieval, answer: answer}
}

// HandleRetrieve returns the context retrieved for a question.
func (h *QueryHandler) HandleRetrieve(c *fiber.Ctx) error {
	if h.retrieval == nil {
		return errServiceMissing("retrieval")
	}
	params, err := parseQuery(c)
	if err != nil {
		return err
	}

	docs, err := h.retrieval.Retrieve(c.UserContext(), params.Question)
	if err != nil {
		return err
	}
	return c.JSON(RetrieveResponse{Question: params.Question, Documents: toDocuments(docs)})
}

// HandleAsk answers a question from retrieved context.
func (h *QueryHandler) HandleAsk(c *fiber.Ctx) error {
	if h.answer == nil {
		return errServiceMissing("answer")
	}
	params, err := parseQuery(c)
	if err != nil {
		return err
	}

	answer, err := h.answer.Ask(c.UserContext(), params.Question)
	if err != nil {
		return err
	}
	return c.JSON(AskResponse{
		Question:     answer.Question,
		Answer:       answer.Text,
		Sources:      toDocuments(answer.Sources),
		PromptTokens: answer.Prompt.Tokens,
	})
}

func parseQuery(c *fiber.Ctx) (*QueryParams, error) {
	var params QueryParams
	if err := c.BodyParser(&params); err != nil {
		return nil, ErrBadRequest()
	}
	if errs := params.Validate(); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}
	return &params, nil
}
