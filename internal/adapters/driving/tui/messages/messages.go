// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// QuestionSubmitted is sent when the user submits a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the answer to a question back to the model.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}

// PromptsReloaded signals that prompt templates were reloaded from disk.
type PromptsReloaded struct{}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
