package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionInput_Value(t *testing.T) {
	q := NewQuestionInput(nil)
	assert.Empty(t, q.Value())

	q.SetValue("what changed in 2023?")
	assert.Equal(t, "what changed in 2023?", q.Value())

	q.Reset()
	assert.Empty(t, q.Value())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	q := NewQuestionInput(nil)
	q.SetWidth(100)
	assert.Equal(t, 100, q.Width())

	q.SetWidth(5)
	assert.Equal(t, 5, q.Width())
	assert.NotEmpty(t, q.View())
}

func TestQuestionInput_Init(t *testing.T) {
	assert.NotNil(t, NewQuestionInput(nil).Init())
}
