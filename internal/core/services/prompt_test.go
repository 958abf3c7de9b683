package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

type fixedTokens int

func (f fixedTokens) Count(string) int { return int(f) }

func sampleContext() domain.Context {
	return domain.Context{
		{Content: "page-number 3: AI investment grew.", Index: domain.IndexBase, PageLabel: "3"},
		{Content: "Acme builds robots.", Index: domain.IndexCompanies},
	}
}

func TestPromptAssembler_Render(t *testing.T) {
	assembler := NewPromptAssembler(nil)

	prompt, err := assembler.Render("Context:\n{context}\n\nQuestion: {question}\nAnswer:", sampleContext(), "Who builds robots?")

	require.NoError(t, err)
	assert.Equal(t,
		"Context:\npage-number 3: AI investment grew.\n\nAcme builds robots.\n\nQuestion: Who builds robots?\nAnswer:",
		prompt.Text)
	assert.Zero(t, prompt.Tokens)
}

func TestPromptAssembler_Render_EmptyContext(t *testing.T) {
	assembler := NewPromptAssembler(nil)

	prompt, err := assembler.Render("[{context}] {question}", nil, "anything?")

	require.NoError(t, err)
	assert.Equal(t, "[] anything?", prompt.Text)
}

func TestPromptAssembler_Render_IsPure(t *testing.T) {
	assembler := NewPromptAssembler(nil)
	tmpl := "{question}: {context}"

	first, err := assembler.Render(tmpl, sampleContext(), "q")
	require.NoError(t, err)
	second, err := assembler.Render(tmpl, sampleContext(), "q")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPromptAssembler_Render_RepeatedPlaceholder(t *testing.T) {
	assembler := NewPromptAssembler(nil)

	prompt, err := assembler.Render("{question} {context} again: {question}", nil, "why")

	require.NoError(t, err)
	assert.Equal(t, "why  again: why", prompt.Text)
}

func TestPromptAssembler_Render_EscapedBraces(t *testing.T) {
	assembler := NewPromptAssembler(nil)

	prompt, err := assembler.Render(`Reply as {{"answer": ...}} using {context} for {question}`, nil, "q")

	require.NoError(t, err)
	assert.Equal(t, `Reply as {"answer": ...} using  for q`, prompt.Text)
}

func TestPromptAssembler_Render_ValuesAreNotReparsed(t *testing.T) {
	assembler := NewPromptAssembler(nil)

	prompt, err := assembler.Render("{context}|{question}", nil, "what is {context}?")

	require.NoError(t, err)
	assert.Equal(t, "|what is {context}?", prompt.Text)
}

func TestPromptAssembler_Render_CountsTokens(t *testing.T) {
	assembler := NewPromptAssembler(fixedTokens(42))

	prompt, err := assembler.Render("{context}{question}", nil, "q")

	require.NoError(t, err)
	assert.Equal(t, 42, prompt.Tokens)
}

func TestPromptAssembler_BindingErrors(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		missing    []string
		unexpected []string
	}{
		{
			name:     "missing question",
			template: "Context: {context}",
			missing:  []string{"question"},
		},
		{
			name:     "missing both",
			template: "no placeholders",
			missing:  []string{"context", "question"},
		},
		{
			name:       "extra placeholder",
			template:   "{context} {question} {history}",
			unexpected: []string{"history"},
		},
		{
			name:       "unterminated placeholder",
			template:   "{context} {question",
			missing:    []string{"question"},
			unexpected: []string{"{question"},
		},
		{
			name:       "sorted unexpected",
			template:   "{context}{question}{zeta}{alpha}",
			unexpected: []string{"alpha", "zeta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assembler := NewPromptAssembler(nil)

			_, err := assembler.Render(tt.template, sampleContext(), "q")

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrTemplateBinding)
			var binding *domain.TemplateBindingError
			require.ErrorAs(t, err, &binding)
			assert.Equal(t, tt.missing, binding.Missing)
			assert.Equal(t, tt.unexpected, binding.Unexpected)

			assert.Error(t, assembler.Validate(tt.template))
		})
	}
}

func TestPromptAssembler_Validate(t *testing.T) {
	assembler := NewPromptAssembler(nil)

	assert.NoError(t, assembler.Validate("{context}\n{question}"))
}
