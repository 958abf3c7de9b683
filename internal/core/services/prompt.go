package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Placeholder names bound by the answer template.
const (
	PlaceholderContext  = "context"
	PlaceholderQuestion = "question"
)

// PromptAssembler renders the answer template. Rendering is pure: the same
// template, context and question always give the same prompt.
type PromptAssembler struct {
	tokens driven.TokenCounter
}

// NewPromptAssembler creates an assembler. The token counter may be nil.
func NewPromptAssembler(tokens driven.TokenCounter) *PromptAssembler {
	return &PromptAssembler{tokens: tokens}
}

// segment is a literal run of text or a placeholder reference.
type segment struct {
	text        string
	placeholder bool
}

// Render substitutes {context} and {question} in template. The template
// must reference both and nothing else; otherwise a TemplateBindingError
// lists what was missing or left unbound. Write {{ and }} for literal braces.
func (a *PromptAssembler) Render(template string, context domain.Context, question string) (domain.Prompt, error) {
	segments, err := parseTemplate(template)
	if err != nil {
		return domain.Prompt{}, err
	}

	values := map[string]string{
		PlaceholderContext:  context.String(),
		PlaceholderQuestion: question,
	}

	var b strings.Builder
	for _, seg := range segments {
		if seg.placeholder {
			b.WriteString(values[seg.text])
		} else {
			b.WriteString(seg.text)
		}
	}

	prompt := domain.Prompt{Text: b.String()}
	if a.tokens != nil {
		prompt.Tokens = a.tokens.Count(prompt.Text)
	}
	return prompt, nil
}

// Validate checks that template binds exactly the expected placeholders.
func (a *PromptAssembler) Validate(template string) error {
	_, err := parseTemplate(template)
	return err
}

// parseTemplate splits template into segments and checks its bindings.
func parseTemplate(template string) ([]segment, error) {
	var (
		segments []segment
		literal  strings.Builder
		seen     = map[string]bool{}
		unknown  = map[string]bool{}
	)

	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			literal.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			literal.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				unknown[template[i:]] = true
				i = len(template)
				continue
			}
			name := template[i+1 : i+1+end]
			i += end + 1
			if name != PlaceholderContext && name != PlaceholderQuestion {
				unknown[name] = true
				continue
			}
			flush()
			seen[name] = true
			segments = append(segments, segment{text: name, placeholder: true})
		default:
			literal.WriteByte(c)
		}
	}
	flush()

	var missing []string
	for _, name := range []string{PlaceholderContext, PlaceholderQuestion} {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 || len(unknown) > 0 {
		var unexpected []string
		for name := range unknown {
			unexpected = append(unexpected, name)
		}
		sort.Strings(unexpected)
		return nil, &domain.TemplateBindingError{Missing: missing, Unexpected: unexpected}
	}
	return segments, nil
}
