package domain

import "time"

// Prompt is a rendered template ready for the generation step.
type Prompt struct {
	// Text is the full prompt payload.
	Text string

	// Tokens is the estimated token count, zero when unknown.
	Tokens int
}

// Answer is the result of one question/answer cycle.
type Answer struct {
	// Question is the user question as asked.
	Question string

	// Text is the generated answer.
	Text string

	// Sources are the retrieved documents that grounded the answer.
	Sources Context

	// Prompt is the rendered prompt sent to the LLM.
	Prompt Prompt
}

// Company is a portfolio company and the pages crawled for it.
type Company struct {
	Name string
	URLs []string
}

// BuildReport summarises one index build.
type BuildReport struct {
	Index    IndexName
	Folder   string
	Files    int
	Chunks   int
	Duration time.Duration
}
