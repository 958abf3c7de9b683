package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

type mockRetrieval struct {
	docs     domain.Context
	err      error
	question string
}

func (m *mockRetrieval) Retrieve(_ context.Context, question string) (domain.Context, error) {
	m.question = question
	return m.docs, m.err
}

type mockAnswer struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswer) Ask(_ context.Context, question string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	a := *m.answer
	a.Question = question
	return &a, nil
}

func sampleContext() domain.Context {
	return domain.Context{
		{ID: "b1", Index: domain.IndexBase, Content: "page-number 3: compute costs", PageLabel: "3", Score: 0.9},
		{ID: "c1", Index: domain.IndexCompanies, Content: "Acme builds agents", Score: 0.7},
	}
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestServer_Healthy(t *testing.T) {
	status, body := do(t, NewServer("", nil), http.MethodGet, "/check/healthy", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["result"])
}

func TestServer_Retrieve(t *testing.T) {
	retrieval := &mockRetrieval{docs: sampleContext()}
	s := NewServer("", &Ports{Retrieval: retrieval})

	status, body := do(t, s, http.MethodPost, "/api/v1/retrieve", `{"question":"compute costs?"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "compute costs?", retrieval.question)

	docs, ok := body["documents"].([]any)
	require.True(t, ok)
	require.Len(t, docs, 2)
	first := docs[0].(map[string]any)
	assert.Equal(t, "base", first["index"])
	assert.Equal(t, "3", first["page_label"])
	assert.Equal(t, "page-number 3: compute costs", first["content"])
	second := docs[1].(map[string]any)
	assert.Equal(t, "companies", second["index"])
	_, hasLabel := second["page_label"]
	assert.False(t, hasLabel)
}

func TestServer_Ask(t *testing.T) {
	answer := &mockAnswer{answer: &domain.Answer{
		Text:    "Costs rose.",
		Sources: sampleContext(),
		Prompt:  domain.Prompt{Text: "...", Tokens: 42},
	}}
	s := NewServer("", &Ports{Answer: answer})

	status, body := do(t, s, http.MethodPost, "/api/v1/ask", `{"question":"What happened?"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "What happened?", body["question"])
	assert.Equal(t, "Costs rose.", body["answer"])
	assert.EqualValues(t, 42, body["prompt_tokens"])
	assert.Len(t, body["sources"], 2)
}

func TestServer_RequestErrors(t *testing.T) {
	s := NewServer("", &Ports{Retrieval: &mockRetrieval{}, Answer: &mockAnswer{answer: &domain.Answer{}}})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"invalid json", "/api/v1/retrieve", `{`, http.StatusBadRequest},
		{"missing question", "/api/v1/retrieve", `{}`, http.StatusUnprocessableEntity},
		{"missing question ask", "/api/v1/ask", `{"question":""}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestServer_DomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"index unavailable", domain.NewIndexUnavailableError(domain.IndexCompanies, domain.ErrNotFound), http.StatusServiceUnavailable},
		{"llm unavailable", domain.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"template binding", &domain.TemplateBindingError{Missing: []string{"context"}}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer("", &Ports{Answer: &mockAnswer{err: tt.err}})
			status, body := do(t, s, http.MethodPost, "/api/v1/ask", `{"question":"q"}`)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestServer_ServiceMissing(t *testing.T) {
	s := NewServer("", nil)

	status, _ := do(t, s, http.MethodPost, "/api/v1/retrieve", `{"question":"q"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, _ = do(t, s, http.MethodPost, "/api/v1/ask", `{"question":"q"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestServer_NotFoundRoute(t *testing.T) {
	status, _ := do(t, NewServer("", nil), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestQueryParams_Validate(t *testing.T) {
	assert.Nil(t, (&QueryParams{Question: "ok"}).Validate())
	errs := (&QueryParams{Question: strings.Repeat("x", 4001)}).Validate()
	assert.Equal(t, "failed on 'max' tag", errs["Question"])
}
