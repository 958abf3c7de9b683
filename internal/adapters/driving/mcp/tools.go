package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// QuestionInput is the input schema of the retrieve and ask tools.
type QuestionInput struct {
	Question string `json:"question" jsonschema:"the question to find context for"`
}

// DocumentOutput is one retrieved chunk.
type DocumentOutput struct {
	Index     string  `json:"index"`
	Content   string  `json:"content"`
	PageLabel string  `json:"page_label,omitempty"`
	Score     float64 `json:"score"`
}

// RetrieveOutput is the output schema of the retrieve tool.
type RetrieveOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// AskOutput is the output schema of the ask tool.
type AskOutput struct {
	Answer  string           `json:"answer"`
	Sources []DocumentOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve AI Index report pages and portfolio company pages relevant to a question",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about AI trends and portfolio companies from the indexed sources",
	}, s.handleAsk)
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestionInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	docs, err := s.ports.Retrieval.Retrieve(ctx, input.Question)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Documents: toOutput(docs),
		Count:     len(docs),
	}
	return nil, output, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestionInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, ErrAnswerUnavailable
	}

	answer, err := s.ports.Answer.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer.Text, Sources: toOutput(answer.Sources)}, nil
}

func toOutput(docs domain.Context) []DocumentOutput {
	out := make([]DocumentOutput, len(docs))
	for i := range docs {
		out[i] = DocumentOutput{
			Index:     docs[i].Index.String(),
			Content:   docs[i].Content,
			PageLabel: docs[i].PageLabel,
			Score:     docs[i].Score,
		}
	}
	return out
}
