package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

var (
	retrieveJSON bool
	askJSON      bool
	askSources   bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [question]",
	Short: "Show the context retrieved for a question",
	Long: `Queries the base and companies indexes for the question and prints the
retrieved documents: base hits first, then companies hits. PDF chunks are
prefixed with their page number.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves context from both indexes, fills the answer prompt with the
context and question, and asks the configured LLM.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output documents as JSON")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "list the retrieved sources")
	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(askCmd)
}

// documentJSON is the JSON shape of a retrieved document.
type documentJSON struct {
	Index     string          `json:"index"`
	Content   string          `json:"content"`
	PageLabel string          `json:"page_label,omitempty"`
	Score     float64         `json:"score"`
	Metadata  domain.Metadata `json:"metadata,omitempty"`
}

// answerJSON is the JSON shape of an answer.
type answerJSON struct {
	Question     string         `json:"question"`
	Answer       string         `json:"answer"`
	PromptTokens int            `json:"prompt_tokens"`
	Sources      []documentJSON `json:"sources"`
}

func toDocumentJSON(docs domain.Context) []documentJSON {
	out := make([]documentJSON, len(docs))
	for i, d := range docs {
		out[i] = documentJSON{
			Index:     d.Index.String(),
			Content:   d.Content,
			PageLabel: d.PageLabel,
			Score:     d.Score,
			Metadata:  d.Metadata,
		}
	}
	return out
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	docs, err := rt.Retrieval.Retrieve(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return printJSON(cmd, toDocumentJSON(docs))
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}
	printDocuments(cmd, docs)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	answer, err := rt.Answer.Ask(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answerJSON{
			Question:     answer.Question,
			Answer:       answer.Text,
			PromptTokens: answer.Prompt.Tokens,
			Sources:      toDocumentJSON(answer.Sources),
		})
	}

	cmd.Println(answer.Text)
	if askSources {
		cmd.Println()
		cmd.Println("Sources:")
		printSources(cmd, answer.Sources)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printDocuments(cmd *cobra.Command, docs domain.Context) {
	for i, d := range docs {
		cmd.Printf("[%d] %s (%.3f)\n", i+1, d.Index, d.Score)
		if src := sourceOf(d); src != "" {
			cmd.Printf("    Source: %s\n", src)
		}
		cmd.Printf("    %s\n\n", snippet(d.Content, 300))
	}
}

func printSources(cmd *cobra.Command, docs domain.Context) {
	if len(docs) == 0 {
		cmd.Println("  (none)")
		return
	}
	for i, d := range docs {
		line := fmt.Sprintf("  [%d] %s", i+1, d.Index)
		if d.PageLabel != "" {
			line += " page " + d.PageLabel
		}
		if src := sourceOf(d); src != "" {
			line += " " + src
		}
		cmd.Println(line)
	}
}

func sourceOf(d domain.RetrievedDocument) string {
	src, _ := d.Metadata[domain.MetaSource].(string)
	return src
}

// snippet collapses whitespace and truncates s to at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
