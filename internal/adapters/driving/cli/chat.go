package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chateqt/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Launch the interactive chat. Each question is answered from the base and
companies indexes; the transcript lasts for the session only.

Commands:
  /sources - Toggle retrieved sources under answers
  /reload  - Reload prompt templates from disk
  /clear   - Clear the transcript
  /quit    - Quit

Controls:
  Enter     - Send
  Ctrl+S    - Toggle sources
  PgUp/PgDn - Scroll
  Esc       - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	rt, err := loadRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	ports := &tui.Ports{Answer: rt.Answer}
	if rt.Prompts != nil {
		ports.Prompts = rt.Prompts
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	if err := app.WithContext(commandContext(cmd)).Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
