package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chateqt/internal/adapters/driving/api"
)

var (
	serveAddr     string
	serveRetrieve bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing retrieval and question answering.

Routes:
  GET  /check/healthy
  POST /api/v1/retrieve  {"question": "..."}
  POST /api/v1/ask       {"question": "..."}

Use --retrieve-only to serve retrieval without a configured LLM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", api.DefaultAddr, "listen address")
	serveCmd.Flags().BoolVar(&serveRetrieve, "retrieve-only", false, "do not require an LLM; /api/v1/ask returns 503")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd, !serveRetrieve)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	ports := &api.Ports{Retrieval: rt.Retrieval}
	if !serveRetrieve {
		ports.Answer = rt.Answer
	}

	server := api.NewServer(serveAddr, ports)
	cmd.Printf("REST server listening on %s\n", server.Addr())
	if err := server.Run(commandContext(cmd)); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
