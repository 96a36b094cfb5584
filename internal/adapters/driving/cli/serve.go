package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/adapters/driven/ai"
	restapi "github.com/custodia-labs/dossier/internal/adapters/driving/http"
	"github.com/custodia-labs/dossier/internal/logger"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the REST API used by the web front end.

Endpoints:
  GET  /health             liveness check
  GET  /api/search?query=  answer a question with cited sources
  POST /api/init-files     ingest the corpus if the store is empty`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from settings, 3001)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app(ctx)
	if err != nil {
		return err
	}

	for _, w := range ai.CheckConnectivity(ctx, a.Pingers...) {
		logger.Warn("%s", w)
	}

	port := settings.Server.Port
	if servePort > 0 {
		port = servePort
	}

	server := restapi.NewServer(a.Questions, a.Ingest, settings.Server.CORSOrigins)
	cmd.Printf("Server running on port %d\n", port)
	return server.Run(ctx, fmt.Sprintf(":%d", port))
}

// detached returns a context for work that should finish even if the
// command's context is cancelled, such as a single question.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
