package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the corpus into the store",
	Long: `Lists the markdown files of the configured corpus, splits them into
overlapping chunks, embeds every chunk and stores the result in a single
transaction. A store that already holds documents is left unchanged.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many files and chunks are stored",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statsCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Println("Ingesting corpus...")
	report, err := a.Ingest.Ingest(detached(cmd.Context()))
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if report.AlreadyInitialized {
		cmd.Printf("Files already initialized: %d files, %d chunks.\n", report.Files, report.Chunks)
		return nil
	}
	cmd.Printf("Files initialized successfully: %d files, %d chunks.\n", report.Files, report.Chunks)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}

	stats, err := a.Ingest.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}
	cmd.Printf("Files:  %d\n", stats.Files)
	cmd.Printf("Chunks: %d\n", stats.Chunks)
	return nil
}
