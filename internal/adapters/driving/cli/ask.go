package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the corpus",
	Long: `Embeds the question, retrieves the most relevant passages and asks the
configured language model to answer from them. Sources are listed after the
answer. When nothing in the corpus is similar enough the model is not called.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

type askOutput struct {
	Answer  string          `json:"answer"`
	Sources []domain.Source `json:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	answer, err := a.Questions.Ask(detached(cmd.Context()), query)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		sources := answer.Sources
		if sources == nil {
			sources = []domain.Source{}
		}
		data, err := json.MarshalIndent(askOutput{Answer: answer.Text, Sources: sources}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if !answer.HasContext() {
		return nil
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Title, src.Similarity)
		cmd.Printf("      %s\n", src.URL)
	}
	return nil
}
