package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskrank/internal/output"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest what to work on next",
	Long: `Re-ranks the last analyzed batch under smart_balance and prints the top
tasks (suggest.count in the config, 3 by default).`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sug, err := newEngine(cfg).Suggest(commandContext(cmd.Context(), cfg))
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, sug)
	case output.FormatCompact:
		output.RankedCompact(os.Stdout, sug.Suggested)
	default:
		output.Messagef(os.Stdout, "Suggested under %s:", sug.Strategy.Title())
		output.RankedTable(os.Stdout, sug.Suggested)
	}
	return nil
}
