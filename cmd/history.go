package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskrank/internal/output"
	"github.com/twiced-technology-gmbh/taskrank/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent analyses",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show (0 for all)") //nolint:mnd // default page
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := report.NewHistory(cfg.HistoryPath(), cfg.History.MaxEntries).Read(limit)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		if entries == nil {
			entries = []report.Entry{}
		}
		return output.JSON(os.Stdout, entries)
	}
	output.HistoryTable(os.Stdout, entries)
	return nil
}
