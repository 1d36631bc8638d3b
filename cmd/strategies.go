package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskrank/internal/output"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List scoring strategies and their weights",
	Args:  cobra.NoArgs,
	RunE:  runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

type strategyInfo struct {
	Name    priority.Strategy `json:"name"`
	Title   string            `json:"title"`
	Focus   string            `json:"focus"`
	Weights priority.Weights  `json:"weights"`
	Default bool              `json:"default"`
}

func runStrategies(_ *cobra.Command, _ []string) error {
	all := priority.Strategies()

	if outputFormat() == output.FormatJSON {
		infos := make([]strategyInfo, 0, len(all))
		for _, s := range all {
			infos = append(infos, strategyInfo{
				Name:    s,
				Title:   s.Title(),
				Focus:   s.Focus(),
				Weights: s.Weights(),
				Default: s == priority.DefaultStrategy,
			})
		}
		return output.JSON(os.Stdout, infos)
	}

	if outputFormat() == output.FormatCompact {
		for _, s := range all {
			w := s.Weights()
			output.Messagef(os.Stdout, "%s u=%.2f i=%.2f e=%.2f d=%.2f", s, w.Urgency, w.Importance, w.Effort, w.Dependency)
		}
		return nil
	}

	output.StrategiesTable(os.Stdout, all)
	return nil
}
