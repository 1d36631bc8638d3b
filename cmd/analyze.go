package cmd

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/engine"
	"github.com/twiced-technology-gmbh/taskrank/internal/output"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze [FILE]",
	Aliases: []string{"rank"},
	Short:   "Score and rank a batch of tasks",
	Long: `Scores every task in the batch under a strategy and prints them ranked.

FILE is a JSON, YAML or HCL batch document; "-" reads stdin. Without FILE the
task files of the workspace are ranked. The analyzed batch is stored in the
workspace for 'taskrank suggest'.

The strategy is taken from --strategy, then the batch document's "strategy"
key, then $TASKRANK_STRATEGY, then the workspace default.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	addStrategyFlag(analyzeCmd.Flags())
	analyzeCmd.Flags().IntP("limit", "n", 0, "show only the top N tasks")
	analyzeCmd.Flags().StringSlice("label", nil, "filter by priority label (High, Medium, Low; comma-separated)")
	analyzeCmd.Flags().Float64("min-score", 0, "hide tasks scoring below this value")
	analyzeCmd.Flags().Bool("issues", false, "show only tasks with dependency issues")
	analyzeCmd.Flags().String("search", "", "filter by title (case-insensitive)")
	analyzeCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(report.ValidGroupByFields(), ", ")+")")
	analyzeCmd.Flags().Bool("summary", false, "print aggregate metrics instead of the list")
	rootCmd.AddCommand(analyzeCmd)
}

// addStrategyFlag registers --strategy/-s, also accepted as --mode.
func addStrategyFlag(fs *pflag.FlagSet) {
	fs.StringP("strategy", "s", "",
		"scoring strategy ("+strings.Join(priority.StrategyNames(), ", ")+")")
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "mode" {
			name = "strategy"
		}
		return pflag.NormalizedName(name)
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := optionalConfig()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd.Context(), cfg)

	batch, err := loadBatch(cfg, args)
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" && !slices.Contains(report.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidGroupBy, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(report.ValidGroupByFields(), ", "))
	}

	eng := newEngine(cfg)
	res, err := eng.Analyze(ctx, engine.Request{
		Strategy: resolveStrategy(cmd, batch, cfg),
		Tasks:    batch.Tasks,
	})
	if err != nil {
		return err
	}
	tasks := report.Filter(res.Tasks, filter)

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		return outputSummary(report.Summarize(tasks, res.Strategy))
	}
	if groupBy != "" {
		grouped, err := report.GroupBy(tasks, groupBy, eng.Today())
		if err != nil {
			return err
		}
		return outputGrouped(grouped)
	}
	return outputRanked(&engine.Result{Strategy: res.Strategy, Tasks: tasks})
}

func filterFromFlags(cmd *cobra.Command) (report.FilterOptions, error) {
	var opts report.FilterOptions

	labels, _ := cmd.Flags().GetStringSlice("label")
	for _, l := range labels {
		label, err := priority.ParseLabel(strings.TrimSpace(l))
		if err != nil {
			return opts, err
		}
		opts.Labels = append(opts.Labels, label)
	}
	opts.MinScore, _ = cmd.Flags().GetFloat64("min-score")
	opts.IssuesOnly, _ = cmd.Flags().GetBool("issues")
	opts.Search, _ = cmd.Flags().GetString("search")
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	return opts, nil
}

func outputRanked(res *engine.Result) error {
	switch outputFormat() {
	case output.FormatJSON:
		if res.Tasks == nil {
			res.Tasks = []priority.ScoredTask{}
		}
		return output.JSON(os.Stdout, res)
	case output.FormatCompact:
		output.RankedCompact(os.Stdout, res.Tasks)
	default:
		output.RankedTable(os.Stdout, res.Tasks)
	}
	return nil
}

func outputSummary(s report.Summary) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, s)
	case output.FormatCompact:
		output.SummaryCompact(os.Stdout, s)
	default:
		output.SummaryTable(os.Stdout, s)
	}
	return nil
}

func outputGrouped(g report.Grouped) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, g)
	case output.FormatCompact:
		output.GroupedCompact(os.Stdout, g)
	default:
		output.GroupedTable(os.Stdout, g)
	}
	return nil
}
