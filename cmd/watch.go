package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskrank/internal/config"
	"github.com/twiced-technology-gmbh/taskrank/internal/engine"
	"github.com/twiced-technology-gmbh/taskrank/internal/report"
	"github.com/twiced-technology-gmbh/taskrank/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [FILE]",
	Short: "Re-rank a batch whenever it changes",
	Long: `Ranks the batch once, then again every time the batch file (or the
workspace tasks directory) changes. Each run is stored as the last analysis.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addStrategyFlag(watchCmd.Flags())
	watchCmd.Flags().IntP("limit", "n", 0, "show only the top N tasks")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := optionalConfig()
	if err != nil {
		return err
	}
	target, err := watchTarget(cfg, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd.Context(), cfg), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := newEngine(cfg)
	if err := renderWatch(ctx, cmd, eng, cfg, args); err != nil {
		return err
	}

	w, err := watcher.New(target, func() {
		clearScreen()
		if renderErr := renderWatch(ctx, cmd, eng, cfg, args); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: ranking batch: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	return nil
}

func renderWatch(ctx context.Context, cmd *cobra.Command, eng *engine.Engine, cfg *config.Config, args []string) error {
	batch, err := loadBatch(cfg, args)
	if err != nil {
		return err
	}
	res, err := eng.Analyze(ctx, engine.Request{
		Strategy: resolveStrategy(cmd, batch, cfg),
		Tasks:    batch.Tasks,
	})
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	tasks := report.Filter(res.Tasks, report.FilterOptions{Limit: limit})
	return outputRanked(&engine.Result{Strategy: res.Strategy, Tasks: tasks})
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
