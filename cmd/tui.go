package cmd

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
	"github.com/twiced-technology-gmbh/taskrank/internal/tui"
	"github.com/twiced-technology-gmbh/taskrank/internal/watcher"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [FILE]",
	Short: "Browse a ranked batch interactively",
	Long: `Opens an interactive ranked list of the batch with a detail pane for the
selected task. Press s to switch strategy, r to reload, q to quit. The list
reloads when the batch file or workspace tasks change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	addStrategyFlag(tuiCmd.Flags())
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return clierr.New(clierr.NotATerminal, "tui requires an interactive terminal; use 'taskrank analyze' instead")
	}

	cfg, err := optionalConfig()
	if err != nil {
		return err
	}
	target, err := watchTarget(cfg, args)
	if err != nil {
		return err
	}

	batch, err := loadBatch(cfg, args)
	if err != nil {
		return err
	}
	strategy, err := priority.ParseStrategy(resolveStrategy(cmd, batch, cfg))
	if err != nil {
		return err
	}

	load := func() ([]task.Input, error) {
		b, loadErr := loadBatch(cfg, args)
		if loadErr != nil {
			return nil, loadErr
		}
		return b.Tasks, nil
	}

	model := tui.NewRanking(load, strategy)
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go startTUIWatcher(ctx, target, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, target string, p *tea.Program) {
	w, err := watcher.New(target, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}
