package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/engine"
	"github.com/twiced-technology-gmbh/taskrank/internal/output"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/report"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

var explainCmd = &cobra.Command{
	Use:   "explain ID [FILE]",
	Short: "Explain how one task was scored",
	Long: `Ranks the batch (FILE, "-" for stdin, or the workspace task files) and prints
a report for task ID: sub-scores, weights, adjustments and dependency issues.
Nothing is stored.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // ID and optional FILE
	RunE: runExplain,
}

func init() {
	addStrategyFlag(explainCmd.Flags())
	rootCmd.AddCommand(explainCmd)
}

// explanation is the JSON shape of an explain report.
type explanation struct {
	priority.ScoredTask
	Strategy    priority.Strategy  `json:"strategy"`
	Blocks      int                `json:"blocks"`
	Overdue     bool               `json:"overdue"`
	CycleMember bool               `json:"cycle_member"`
	Breakdown   priority.Breakdown `json:"breakdown"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return task.ValidateTaskID(args[0])
	}

	cfg, err := optionalConfig()
	if err != nil {
		return err
	}
	batch, err := loadBatch(cfg, args[1:])
	if err != nil {
		return err
	}

	res, err := newEngine(cfg).Rank(engine.Request{
		Strategy: resolveStrategy(cmd, batch, cfg),
		Tasks:    batch.Tasks,
	})
	if err != nil {
		return err
	}

	st, ok := findScored(res.Tasks, id)
	if !ok {
		return clierr.Newf(clierr.TaskNotFound, "task not found: #%d", id).
			WithDetails(map[string]any{"id": id})
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, explanation{
			ScoredTask:  st,
			Strategy:    res.Strategy,
			Blocks:      st.Blocks,
			Overdue:     st.Overdue,
			CycleMember: st.CycleMember,
			Breakdown:   st.Breakdown,
		})
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, st)
		return nil
	}

	fd := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(fd)
	width := report.DefaultWrap
	if isTTY {
		if w, _, sizeErr := term.GetSize(fd); sizeErr == nil && w > 0 {
			width = min(w, report.DefaultWrap+40) //nolint:mnd // cap very wide terminals
		}
	}
	rendered, err := report.Render(report.Markdown(st, res.Strategy), isTTY && !colorDisabled(), width)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, rendered)
	return nil
}

func findScored(tasks []priority.ScoredTask, id int) (priority.ScoredTask, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return priority.ScoredTask{}, false
}
