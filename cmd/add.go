package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/config"
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
	"github.com/twiced-technology-gmbh/taskrank/internal/output"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

var addCmd = &cobra.Command{
	Use:     "add [TITLE]",
	Aliases: []string{"create"},
	Short:   "Add a task to the workspace",
	Long: `Creates a task file in the workspace tasks directory.

Title can be provided as a positional argument or via --title flag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	addCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().Float64("hours", 0, "estimated hours (default 1)")
	addCmd.Flags().Int("importance", 0, "importance from 1 to 10 (default 5)")
	addCmd.Flags().IntSlice("depends-on", nil, "dependency task IDs (comma-separated)")
	addCmd.Flags().String("body", "", "task notes (markdown)")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "estimate", "estimated-hours":
			name = "hours"
		case "description":
			name = "body"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	title, err := resolveAddTitle(cmd, args)
	if err != nil {
		return err
	}

	in := task.Input{Title: strings.TrimSpace(title)}
	if err := applyAddFlags(cmd, &in); err != nil {
		return err
	}
	if verrs := task.Validate([]task.Input{in}); verrs != nil {
		return verrs.CLIError()
	}
	warnUnknownDeps(cfg, in.Dependencies)

	floor, err := task.NextID(cfg.TasksPath())
	if err != nil {
		return err
	}
	id, err := cfg.ClaimNextID(floor)
	if err != nil {
		return fmt.Errorf("claiming task id: %w", err)
	}
	in.ID = &id

	path := filepath.Join(cfg.TasksPath(), task.Filename(id, in.Title))
	if err := task.Write(path, &in); err != nil {
		return fmt.Errorf("writing task: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"task": in, "file": path})
	}
	output.Messagef(os.Stdout, "Created task #%d: %s", id, in.Title)
	output.Messagef(os.Stdout, "  File: %s", path)
	return nil
}

// resolveAddTitle returns the task title from either the positional arg or --title flag.
func resolveAddTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", clierr.New(clierr.TitleRequired,
			"title is required: provide it as an argument or with --title")
	}
}

func applyAddFlags(cmd *cobra.Command, in *task.Input) error {
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return task.ValidateDate("due", v, err)
		}
		in.DueDate = &d
	}
	if cmd.Flags().Changed("hours") {
		v, _ := cmd.Flags().GetFloat64("hours")
		in.EstimatedHours = &v
	}
	if cmd.Flags().Changed("importance") {
		v, _ := cmd.Flags().GetInt("importance")
		in.Importance = &v
	}
	if v, _ := cmd.Flags().GetIntSlice("depends-on"); len(v) > 0 {
		in.Dependencies = v
	}
	if v, _ := cmd.Flags().GetString("body"); v != "" {
		in.Body = v
	}
	return nil
}

// warnUnknownDeps notes dependencies with no task file. They are kept, and
// ranking reports them as unknown.
func warnUnknownDeps(cfg *config.Config, deps []int) {
	for _, dep := range deps {
		_, err := task.FindByID(cfg.TasksPath(), dep)
		var ce *clierr.Error
		if errors.As(err, &ce) && ce.Code == clierr.TaskNotFound {
			fmt.Fprintf(os.Stderr, "Warning: no task file for dependency #%d; ranking will ignore it\n", dep)
		}
	}
}
