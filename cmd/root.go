// Package cmd implements the taskrank CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/config"
	"github.com/twiced-technology-gmbh/taskrank/internal/ctxlog"
	"github.com/twiced-technology-gmbh/taskrank/internal/engine"
	"github.com/twiced-technology-gmbh/taskrank/internal/output"
	"github.com/twiced-technology-gmbh/taskrank/internal/report"
	"github.com/twiced-technology-gmbh/taskrank/internal/session"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// envStrategy overrides the configured default strategy.
const envStrategy = "TASKRANK_STRATEGY"

// Global flags.
var (
	flagJSON      bool
	flagTable     bool
	flagCompact   bool
	flagDir       string
	flagNoColor   bool
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "taskrank",
	Short: "Rank tasks by urgency, importance, effort and dependencies",
	Long: `taskrank scores a batch of tasks under a weighting strategy and ranks them,
explaining each score and flagging unknown or circular dependencies.

Batches come from a JSON, YAML or HCL file, from stdin, or from the task
files of a taskrank workspace (see 'taskrank init').`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if colorDisabled() {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to taskrank workspace directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text or json (default from config)")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	var ve *task.ValidationErrors
	if errors.As(err, &ve) {
		err = ve.CLIError()
	}

	if outputFormat() == output.FormatJSON {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	if ve != nil {
		for _, fe := range ve.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", fe)
		}
	}
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the absolute path to the workspace directory.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return config.FindDir(cwd)
}

// loadConfig finds and loads the workspace config.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if errors.Is(err, config.ErrNotFound) {
		return nil, clierr.New(clierr.WorkspaceNotFound, err.Error()).
			WithDetails(map[string]any{"dir": dir})
	}
	return cfg, err
}

// optionalConfig loads the workspace config when there is one. Commands
// reading an explicit batch file work without a workspace.
func optionalConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	var ce *clierr.Error
	if errors.As(err, &ce) && ce.Code == clierr.WorkspaceNotFound {
		return nil, nil
	}
	return cfg, err
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

func colorDisabled() bool {
	return flagNoColor || os.Getenv("NO_COLOR") != ""
}

// printWarnings writes task read warnings to stderr.
func printWarnings(warnings []task.ReadWarning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: skipping malformed file %s: %v\n", w.File, w.Err)
	}
}

// commandContext returns a context carrying the logger built from the
// --log-* flags, falling back to the workspace config.
func commandContext(ctx context.Context, cfg *config.Config) context.Context {
	level, format := flagLogLevel, flagLogFormat
	if cfg != nil {
		if level == "" {
			level = cfg.Log.Level
		}
		if format == "" {
			format = cfg.Log.Format
		}
	}
	if level == "" {
		level = config.DefaultLogLevel
	}
	return ctxlog.WithLogger(ctx, ctxlog.New(level, format, os.Stderr))
}

// newEngine builds an engine persisting to the workspace when there is
// one. Without a workspace the last analysis lives only in memory.
func newEngine(cfg *config.Config) *engine.Engine {
	if cfg == nil {
		return engine.New(session.NewMemory())
	}
	return engine.New(session.NewFile(cfg.LastAnalysisPath()),
		engine.WithSuggestCount(cfg.Suggest.Count),
		engine.WithRecorder(report.NewHistory(cfg.HistoryPath(), cfg.History.MaxEntries)),
	)
}

// resolveStrategy picks the strategy name: the flag, then the batch
// document, then TASKRANK_STRATEGY, then the workspace default.
func resolveStrategy(cmd *cobra.Command, batch *task.Batch, cfg *config.Config) string {
	if f := cmd.Flags().Lookup("strategy"); f != nil && f.Changed {
		return f.Value.String()
	}
	if batch != nil && batch.Strategy != "" {
		return batch.Strategy
	}
	if s := os.Getenv(envStrategy); s != "" {
		return s
	}
	if cfg != nil {
		return cfg.Defaults.Strategy
	}
	return ""
}

// loadBatch reads the batch named by args: a file path, "-" for stdin, or
// the workspace tasks directory when args is empty.
func loadBatch(cfg *config.Config, args []string) (*task.Batch, error) {
	if len(args) > 0 {
		if args[0] == "-" {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return nil, clierr.New(clierr.InvalidInput,
					"refusing to read a batch from an interactive terminal; pipe a document or pass a file")
			}
			return task.ReadBatch(os.Stdin)
		}
		return task.ReadBatchFile(args[0])
	}

	if cfg == nil {
		return nil, clierr.New(clierr.WorkspaceNotFound,
			"no batch file given and "+config.ErrNotFound.Error())
	}
	inputs, warnings, err := task.ReadDir(cfg.TasksPath())
	if err != nil {
		return nil, err
	}
	printWarnings(warnings)
	if inputs == nil {
		inputs = []task.Input{}
	}
	return &task.Batch{Tasks: inputs}, nil
}

// watchTarget is the path watched for a batch: the file itself or the
// workspace tasks directory.
func watchTarget(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		if args[0] == "-" {
			return "", clierr.New(clierr.InvalidInput, "cannot watch stdin; pass a batch file")
		}
		return args[0], nil
	}
	if cfg == nil {
		return "", clierr.New(clierr.WorkspaceNotFound,
			"no batch file given and "+config.ErrNotFound.Error())
	}
	return cfg.TasksPath(), nil
}
