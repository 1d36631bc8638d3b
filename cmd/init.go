package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskrank/internal/config"
	"github.com/twiced-technology-gmbh/taskrank/internal/output"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new taskrank workspace",
	Long:  `Creates a taskrank directory with config.yml and a tasks/ subdirectory.`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "", "workspace name (defaults to current directory name)")
	addStrategyFlag(initCmd.Flags())
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	strategyFlag, _ := cmd.Flags().GetString("strategy")
	strategy, err := priority.ParseStrategy(strategyFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Init(dir, name)
	if err != nil {
		return err
	}

	if strategy != priority.Strategy(cfg.Defaults.Strategy) {
		cfg.Defaults.Strategy = string(strategy)
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":   "initialized",
			"dir":      cfg.Dir(),
			"name":     cfg.Name,
			"config":   cfg.ConfigPath(),
			"tasks":    cfg.TasksPath(),
			"strategy": cfg.Defaults.Strategy,
		})
	}

	output.Messagef(os.Stdout, "Initialized workspace %q in %s", cfg.Name, cfg.Dir())
	output.Messagef(os.Stdout, "  Config:   %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Tasks:    %s", cfg.TasksPath())
	output.Messagef(os.Stdout, "  Strategy: %s", cfg.Defaults.Strategy)
	output.Messagef(os.Stdout, "  Hint:     Add a task with: taskrank add \"Title\" --due 2025-01-31")
	return nil
}
