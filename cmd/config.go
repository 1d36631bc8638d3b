package cmd

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/config"
	"github.com/twiced-technology-gmbh/taskrank/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify workspace configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"name": {
			get:      func(c *config.Config) any { return c.Name },
			set:      func(c *config.Config, v string) error { c.Name = v; return nil },
			writable: true,
		},
		"tasks_dir": {
			get: func(c *config.Config) any { return c.TasksDir },
		},
		"defaults.strategy": {
			get:      func(c *config.Config) any { return c.Defaults.Strategy },
			set:      enumSetter("defaults.strategy", config.Strategies, func(c *config.Config, v string) { c.Defaults.Strategy = v }),
			writable: true,
		},
		"suggest.count": {
			get:      func(c *config.Config) any { return c.Suggest.Count },
			set:      intSetter("suggest.count", func(c *config.Config, n int) { c.Suggest.Count = n }),
			writable: true,
		},
		"server.addr": {
			get:      func(c *config.Config) any { return c.Server.Addr },
			set:      func(c *config.Config, v string) error { c.Server.Addr = v; return nil },
			writable: true,
		},
		"server.read_timeout": {
			get:      func(c *config.Config) any { return c.Server.ReadTimeout },
			set:      durationSetter("server.read_timeout", func(c *config.Config, v string) { c.Server.ReadTimeout = v }),
			writable: true,
		},
		"server.shutdown_timeout": {
			get:      func(c *config.Config) any { return c.Server.ShutdownTimeout },
			set:      durationSetter("server.shutdown_timeout", func(c *config.Config, v string) { c.Server.ShutdownTimeout = v }),
			writable: true,
		},
		"server.max_body_bytes": {
			get: func(c *config.Config) any { return c.Server.MaxBodyBytes },
			set: intSetter("server.max_body_bytes", func(c *config.Config, n int) {
				c.Server.MaxBodyBytes = int64(n)
			}),
			writable: true,
		},
		"log.level": {
			get:      func(c *config.Config) any { return c.Log.Level },
			set:      enumSetter("log.level", config.LogLevels, func(c *config.Config, v string) { c.Log.Level = v }),
			writable: true,
		},
		"log.format": {
			get:      func(c *config.Config) any { return c.Log.Format },
			set:      enumSetter("log.format", config.LogFormats, func(c *config.Config, v string) { c.Log.Format = v }),
			writable: true,
		},
		"history.max_entries": {
			get:      func(c *config.Config) any { return c.History.MaxEntries },
			set:      intSetter("history.max_entries", func(c *config.Config, n int) { c.History.MaxEntries = n }),
			writable: true,
		},
		"next_id": {
			get: func(c *config.Config) any { return c.NextID },
		},
	}
}

func enumSetter(key string, allowed []string, apply func(*config.Config, string)) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		if !slices.Contains(allowed, v) {
			return clierr.Newf(clierr.InvalidInput,
				"invalid %s %q; allowed: %s", key, v, strings.Join(allowed, ", "))
		}
		apply(c, v)
		return nil
	}
}

func intSetter(key string, apply func(*config.Config, int)) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be an integer", key, v)
		}
		apply(c, n)
		return nil // validation handles range check
	}
}

func durationSetter(key string, apply func(*config.Config, string)) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		if _, err := time.ParseDuration(v); err != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid %s %q: %v", key, v, err)
		}
		apply(c, v)
		return nil
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"name",
		"tasks_dir",
		"defaults.strategy",
		"suggest.count",
		"server.addr",
		"server.read_timeout",
		"server.shutdown_timeout",
		"server.max_body_bytes",
		"log.level",
		"log.format",
		"history.max_entries",
		"next_id",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		fmt.Fprintf(os.Stdout, "%-24s %v\n", key, accessors[key].get(cfg))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}

	val := acc.get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}
	fmt.Fprintln(os.Stdout, val)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.New(clierr.InvalidInput, err.Error())
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}
	output.Messagef(os.Stdout, "Set %s = %v", key, acc.get(cfg))
	return nil
}

func unknownConfigKey(key string) error {
	return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
		WithDetails(map[string]any{"key": key, "valid": allConfigKeys()})
}
