package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskrank/internal/config"
	"github.com/twiced-technology-gmbh/taskrank/internal/ctxlog"
	"github.com/twiced-technology-gmbh/taskrank/internal/engine"
	"github.com/twiced-technology-gmbh/taskrank/internal/report"
	"github.com/twiced-technology-gmbh/taskrank/internal/server"
	"github.com/twiced-technology-gmbh/taskrank/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyze and suggest HTTP API",
	Long: `Starts the HTTP API:

  POST /api/tasks/analyze/   rank a batch and remember it
  GET  /api/tasks/suggest/   top tasks of the last batch
  GET  /health               liveness probe

The last batch is kept in memory for the lifetime of the server. Inside a
workspace, server settings come from config.yml and each analysis is
appended to the history log.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, else "+config.DefaultServerAddr+")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := optionalConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd.Context(), cfg), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, engOpts := serverOptions(cfg)
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		opts.Addr = addr
	}

	ctxlog.FromContext(ctx).Info("starting server", "addr", opts.Addr)
	return server.New(engine.New(session.NewMemory(), engOpts...), opts).Run(ctx)
}

// serverOptions maps the workspace config onto server and engine options.
// A nil config leaves every default in place.
func serverOptions(cfg *config.Config) (server.Options, []engine.Option) {
	if cfg == nil {
		return server.Options{}, nil
	}
	opts := server.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.ReadTimeout(),
		ShutdownTimeout: cfg.ShutdownTimeout(),
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
	}
	engOpts := []engine.Option{
		engine.WithSuggestCount(cfg.Suggest.Count),
		engine.WithRecorder(report.NewHistory(cfg.HistoryPath(), cfg.History.MaxEntries)),
	}
	return opts, engOpts
}
