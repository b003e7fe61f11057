package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/jrsteele09/spamscope/auth"
	"github.com/jrsteele09/spamscope/commands"
	"github.com/jrsteele09/spamscope/graph"
	"github.com/jrsteele09/spamscope/internal/config"
	"github.com/jrsteele09/spamscope/internal/logging"
	"github.com/jrsteele09/spamscope/internal/metrics"
	"github.com/jrsteele09/spamscope/mailbox"
	"github.com/jrsteele09/spamscope/ui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the wired components shared by every subcommand.
type app struct {
	config   config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	recorder metrics.Recorder
	emitter  *ui.Emitter
	commands *commands.Commands
}

type appOptions struct {
	// noBrowser only prints the authorization URL
	noBrowser bool

	load []config.LoadOption
}

func newApp(cmd *cobra.Command, o *rootOptions, opts appOptions) (*app, error) {
	load := append([]config.LoadOption{
		config.WithFlag("log_level", cmd.Flag("log-level")),
		config.WithFlag("env", cmd.Flag("env")),
		config.WithFlag("client_id", cmd.Flag("client-id")),
	}, opts.load...)
	cfg, err := config.Load(o.configPath, load...)
	if err != nil {
		return nil, err
	}

	logger := logging.Setup(os.Stderr, cfg.GetLogLevel(), cfg.GetEnv())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	emitter := ui.NewEmitter(cmd.ErrOrStderr())
	var presenter auth.UI = ui.NewBrowser(emitter)
	if opts.noBrowser {
		presenter = emitter
	}

	flow := auth.NewFlow(cfg, presenter, auth.WithLogger(logger), auth.WithMetrics(recorder))
	graphClient := graph.New(cfg, graph.WithLogger(logger), graph.WithMetrics(recorder))
	mailboxClient := mailbox.New(cfg, mailbox.WithLogger(logger), mailbox.WithMetrics(recorder))

	return &app{
		config:   cfg,
		logger:   logger,
		registry: registry,
		recorder: recorder,
		emitter:  emitter,
		commands: commands.New(flow, graphClient, mailboxClient),
	}, nil
}

func jsonEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc
}
