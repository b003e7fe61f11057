package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/spamscope/internal/config"
	"github.com/jrsteele09/spamscope/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(o *rootOptions) *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API for the desktop front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, o, appOptions{
				noBrowser: noBrowser,
				load:      []config.LoadOption{config.WithFlag("port", cmd.Flag("port"))},
			})
			if err != nil {
				return err
			}
			displayAppname(cmd, a.config.GetAppName())

			handler := server.New(a.config, a.commands, a.emitter,
				server.WithLogger(a.logger),
				server.WithMetrics(a.recorder, a.registry),
			)
			srv := &http.Server{
				Addr:              a.config.GetPort(),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, srv, a.logger)
		},
	}
	cmd.Flags().String("port", "", "API listen port or address")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the system browser; poll /api/oauth-url instead")
	return cmd
}

// run serves until ctx is done, then shuts the server down.
func run(ctx context.Context, srv *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(srv, logger)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

func listenAndServe(srv *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe: %w", err)
	}
	return nil
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(cmd *cobra.Command, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(cmd.ErrOrStderr(), myFigure.String())
}
