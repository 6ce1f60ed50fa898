package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	rankhttp "github.com/fyrsmithlabs/contextrank/internal/http"
	"github.com/fyrsmithlabs/contextrank/internal/logging"
	"github.com/fyrsmithlabs/contextrank/internal/mcp"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ranking HTTP API",
		Long: `Serve the ranking API:

  GET  /health
  GET  /metrics
  GET  /api/v1/languages
  POST /api/v1/rank/sentences
  POST /api/v1/rank/contexts

Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, opts, logging.WriterStdout)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(ctx); err == nil {
					err = cerr
				}
			}()

			httpCfg := rankhttp.FromSettings(a.cfg.Server)
			if cmd.Flags().Changed("host") {
				httpCfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				httpCfg.Port = port
			}
			srv, err := rankhttp.NewServer(a.service, a.logger, httpCfg)
			if err != nil {
				return fmt.Errorf("failed to create http server: %w", err)
			}
			return serveUntilDone(ctx, srv, httpCfg, a.logger)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	return cmd
}

// serveUntilDone runs srv until it fails or ctx is canceled, then shuts it
// down within the configured timeout.
func serveUntilDone(ctx context.Context, srv *rankhttp.Server, cfg *rankhttp.Config, logger *logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.WithoutCancel(ctx), "shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "http server shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Run a Model Context Protocol server over stdin/stdout exposing the
rank_sentences, rank_contexts and list_languages tools.

Logs go to stderr so they never corrupt the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, opts, logging.WriterStderr)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(ctx); err == nil {
					err = cerr
				}
			}()

			srv, err := mcp.NewServer(&mcp.Config{
				Name:      "contextrank",
				Version:   version,
				Logger:    a.logger,
				Telemetry: a.tel,
			}, a.service)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
