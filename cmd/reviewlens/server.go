package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/reviewlens/reviewlens/internal/api"
	"github.com/reviewlens/reviewlens/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reviewlens HTTP and MCP servers (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "reviewlens version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if cfg.Server.AuthToken == "" {
		printWarning("REVIEWLENS_AUTH_TOKEN not set, API authentication disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	handler := api.NewHandler(api.Deps{
		Searcher: a.searcher,
		Finder:   a.finder,
		Queries:  a.store,
		Catalog:  a.store,
		Token:    cfg.Server.AuthToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server rides the same process over stdio.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Searcher: a.searcher,
		Finder:   a.finder,
		Queries:  a.store,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
