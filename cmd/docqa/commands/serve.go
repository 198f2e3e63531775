package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gopherai-docqa/internal/bootstrap"
	httptransport "gopherai-docqa/internal/transport/http"
	"gopherai-docqa/internal/worker"
)

func NewServeCmd() *cobra.Command {
	var watchPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Documents are uploaded with POST /api/v1/documents and questions are asked
with POST /api/v1/questions. With --watch the given file is ingested at
startup and again whenever it changes on disk.`,
		Example: `  docqa serve
  docqa serve --watch ./handbook.pdf
  APP_PORT=9000 RETRIEVAL_MODE=full_context docqa serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), watchPath)
		},
	}
	cmd.Flags().StringVarP(&watchPath, "watch", "w", "", "ingest FILE at startup and re-ingest it when it changes")
	return cmd
}

func runServe(parent context.Context, watchPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close resources failed: %v", err)
		}
	}()

	if watchPath != "" {
		watcher := worker.NewDocumentWatcher(watchPath, app.Orchestrator, 0)
		if err := watcher.Reload(ctx); err != nil {
			log.Printf("initial ingest failed: %v", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Close()
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           httptransport.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
	return nil
}
