package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"gopherai-docqa/internal/bootstrap"
	"gopherai-docqa/internal/transport/mcp"
	"gopherai-docqa/internal/worker"
)

func NewMCPCmd() *cobra.Command {
	var documentPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start an MCP (Model Context Protocol) server on stdio.

LLM agents can call ingest_document to load a file and ask_question to get
answers grounded in it.`,
		Example: `  docqa mcp --document ./handbook.pdf

  # claude_desktop_config.json:
  # { "mcpServers": { "docqa": { "command": "docqa", "args": ["mcp"] } } }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd.Context(), documentPath)
		},
	}
	cmd.Flags().StringVarP(&documentPath, "document", "d", "", "ingest FILE before serving")
	return cmd
}

func runMCP(parent context.Context, documentPath string) error {
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

	if documentPath != "" {
		if err := worker.NewDocumentWatcher(documentPath, app.Orchestrator, 0).Reload(ctx); err != nil {
			return err
		}
	}

	server := mcpserver.NewMCPServer("docqa", versionInfo.Version)
	mcp.RegisterTools(server, app.Orchestrator)

	log.Println("docqa MCP server starting on stdio...")
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		log.Println("shutdown signal received")
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
