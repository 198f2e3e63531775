package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gopherai-docqa/internal/config"
)

var (
	configPath string
	quiet      bool
)

// NewRootCmd builds the docqa command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docqa",
		Short: "Ask questions about a single document",
		Long: `docqa answers questions about one PDF or text document at a time.

The document is split into chunks, indexed either by embeddings (vector mode)
or kept whole (full_context mode), and the best context is handed to a local
or remote language model with instructions to answer only from that context.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				log.SetOutput(io.Discard)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (TOML or YAML); defaults to $CONFIG_FILE or "+config.DefaultPath)
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress log output")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env (if present) and then the layered config.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env failed: %v", err)
	}

	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return cfg, nil
}
