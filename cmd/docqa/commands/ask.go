package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gopherai-docqa/internal/bootstrap"
)

func NewAskCmd() *cobra.Command {
	var showContext bool

	cmd := &cobra.Command{
		Use:   "ask FILE QUESTION",
		Short: "Answer one question about a document",
		Long: `Ingest FILE and answer QUESTION from it, then exit.

No optional infrastructure (MySQL, Redis, RabbitMQ) is used.`,
		Example: `  docqa ask handbook.pdf "How many vacation days do I get?"
  RETRIEVAL_MODE=full_context docqa ask notes.txt "Summarize the action items" --context`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read document failed: %w", err)
			}
			orchestrator, err := bootstrap.NewOrchestrator(cfg, nil, nil)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if _, err := orchestrator.Ingest(ctx, filepath.Base(args[0]), data); err != nil {
				return err
			}
			answer, err := orchestrator.Ask(ctx, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, answer.Text)
			if showContext {
				fmt.Fprintln(out)
				for _, sc := range answer.Context {
					fmt.Fprintf(out, "[page %d, score %.3f] %s\n", sc.Chunk.Page, sc.Score, preview(sc.Chunk.Text, 120))
				}
				if answer.Truncated {
					fmt.Fprintln(out, "(context truncated)")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showContext, "context", false, "print the chunks used as context")
	return cmd
}

func preview(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
