package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campuscare/wellbeing-chat/internal/core"
)

var askCmd = &cobra.Command{
	Use:   "ask <text>",
	Short: "Compose a single reply without history or storage",
	Long: `Consults the three personas about one message and prints the merged reply.
Nothing is stored and no prior conversation is used.

Examples:
  server ask "I can't sleep before exams"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	text := args[0]
	ctx := context.Background()

	composer, closeComposer, err := buildComposer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeComposer(ctx) }()

	reply, err := composer.Compose(ctx, core.RenderContext(nil, cfg.HistoryWindow, text), text)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
