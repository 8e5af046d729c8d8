package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/campuscare/wellbeing-chat/internal/config"
	"github.com/campuscare/wellbeing-chat/internal/logger"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Student wellbeing chat backend",
	Long: `Runs the wellbeing chat API. Every message is answered by a psychiatrist,
a counselor and a wellness coach persona whose opinions are merged into one
short reply.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log = logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	// Running the binary without a subcommand serves the API.
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
