package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/philowalk/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for philowalk.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "philowalk",
		Short: "Follow first links on Wikipedia until you reach Philosophy",
		Long: `philowalk tests the "Getting to Philosophy" observation: clicking the first
link in the main text of a Wikipedia article, outside parentheses and
italics, and repeating, almost always ends at the article "Philosophy".

It prints every article on the way and the number of links it took.
Finished walks are recorded in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs to stderr as JSON")

	cmd.AddCommand(NewWalkCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger creates the redacting logger for cmd, writing to its stderr,
// and installs it as the slog default.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	var logger *slog.Logger
	if jsonLogs, err := cmd.Flags().GetBool("log-json"); err == nil && jsonLogs {
		logger = log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	} else {
		logger = log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
	}
	slog.SetDefault(logger)
	return logger
}
