package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	pglog "github.com/nao1215/pagegate/internal/log"
)

// NewRootCmd creates the root command for pagegate.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagegate",
		Short: "Page admission and near-duplicate filter for focused crawlers",
		Long: `pagegate decides, for every page a crawler fetched, whether the page is
original content worth indexing and which of its links belong on the frontier.

Pages are rejected when the fetch failed, the body is empty or oversized,
no words remain after stripping markup, the page is a near duplicate of an
accepted page (SimHash), or a large page carries too little text.
Links are canonicalized and kept only when they stay inside the allowed
domains and avoid known crawler traps.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewFilterCmd())
	cmd.AddCommand(NewCheckCmd())
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

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the secure structured logger for a command.
// Logs go to w so they never mix with report output on stdout.
func setupLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	if jsonLogs, err := cmd.Flags().GetBool("log-json"); err == nil && jsonLogs {
		return pglog.NewSecureJSONLogger(w, verbose)
	}
	return pglog.NewSecureLogger(w, verbose)
}
