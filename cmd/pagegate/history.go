package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagegate/internal/config"
	"github.com/nao1215/pagegate/internal/database"
	"github.com/nao1215/pagegate/internal/model"
)

// NewHistoryCmd creates the history command.
// This command reads past runs back from the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded filter runs or show one of them",
		Long: `History reads the run database written by 'pagegate filter'.

Without --id it lists every recorded run, newest first. With --id it prints
the report of that run in the requested format, and with --decisions the
verdict for every page of the run.

The database is only an audit log: later runs never load the pages or
fingerprints stored here.

Examples:
  # List all runs
  pagegate history

  # Show the report of run 3 as Markdown
  pagegate history --id 3 --markdown

  # Show why each page of run 3 was accepted or rejected
  pagegate history --id 3 --decisions`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	addConfigFlag(cmd)
	cmd.Flags().Int64P("id", "i", 0, "Run id to show (see the list for ids)")
	cmd.Flags().BoolP("decisions", "d", false, "List the page decisions of the run")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	showDecisions, err := cmd.Flags().GetBool("decisions")
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}
	if showDecisions && runID == 0 {
		return errors.New("--decisions requires --id")
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case runID == 0:
		return listRuns(ctx, db, out, cfg.JSONReport)
	case showDecisions:
		return showRunDecisions(ctx, db, out, runID, cfg.JSONReport)
	default:
		rep, err := db.GetRunReport(ctx, runID)
		if err != nil {
			return runLookupError(runID, err)
		}
		_, err = reportWriter(cfg, out).Write(rep)
		return err
	}
}

// runLookupError turns a missing run into a hint for the user.
func runLookupError(runID int64, err error) error {
	if errors.Is(err, database.ErrRunNotFound) {
		return fmt.Errorf("run %d not found or never finished (use 'pagegate history' to list runs): %w", runID, err)
	}
	return err
}

// listRuns prints every recorded run, newest first.
func listRuns(ctx context.Context, db *database.RunDB, out io.Writer, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out, "\nUse 'pagegate filter <manifest>' to filter a crawl.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %8s  %8s  %7s  %s\n", "ID", "Started", "Accepted", "Rejected", "Links", "Manifest")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))
	for _, r := range runs {
		manifest := r.Manifest
		if !r.Finished() {
			manifest += " (incomplete)"
		}
		fmt.Fprintf(out, "  %-6d  %-19s  %8d  %8d  %7d  %s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Accepted, r.Rejected, r.Links,
			manifest,
		)
	}
	fmt.Fprintln(out, "\nUse 'pagegate history --id <id>' to show the report of a run.")
	return nil
}

// showRunDecisions prints the decision for every page of a run.
func showRunDecisions(ctx context.Context, db *database.RunDB, out io.Writer, runID int64, jsonOutput bool) error {
	// GetDecisions returns an empty list for unknown runs; the report lookup
	// tells the two apart.
	if _, err := db.GetRunReport(ctx, runID); err != nil {
		return runLookupError(runID, err)
	}
	decisions, err := db.GetDecisions(ctx, runID)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(decisions)
	}

	fmt.Fprintf(out, "Decisions of run %d (%d pages):\n\n", runID, len(decisions))
	for _, d := range decisions {
		fmt.Fprintf(out, "  %-14s %6d words  %s  %s\n", d.Reason, d.Words, formatDistance(d), d.URL)
	}
	return nil
}

// formatDistance renders the Hamming distance column.
func formatDistance(d model.Decision) string {
	if d.Distance < 0 {
		return "d=-"
	}
	return fmt.Sprintf("d=%d", d.Distance)
}
