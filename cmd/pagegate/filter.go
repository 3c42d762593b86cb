package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagegate/internal/admission"
	"github.com/nao1215/pagegate/internal/config"
	"github.com/nao1215/pagegate/internal/database"
	"github.com/nao1215/pagegate/internal/pipeline"
	"github.com/nao1215/pagegate/internal/report"
	"github.com/nao1215/pagegate/internal/simhash"
	"github.com/nao1215/pagegate/internal/stats"
	"github.com/nao1215/pagegate/internal/urlfilter"
)

// stdinManifest is the manifest argument that reads standard input.
const stdinManifest = "-"

// NewFilterCmd creates the filter command.
func NewFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <manifest>",
		Short: "Decide which fetched pages to index and which links to queue",
		Long: `Filter reads a manifest of fetched pages and decides, page by page, whether
each one is worth indexing. Accepted pages contribute their in-scope links to
the frontier and their words to the run statistics.

The manifest is JSON Lines, one fetched page per line:
  {"url": "https://www.ics.uci.edu/about", "status": 200,
   "content_type": "text/html; charset=utf-8", "body_file": "bodies/about.html"}
  {"url": "https://www.ics.uci.edu/x", "effective_url": "https://www.ics.uci.edu/y",
   "status": 200, "body": "<html>...</html>"}
  {"url": "https://www.ics.uci.edu/down", "status": 503}

body_file paths are relative to the manifest. Blank lines and lines starting
with # are ignored. Use - to read the manifest from standard input.

Examples:
  # Filter a crawl and print the report
  pagegate filter crawl/pages.jsonl

  # Write the frontier to a file and a Markdown report next to it
  pagegate filter --links frontier.txt --markdown -o report.md crawl/pages.jsonl

  # Deterministic run without touching the history database
  pagegate filter --concurrency 1 --no-db crawl/pages.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: runFilterCmd,
	}

	addConfigFlag(cmd)

	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of pages admitted in parallel")
	cmd.Flags().IntP("top", "t", config.DefaultTopWords,
		"Number of most frequent words in the report")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("links", "l", "",
		"Write accepted outbound links to this file, one per line")
	cmd.Flags().Bool("no-db", false,
		"Do not record the run in the history database")

	return cmd
}

// runFilterCmd executes the filter command.
func runFilterCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildFilterConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runFilter(ctx, cfg, args[0], cmd, logger)
}

// buildFilterConfig merges defaults, the configuration file and the flags
// the user actually set.
func buildFilterConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("top") {
		if cfg.TopWords, err = flags.GetInt("top"); err != nil {
			return nil, err
		}
	}

	jsonReport, err := flags.GetBool("json")
	if err != nil {
		return nil, err
	}
	markdownReport, err := flags.GetBool("markdown")
	if err != nil {
		return nil, err
	}
	// A format flag replaces the format chosen in the file.
	if jsonReport || markdownReport {
		cfg.JSONReport = jsonReport
		cfg.MarkdownReport = markdownReport
	}

	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.LinksFile, err = flags.GetString("links"); err != nil {
		return nil, err
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if noDB {
		cfg.SaveToDB = false
	}

	return cfg, nil
}

// runFilter builds the filter pipeline for one manifest and executes it.
func runFilter(ctx context.Context, cfg *config.Config, manifest string, cmd *cobra.Command, logger *slog.Logger) error {
	gate, collector, err := newGate(cfg, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(pipeline.WithLogger(logger))

	loadOpts := []pipeline.LoadStepOption{pipeline.WithLoadLogger(logger)}
	if manifest == stdinManifest {
		loadOpts = append(loadOpts, pipeline.WithManifestReader(cmd.InOrStdin(), "."))
	}
	p.AddSteps(
		pipeline.NewLoadStep(manifest, loadOpts...),
		pipeline.NewAdmitStep(pipeline.NewProcessor(gate,
			pipeline.WithConcurrency(cfg.Concurrency),
			pipeline.WithProcessorLogger(logger),
		)),
		pipeline.NewSnapshotStep(collector, cfg.TopWords),
	)

	if cfg.LinksFile != "" {
		f, err := createOutputFile(cfg.LinksFile)
		if err != nil {
			return err
		}
		defer f.Close()
		p.AddStep(pipeline.NewLinksStep(f))
	}

	output := cmd.OutOrStdout()
	if cfg.ReportFile != "" {
		f, err := createOutputFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}
	p.AddStep(pipeline.NewReportStep(reportWriter(cfg, output)))

	var db *database.RunDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		p.AddOptionalStep(pipeline.NewRecordStep(db, pipeline.WithRecordLogger(logger)))
	}

	run := pipeline.NewRun(manifestName(manifest))
	startTime := time.Now()
	if err := p.Execute(ctx, run); err != nil {
		return err
	}

	logger.Info("filter completed",
		"pages", len(run.Pages),
		"accepted", run.Report.Accepted,
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)
	switch {
	case db == nil:
	case run.Err != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: run not recorded: %v\n", run.Err)
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Run #%d recorded in %s\n", run.ID, db.Path())
	}
	return nil
}

// newGate wires the admission gate and its run state from cfg.
func newGate(cfg *config.Config, logger *slog.Logger) (*admission.Gate, *stats.Collector, error) {
	filterOpts, err := cfg.FilterOptions()
	if err != nil {
		return nil, nil, err
	}
	gateOpts, err := cfg.GateOptions()
	if err != nil {
		return nil, nil, err
	}

	collector := stats.NewCollector()
	gateOpts = append(gateOpts,
		admission.WithLogger(logger),
		admission.WithCollector(collector),
		admission.WithIndex(simhash.NewIndex(cfg.Threshold)),
	)

	gate, err := admission.New(urlfilter.New(filterOpts...), gateOpts...)
	if err != nil {
		return nil, nil, err
	}
	return gate, collector, nil
}

// reportWriter picks the report format requested in cfg.
func reportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output)
	}
}

// manifestName is the manifest identity stored with a run.
func manifestName(manifest string) string {
	if manifest == stdinManifest {
		return "(stdin)"
	}
	if abs, err := filepath.Abs(manifest); err == nil {
		return abs
	}
	return manifest
}

// createOutputFile creates path, and its parent directories, for writing.
// Reports may reveal crawl targets, so files are only readable by the owner.
func createOutputFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
