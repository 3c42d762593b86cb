package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/pagegate/internal/model"
	"github.com/nao1215/pagegate/internal/report"
)

// ErrNoReport is returned by steps that need the statistics snapshot when
// no SnapshotStep ran before them.
var ErrNoReport = errors.New("run has no report")

// LoadStep reads the manifest into Run.Pages.
type LoadStep struct {
	// path is the manifest file, used when no reader is set.
	path string

	// reader replaces the file, e.g. for standard input.
	reader io.Reader

	// baseDir resolves relative body files when reading from reader.
	baseDir string

	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithManifestReader reads the manifest from r instead of the file.
// Relative body files resolve against baseDir.
func WithManifestReader(r io.Reader, baseDir string) LoadStepOption {
	return func(s *LoadStep) {
		s.reader = r
		s.baseDir = baseDir
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a step that loads the manifest at path.
func NewLoadStep(path string, opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		path:   path,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, run *Run) error {
	var (
		pages []*model.FetchedPage
		err   error
	)
	if s.reader != nil {
		pages, err = ReadManifest(s.reader, s.baseDir)
	} else {
		pages, err = LoadManifest(s.path)
	}
	if err != nil {
		return err
	}

	run.Pages = pages
	s.logger.Info("manifest loaded", "manifest", run.Manifest, "pages", len(pages))
	return nil
}

// AdmitStep decides on every page of the run.
type AdmitStep struct {
	processor *Processor
}

// NewAdmitStep creates a step that admits pages through processor.
func NewAdmitStep(processor *Processor) *AdmitStep {
	return &AdmitStep{processor: processor}
}

// Name returns the step name.
func (s *AdmitStep) Name() string {
	return "admit"
}

// Do executes the admission step.
func (s *AdmitStep) Do(ctx context.Context, run *Run) error {
	decisions, err := s.processor.Process(ctx, run.Pages)
	if err != nil {
		return fmt.Errorf("admission failed: %w", err)
	}
	run.Decisions = decisions
	return nil
}

// Snapshotter produces the run statistics. *stats.Collector satisfies it.
type Snapshotter interface {
	Snapshot(topN int) model.Report
}

// SnapshotStep stores the statistics snapshot in Run.Report.
type SnapshotStep struct {
	source Snapshotter
	topN   int
}

// NewSnapshotStep creates a step that snapshots source with at most topN
// words.
func NewSnapshotStep(source Snapshotter, topN int) *SnapshotStep {
	return &SnapshotStep{source: source, topN: topN}
}

// Name returns the step name.
func (s *SnapshotStep) Name() string {
	return "snapshot"
}

// Do executes the snapshot step.
func (s *SnapshotStep) Do(_ context.Context, run *Run) error {
	r := s.source.Snapshot(s.topN)
	run.Report = &r
	return nil
}

// LinksStep writes the frontier: the links of accepted pages, one per line
// in decision order.
type LinksStep struct {
	output io.Writer
}

// NewLinksStep creates a step that writes links to output.
func NewLinksStep(output io.Writer) *LinksStep {
	return &LinksStep{output: output}
}

// Name returns the step name.
func (s *LinksStep) Name() string {
	return "links"
}

// Do executes the links step.
func (s *LinksStep) Do(_ context.Context, run *Run) error {
	w := bufio.NewWriter(s.output)
	for _, link := range run.AcceptedLinks() {
		if _, err := fmt.Fprintln(w, link); err != nil {
			return fmt.Errorf("failed to write links: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write links: %w", err)
	}
	return nil
}

// ReportStep renders Run.Report.
type ReportStep struct {
	writer report.Writer
}

// NewReportStep creates a step that renders the report through writer.
func NewReportStep(writer report.Writer) *ReportStep {
	return &ReportStep{writer: writer}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do executes the report step.
func (s *ReportStep) Do(_ context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNoReport
	}
	if _, err := s.writer.Write(run.Report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// RunRecorder persists runs. *database.RunDB satisfies it.
type RunRecorder interface {
	BeginRun(ctx context.Context, manifest string) (int64, error)
	RecordDecisions(ctx context.Context, runID int64, decisions []model.Decision) error
	FinishRun(ctx context.Context, runID int64, report *model.Report) error
}

// RecordStep writes the run to the audit database and sets Run.ID.
//
// Design decision: Recording is write-only. Nothing stored here is read
// back into the visited set or the fingerprint index of a later run.
type RecordStep struct {
	recorder RunRecorder
	logger   *slog.Logger
}

// RecordStepOption configures a RecordStep.
type RecordStepOption func(*RecordStep)

// WithRecordLogger sets a custom logger for the record step.
func WithRecordLogger(logger *slog.Logger) RecordStepOption {
	return func(s *RecordStep) {
		s.logger = logger
	}
}

// NewRecordStep creates a step that records runs through recorder.
func NewRecordStep(recorder RunRecorder, opts ...RecordStepOption) *RecordStep {
	s := &RecordStep{
		recorder: recorder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Do executes the record step.
func (s *RecordStep) Do(ctx context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNoReport
	}

	id, err := s.recorder.BeginRun(ctx, run.Manifest)
	if err != nil {
		return err
	}
	if err := s.recorder.RecordDecisions(ctx, id, run.Decisions); err != nil {
		return err
	}
	if err := s.recorder.FinishRun(ctx, id, run.Report); err != nil {
		return err
	}

	run.ID = id
	s.logger.Info("run recorded", "run_id", id, "decisions", len(run.Decisions))
	return nil
}
