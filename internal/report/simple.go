package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/pagegate/internal/model"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output pipes cleanly into files and other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether reasons and sections with no entries are shown.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeRejections(&sb, report)
	w.writeSubdomains(&sb, report)
	w.writeTopWords(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// writeSection writes a section title between rules.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          PAGEGATE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Started:        %s\n", report.StartedAt.Format(timeLayout))
	fmt.Fprintf(sb, "Finished:       %s\n", report.FinishedAt.Format(timeLayout))
	fmt.Fprintf(sb, "Elapsed:        %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.Report) {
	writeSection(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Pages decided:  %d\n", report.Total())
	fmt.Fprintf(sb, "  Accepted:       %d (%.1f%%)\n", report.Accepted, acceptanceRate(report))
	fmt.Fprintf(sb, "  Rejected:       %d\n", report.Rejected)
	fmt.Fprintf(sb, "  Unique pages:   %d\n", report.UniquePages)
	fmt.Fprintf(sb, "  Links emitted:  %d\n", report.Links)
	if report.Longest.URL != "" {
		fmt.Fprintf(sb, "  Longest page:   %s (%d words)\n", report.Longest.URL, report.Longest.Words)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRejections(sb *strings.Builder, report *model.Report) {
	if report.Rejected == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "REJECTIONS")
	for _, r := range rejectionRows(report, w.showEmpty) {
		fmt.Fprintf(sb, "  %-16s %d\n", reasonLabel(r)+":", report.RejectionCount(r))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSubdomains(sb *strings.Builder, report *model.Report) {
	if len(report.Subdomains) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "SUBDOMAINS")
	if len(report.Subdomains) == 0 {
		sb.WriteString("  No pages accepted\n")
	}
	for _, s := range report.Subdomains {
		fmt.Fprintf(sb, "  %s, %d\n", s.Host, s.Pages)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTopWords(sb *strings.Builder, report *model.Report) {
	if len(report.TopWords) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "TOP WORDS")
	if len(report.TopWords) == 0 {
		sb.WriteString("  No words counted\n")
	}
	for i, wc := range report.TopWords {
		fmt.Fprintf(sb, "  %3d. %-24s %d\n", i+1, wc.Word, wc.Count)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by pagegate\n")
	sb.WriteString("https://github.com/nao1215/pagegate\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
