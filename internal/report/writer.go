package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/pagegate/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers and stops on the
// first error.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// reasonLabel turns a reason name such as "near_duplicate" into
// "Near Duplicate". A Caser keeps state, so each call gets its own.
func reasonLabel(r model.Reason) string {
	return cases.Title(language.English).String(strings.ReplaceAll(r.String(), "_", " "))
}

// acceptanceRate returns the accepted share of decided pages in percent.
func acceptanceRate(report *model.Report) float64 {
	total := report.Total()
	if total == 0 {
		return 0
	}
	return float64(report.Accepted) * 100 / float64(total)
}

// rejectionRows lists the reasons that rejected at least one page, in
// check order. With showEmpty every reason is listed.
func rejectionRows(report *model.Report, showEmpty bool) []model.Reason {
	reasons := make([]model.Reason, 0, len(model.Reasons))
	for _, r := range model.Reasons {
		if showEmpty || report.RejectionCount(r) > 0 {
			reasons = append(reasons, r)
		}
	}
	return reasons
}
