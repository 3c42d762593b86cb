package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/pagegate/internal/model"
)

// maxURLWidth bounds URLs shown in Markdown tables.
const maxURLWidth = 80

// MarkdownWriter outputs reports in Markdown format for documentation and
// sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeRejections(md, report)
	w.writeSubdomains(md, report)
	w.writeTopWords(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Pagegate Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", report.StartedAt.Format(timeLayout)},
			{"Finished", report.FinishedAt.Format(timeLayout)},
			{"Pages Decided", strconv.Itoa(report.Total())},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("Summary")
	md.PlainText("")

	longest := "-"
	if report.Longest.URL != "" {
		longest = fmt.Sprintf("`%s` (%d words)", truncateString(report.Longest.URL, maxURLWidth), report.Longest.Words)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"✅ Accepted", strconv.Itoa(report.Accepted)},
			{"🚫 Rejected", strconv.Itoa(report.Rejected)},
			{"Unique Pages", strconv.Itoa(report.UniquePages)},
			{"Links Emitted", strconv.Itoa(report.Links)},
			{"Longest Page", longest},
			{"**Acceptance Rate**", fmt.Sprintf("**%.1f%%**", acceptanceRate(report))},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)
}

// writeAlert flags runs where filtering dominated the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	dup := report.RejectionCount(model.ReasonNearDuplicate)
	switch {
	case report.Total() == 0:
		md.Note("No pages were decided in this run.")
	case report.Accepted == 0:
		md.Cautionf("Every one of the %d pages was rejected.", report.Rejected)
	case dup > report.Accepted:
		md.Warningf(
			"Near duplicates outnumber accepted pages (%d vs %d). The crawl may be stuck in a trap.",
			dup, report.Accepted,
		)
	case report.Rejected > report.Accepted:
		md.Importantf("Most pages were rejected (%d of %d).", report.Rejected, report.Total())
	default:
		md.Tip("Most pages were accepted.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeRejections(md *markdown.Markdown, report *model.Report) {
	md.H2("Rejections")
	md.PlainText("")

	if report.Rejected == 0 {
		md.PlainText("No pages were rejected.")
		md.PlainText("")
		return
	}

	reasons := rejectionRows(report, false)
	rows := make([][]string, 0, len(reasons))
	for _, r := range reasons {
		rows = append(rows, []string{reasonLabel(r), "`" + r.String() + "`", strconv.Itoa(report.RejectionCount(r))})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Reason", "Code", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, report, reasons)
}

// writePieChart writes a mermaid pie chart of rejection reasons.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.Report, reasons []model.Reason) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Rejection Reasons"),
		piechart.WithShowData(true),
	)
	for _, r := range reasons {
		chart.LabelAndIntValue(reasonLabel(r), uint64(report.RejectionCount(r)))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeSubdomains(md *markdown.Markdown, report *model.Report) {
	md.H2("Subdomains")
	md.PlainText("")

	if len(report.Subdomains) == 0 {
		md.PlainText("No pages accepted.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Subdomains))
	for i, s := range report.Subdomains {
		rows[i] = []string{"`" + s.Host + "`", strconv.Itoa(s.Pages)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Host", "Unique Pages"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTopWords(md *markdown.Markdown, report *model.Report) {
	md.H2("Top Words")
	md.PlainText("")

	if len(report.TopWords) == 0 {
		md.PlainText("No words counted.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.TopWords))
	for i, wc := range report.TopWords {
		rows[i] = []string{strconv.Itoa(i + 1), wc.Word, strconv.Itoa(wc.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pagegate](https://github.com/nao1215/pagegate)*")
}

// truncateString truncates a string to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
