// Package report renders the statistics of a filter run.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with a rejection breakdown chart
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
