package pipeline

import "github.com/nao1215/pagegate/internal/model"

// Run carries the state of one filter job through the pipeline.
// Steps fill it in order; a field is only meaningful after the step that
// produces it has run.
type Run struct {
	// ID is the audit database id, zero when the run is not recorded.
	ID int64

	// Manifest names the manifest the pages came from.
	Manifest string

	// Pages are the fetched pages to decide on, in manifest order.
	Pages []*model.FetchedPage

	// Decisions holds one decision per page, aligned with Pages.
	Decisions []model.Decision

	// Report is the statistics snapshot taken after admission.
	Report *model.Report

	// PerformedSteps lists the steps that completed without error.
	PerformedSteps []string

	// Err joins every step failure of the run, nil when all succeeded.
	Err error
}

// NewRun creates a Run for the named manifest.
func NewRun(manifest string) *Run {
	return &Run{Manifest: manifest}
}

// AcceptedLinks returns the frontier links of accepted pages in decision
// order.
func (r *Run) AcceptedLinks() []string {
	var links []string
	for _, d := range r.Decisions {
		if d.Accepted {
			links = append(links, d.Links...)
		}
	}
	return links
}
