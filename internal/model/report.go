package model

import "time"

// WordCount is a word together with how often it occurred across accepted pages.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SubdomainCount is the number of unique accepted pages on a host.
type SubdomainCount struct {
	Host  string `json:"host"`
	Pages int    `json:"pages"`
}

// LongestPage identifies the accepted page with the most words.
type LongestPage struct {
	URL   string `json:"url"`
	Words int    `json:"words"`
}

// Report is a read-only snapshot of run-wide statistics handed to the
// reporting collaborator at the end of a run.
type Report struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the snapshot was taken.
	FinishedAt time.Time `json:"finished_at"`

	// UniquePages is the number of distinct canonical page URLs accepted.
	UniquePages int `json:"unique_pages"`

	// Accepted is the number of accepted admissions.
	Accepted int `json:"accepted"`

	// Rejected is the number of rejected admissions.
	Rejected int `json:"rejected"`

	// Links is the number of outbound links emitted to the frontier.
	Links int `json:"links"`

	// Longest is the accepted page with the most words.
	Longest LongestPage `json:"longest_page"`

	// TopWords are the most frequent non-stop-words, most frequent first.
	TopWords []WordCount `json:"top_words"`

	// Subdomains are per-host unique page counts sorted by host.
	Subdomains []SubdomainCount `json:"subdomains"`

	// Rejections counts rejected pages per reason.
	Rejections map[Reason]int `json:"rejections"`
}

// Total returns the number of pages the run decided on.
func (r Report) Total() int {
	return r.Accepted + r.Rejected
}

// RejectionCount returns how many pages were rejected for the reason.
func (r Report) RejectionCount(reason Reason) int {
	if r.Rejections == nil {
		return 0
	}
	return r.Rejections[reason]
}
