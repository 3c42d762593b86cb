package model

// Decision is the admission verdict for one page.
type Decision struct {
	// URL is the requested URL of the page.
	URL string `json:"url"`

	// Canonical is the normalized form of the page's base URL.
	// Empty when the base URL could not be normalized.
	Canonical string `json:"canonical,omitempty"`

	// Accepted reports whether the page is original enough to index.
	Accepted bool `json:"accepted"`

	// Reason is ReasonNone for accepted pages.
	Reason Reason `json:"reason"`

	// Words is the number of words extracted from the page.
	Words int `json:"words"`

	// Bytes is the raw content size.
	Bytes int `json:"bytes"`

	// Fingerprint is the page's SimHash, zero when never computed.
	Fingerprint uint64 `json:"fingerprint,omitempty"`

	// Distance is the Hamming distance to the nearest accepted fingerprint,
	// or -1 when there was nothing to compare against.
	Distance int `json:"distance"`

	// Links are the canonical outbound links to queue, in document order.
	// Always empty for rejected pages.
	Links []string `json:"links"`
}

// Rejected builds a rejection decision with no links.
func Rejected(url string, reason Reason) Decision {
	return Decision{
		URL:      url,
		Reason:   reason,
		Distance: -1,
		Links:    []string{},
	}
}
