package model

import "fmt"

// Reason explains why a page was rejected.
// ReasonNone marks an accepted page.
//
// Design decision: We use iota-based constants ordered the same way the
// admission gate checks them, so sorting by Reason reproduces the
// short-circuit order. The String() method provides the stable name used in
// reports and the database.
type Reason int

const (
	// ReasonNone means the page was accepted.
	ReasonNone Reason = iota

	// ReasonFetchFailed covers non-200 responses and transport errors.
	ReasonFetchFailed

	// ReasonMalformedURL means the page URL links would resolve against
	// could not be parsed.
	ReasonMalformedURL

	// ReasonEmpty means the response body was empty.
	ReasonEmpty

	// ReasonOversized means the body exceeded the byte ceiling.
	ReasonOversized

	// ReasonNoWords means tokenization produced no words.
	ReasonNoWords

	// ReasonThinContent means the page had fewer words than the configured minimum.
	ReasonThinContent

	// ReasonNearDuplicate means the page's fingerprint is close to one already accepted.
	ReasonNearDuplicate

	// ReasonLowDensity means a large page carried too little text for its size.
	ReasonLowDensity
)

// Reasons lists every rejection reason in check order.
var Reasons = []Reason{
	ReasonFetchFailed,
	ReasonMalformedURL,
	ReasonEmpty,
	ReasonOversized,
	ReasonNoWords,
	ReasonThinContent,
	ReasonNearDuplicate,
	ReasonLowDensity,
}

var reasonNames = map[Reason]string{
	ReasonNone:          "accepted",
	ReasonFetchFailed:   "fetch_failed",
	ReasonMalformedURL:  "malformed_url",
	ReasonEmpty:         "empty",
	ReasonOversized:     "oversized",
	ReasonNoWords:       "no_words",
	ReasonThinContent:   "thin_content",
	ReasonNearDuplicate: "near_duplicate",
	ReasonLowDensity:    "low_density",
}

// String returns the stable name of the reason.
func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so reasons serialize by name.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	reason, err := ParseReason(string(text))
	if err != nil {
		return err
	}
	*r = reason
	return nil
}

// ParseReason returns the Reason with the given name.
func ParseReason(name string) (Reason, error) {
	for r, n := range reasonNames {
		if n == name {
			return r, nil
		}
	}
	return ReasonNone, fmt.Errorf("unknown rejection reason %q", name)
}
