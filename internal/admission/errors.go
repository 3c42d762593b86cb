package admission

import "errors"

// Caller contract violations. Bad page content is never an error; it is a
// rejection.
var (
	// ErrNilPage is returned when Admit is called without a page.
	ErrNilPage = errors.New("admission: nil page")

	// ErrNoBaseURL is returned when a page has neither a requested nor an
	// effective URL, so its links cannot be resolved.
	ErrNoBaseURL = errors.New("admission: page has no base url")

	// ErrNilFilter is returned by New when no URL filter is given.
	ErrNilFilter = errors.New("admission: nil url filter")
)
