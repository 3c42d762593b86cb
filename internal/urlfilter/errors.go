package urlfilter

import "errors"

// Normalization errors. Callers treat all of them as "not crawlable".
var (
	// ErrMalformedURL is returned when the URL cannot be parsed.
	ErrMalformedURL = errors.New("malformed url")

	// ErrUnsupportedScheme is returned for schemes other than http and https.
	ErrUnsupportedScheme = errors.New("unsupported scheme: only http and https are crawlable")

	// ErrInvalidHost is returned when the host is empty or cannot be
	// converted to an ASCII DNS name.
	ErrInvalidHost = errors.New("invalid host")

	// ErrInvalidPattern is returned when a configured trap rule cannot be compiled.
	ErrInvalidPattern = errors.New("invalid trap rule pattern")
)
