package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoAllowedDomains is returned when the domain list is empty, which
	// would reject every link.
	ErrNoAllowedDomains = errors.New("no allowed domains configured")

	// ErrInvalidMaxURLLength is returned when the URL length limit is negative.
	// Use 0 to disable the limit.
	ErrInvalidMaxURLLength = errors.New("invalid max url length: must be non-negative")

	// ErrInvalidShingleSize is returned when the shingle size is not positive.
	ErrInvalidShingleSize = errors.New("invalid shingle size: must be positive")

	// ErrInvalidThreshold is returned when the similarity threshold is
	// outside 0..64, the range of Hamming distances between fingerprints.
	ErrInvalidThreshold = errors.New("invalid similarity threshold: must be between 0 and 64")

	// ErrUnknownHash is returned for an unsupported shingle hash name.
	ErrUnknownHash = errors.New("unknown hash: use fnv64a or blake2b")

	// ErrInvalidMaxContentBytes is returned when the content ceiling is not positive.
	ErrInvalidMaxContentBytes = errors.New("invalid max content bytes: must be positive")

	// ErrInvalidDensityThreshold is returned when the density ratio is
	// outside 0..1.
	ErrInvalidDensityThreshold = errors.New("invalid density threshold: must be between 0 and 1")

	// ErrInvalidMinWords is returned when the thin-content minimum is negative.
	ErrInvalidMinWords = errors.New("invalid min words: must be non-negative")

	// ErrInvalidTopWords is returned when the report word count is negative.
	ErrInvalidTopWords = errors.New("invalid top words: must be non-negative")

	// ErrInvalidTrapRule is returned when a configured trap rule does not compile.
	ErrInvalidTrapRule = errors.New("invalid trap rule")
)
