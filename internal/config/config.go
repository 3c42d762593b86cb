package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/adrg/xdg"

	"github.com/nao1215/pagegate/internal/admission"
	"github.com/nao1215/pagegate/internal/model"
	"github.com/nao1215/pagegate/internal/simhash"
	"github.com/nao1215/pagegate/internal/stats"
	"github.com/nao1215/pagegate/internal/urlfilter"
)

// Default configuration values.
// Filtering defaults come from the packages that implement each check so
// the CLI and the library cannot drift apart.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pagegate"

	// DefaultShingleSize is the number of words per SimHash shingle.
	// Five words is long enough that common phrases rarely collide and
	// short enough that a single edit disturbs few shingles.
	DefaultShingleSize = simhash.DefaultShingleSize

	// DefaultThreshold is the largest Hamming distance still counted as a
	// near duplicate. Historical runs used 3 and 5; 3 keeps false
	// positives rare on short templated pages.
	DefaultThreshold = simhash.DefaultThreshold

	// DefaultHash is the shingle hash function name.
	DefaultHash = simhash.HashFNV64a

	// DefaultMaxContentBytes is the oversized-page ceiling.
	DefaultMaxContentBytes = model.MaxContentBytes

	// DefaultDensityThreshold is the words-per-byte ratio below which a
	// large page is treated as a data dump.
	DefaultDensityThreshold = admission.DefaultDensityThreshold

	// DefaultMaxURLLength caps canonical URL length.
	DefaultMaxURLLength = urlfilter.DefaultMaxLength

	// DefaultTopWords is how many frequent words the report lists.
	DefaultTopWords = stats.DefaultTopWords

	// maxThreshold is the widest meaningful distance between 64-bit fingerprints.
	maxThreshold = 64
)

// DefaultConcurrency is the number of pages admitted in parallel.
var DefaultConcurrency = runtime.NumCPU()

// Config holds all configuration options for pagegate.
// This struct is populated from defaults, the configuration file and CLI
// flags, in that order, and passed through the application explicitly.
//
// Design decision: We keep a single flat struct as the CLI does not need
// sub-structs to stay readable. The YAML file has sections, and Apply maps
// them onto these fields.
type Config struct {
	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .pagegate in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Concurrency is the number of pages admitted in parallel.
	Concurrency int

	// AllowedDomains are the domains, and their subdomains, whose links
	// may be queued.
	AllowedDomains []string

	// MaxURLLength is the longest canonical URL accepted. Zero disables it.
	MaxURLLength int

	// AllowNonStandardPorts accepts links with an explicit non-default port.
	AllowNonStandardPorts bool

	// TrapRules are appended after the built-in trap rules.
	TrapRules []TrapRule

	// ShingleSize is the number of words per shingle.
	ShingleSize int

	// Threshold is the largest Hamming distance counted as a near duplicate.
	Threshold int

	// Hash names the shingle hash function ("fnv64a" or "blake2b").
	Hash string

	// ExcludeStopWords leaves stop words out of the shingle stream.
	ExcludeStopWords bool

	// MaxContentBytes is the oversized-page ceiling in bytes.
	MaxContentBytes int

	// DensityThreshold is the minimum words-per-byte ratio for pages above
	// half the content ceiling. Zero disables the check.
	DensityThreshold float64

	// MinWords rejects pages with fewer words as thin content.
	// Zero disables the check.
	MinWords int

	// TopWords is how many frequent words the report lists.
	TopWords int

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// LinksFile receives the accepted outbound links, one per line.
	LinksFile string

	// DBDir is the directory path for the run history database.
	// Defaults to XDG data directory (~/.local/share/pagegate on Linux).
	DBDir string

	// SaveToDB indicates whether runs are recorded in the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., thresholds and
// the allowed domain list). This also serves as documentation of what the
// defaults are.
func NewConfig() *Config {
	return &Config{
		Concurrency:      DefaultConcurrency,
		AllowedDomains:   slices.Clone(urlfilter.DefaultAllowedDomains),
		MaxURLLength:     DefaultMaxURLLength,
		ShingleSize:      DefaultShingleSize,
		Threshold:        DefaultThreshold,
		Hash:             DefaultHash,
		MaxContentBytes:  DefaultMaxContentBytes,
		DensityThreshold: DefaultDensityThreshold,
		TopWords:         DefaultTopWords,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
	}
}

// XDGDataDir returns the XDG data directory for pagegate.
// On Linux: ~/.local/share/pagegate
// On macOS: ~/Library/Application Support/pagegate
// On Windows: %LOCALAPPDATA%\pagegate
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagegate.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after flags are merged, before any page is read.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if len(c.AllowedDomains) == 0 {
		return ErrNoAllowedDomains
	}

	if c.MaxURLLength < 0 {
		return ErrInvalidMaxURLLength
	}

	if c.ShingleSize <= 0 {
		return ErrInvalidShingleSize
	}

	if c.Threshold < 0 || c.Threshold > maxThreshold {
		return ErrInvalidThreshold
	}

	if _, err := simhash.HasherByName(c.Hash); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownHash, c.Hash)
	}

	if c.MaxContentBytes <= 0 {
		return ErrInvalidMaxContentBytes
	}

	if c.DensityThreshold < 0 || c.DensityThreshold > 1 {
		return ErrInvalidDensityThreshold
	}

	if c.MinWords < 0 {
		return ErrInvalidMinWords
	}

	if c.TopWords < 0 {
		return ErrInvalidTopWords
	}

	for _, r := range c.TrapRules {
		if _, err := r.PatternRule().Compile(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTrapRule, err)
		}
	}

	return nil
}

// FilterOptions returns the urlfilter options described by c.
// It assumes c has passed Validate.
func (c *Config) FilterOptions() ([]urlfilter.Option, error) {
	opts := []urlfilter.Option{
		urlfilter.WithAllowedDomains(c.AllowedDomains...),
		urlfilter.WithMaxLength(c.MaxURLLength),
		urlfilter.WithNonStandardPorts(c.AllowNonStandardPorts),
	}
	for _, r := range c.TrapRules {
		rule, err := r.PatternRule().Compile()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTrapRule, err)
		}
		opts = append(opts, urlfilter.WithRules(rule))
	}
	return opts, nil
}

// GateOptions returns the admission options described by c, excluding the
// state objects that belong to a run.
func (c *Config) GateOptions() ([]admission.Option, error) {
	hasher, err := simhash.HasherByName(c.Hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHash, c.Hash)
	}
	return []admission.Option{
		admission.WithShingleSize(c.ShingleSize),
		admission.WithHasher(hasher),
		admission.WithMaxContentBytes(c.MaxContentBytes),
		admission.WithDensityThreshold(c.DensityThreshold),
		admission.WithMinWords(c.MinWords),
		admission.WithStopWordsExcluded(c.ExcludeStopWords),
	}, nil
}
