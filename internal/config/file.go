package config

import "github.com/nao1215/pagegate/internal/urlfilter"

// TrapRule is a trap rule declared in the configuration file.
// Empty fields match everything; at least one of Host, Path and Query
// must be set.
type TrapRule struct {
	// Name identifies the rule in verdicts and logs.
	Name string `yaml:"name"`

	// Host restricts the rule to this domain and its subdomains.
	Host string `yaml:"host,omitempty"`

	// Path is a regular expression matched against the lower-cased URL path.
	Path string `yaml:"path,omitempty"`

	// Query is a query parameter name that must be present.
	Query string `yaml:"query,omitempty"`

	// Allow makes the rule an exception that ends trap evaluation.
	Allow bool `yaml:"allow,omitempty"`
}

// PatternRule converts r to its urlfilter form.
func (r TrapRule) PatternRule() urlfilter.PatternRule {
	return urlfilter.PatternRule{
		Name:  r.Name,
		Host:  r.Host,
		Path:  r.Path,
		Query: r.Query,
		Allow: r.Allow,
	}
}

// ScopeSection controls which links may be queued.
type ScopeSection struct {
	// Domains replaces the default allowed domain list when non-empty.
	Domains []string `yaml:"domains,omitempty"`

	// MaxURLLength overrides the canonical URL length limit.
	MaxURLLength *int `yaml:"max_url_length,omitempty"`

	// AllowNonStandardPorts accepts links with an explicit non-default port.
	AllowNonStandardPorts bool `yaml:"allow_nonstandard_ports,omitempty"`

	// Traps are appended after the built-in trap rules.
	Traps []TrapRule `yaml:"traps,omitempty"`
}

// SimilaritySection controls near-duplicate detection.
type SimilaritySection struct {
	// ShingleSize overrides the number of words per shingle.
	ShingleSize int `yaml:"shingle_size,omitempty"`

	// Threshold overrides the near-duplicate distance. A pointer, since
	// zero (exact duplicates only) is a meaningful value.
	Threshold *int `yaml:"threshold,omitempty"`

	// Hash selects the shingle hash function.
	Hash string `yaml:"hash,omitempty"`

	// ExcludeStopWords leaves stop words out of the shingle stream.
	ExcludeStopWords bool `yaml:"exclude_stop_words,omitempty"`
}

// AdmissionSection controls page-level rejection thresholds.
type AdmissionSection struct {
	// MaxContentBytes overrides the oversized-page ceiling.
	MaxContentBytes int `yaml:"max_content_bytes,omitempty"`

	// DensityThreshold overrides the low-density ratio. Zero disables the check.
	DensityThreshold *float64 `yaml:"density_threshold,omitempty"`

	// MinWords enables the thin-content check.
	MinWords int `yaml:"min_words,omitempty"`
}

// ReportSection controls report output.
type ReportSection struct {
	// TopWords overrides how many frequent words are listed.
	TopWords int `yaml:"top_words,omitempty"`

	// Format is "text", "json" or "markdown".
	Format string `yaml:"format,omitempty"`
}

// File represents the structure of the .pagegate configuration file.
type File struct {
	Scope      ScopeSection      `yaml:"scope,omitempty"`
	Similarity SimilaritySection `yaml:"similarity,omitempty"`
	Admission  AdmissionSection  `yaml:"admission,omitempty"`
	Report     ReportSection     `yaml:"report,omitempty"`

	// Concurrency overrides the number of pages admitted in parallel.
	Concurrency int `yaml:"concurrency,omitempty"`

	// DBDir overrides the run history database directory.
	DBDir string `yaml:"db_dir,omitempty"`
}

// Apply overrides c with every value set in f. Values left unset in the
// file keep whatever c already holds.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}

	if len(f.Scope.Domains) > 0 {
		c.AllowedDomains = f.Scope.Domains
	}
	if f.Scope.MaxURLLength != nil {
		c.MaxURLLength = *f.Scope.MaxURLLength
	}
	if f.Scope.AllowNonStandardPorts {
		c.AllowNonStandardPorts = true
	}
	c.TrapRules = append(c.TrapRules, f.Scope.Traps...)

	if f.Similarity.ShingleSize != 0 {
		c.ShingleSize = f.Similarity.ShingleSize
	}
	if f.Similarity.Threshold != nil {
		c.Threshold = *f.Similarity.Threshold
	}
	if f.Similarity.Hash != "" {
		c.Hash = f.Similarity.Hash
	}
	if f.Similarity.ExcludeStopWords {
		c.ExcludeStopWords = true
	}

	if f.Admission.MaxContentBytes != 0 {
		c.MaxContentBytes = f.Admission.MaxContentBytes
	}
	if f.Admission.DensityThreshold != nil {
		c.DensityThreshold = *f.Admission.DensityThreshold
	}
	if f.Admission.MinWords != 0 {
		c.MinWords = f.Admission.MinWords
	}

	if f.Report.TopWords != 0 {
		c.TopWords = f.Report.TopWords
	}
	switch f.Report.Format {
	case "json":
		c.JSONReport = true
	case "markdown":
		c.MarkdownReport = true
	}

	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}
