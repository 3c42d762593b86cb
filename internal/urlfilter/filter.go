package urlfilter

import (
	"errors"
	"net/url"
	"slices"
	"strings"
)

// DefaultMaxLength is the longest canonical URL accepted by default.
// Calendar and session traps tend to produce ever-growing paths.
const DefaultMaxLength = 250

// DefaultAllowedDomains are the domains crawled when no others are given.
var DefaultAllowedDomains = []string{
	"ics.uci.edu",
	"cs.uci.edu",
	"informatics.uci.edu",
	"stat.uci.edu",
}

// Rejection names why a URL was filtered out.
type Rejection string

// Rejection values, one per check, in evaluation order.
const (
	RejectMalformed Rejection = "malformed"
	RejectTooLong   Rejection = "too_long"
	RejectScheme    Rejection = "scheme"
	RejectPort      Rejection = "port"
	RejectDomain    Rejection = "domain"
	RejectAction    Rejection = "action_param"
	RejectTrap      Rejection = "trap"
	RejectExtension Rejection = "extension"
)

// Result is the outcome of Filter.Check.
type Result struct {
	// Canonical is the normalized URL, empty when normalization failed.
	Canonical string
	// Valid reports whether the URL may be queued.
	Valid bool
	// Reason is empty for valid URLs.
	Reason Rejection
	// Rule names the trap rule that decided, if any.
	Rule string
}

// Filter decides whether canonical URLs are in crawl scope.
// A Filter is immutable after construction and safe for concurrent use.
type Filter struct {
	allowedDomains        []string
	maxLength             int
	rules                 []Rule
	extraRules            []Rule
	builtinRules          bool
	allowNonStandardPorts bool
}

// Option configures a Filter.
type Option func(*Filter)

// WithAllowedDomains replaces the allowed domain list. Subdomains of each
// entry are allowed as well.
func WithAllowedDomains(domains ...string) Option {
	return func(f *Filter) {
		f.allowedDomains = make([]string, 0, len(domains))
		for _, d := range domains {
			d = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
			if d != "" {
				f.allowedDomains = append(f.allowedDomains, d)
			}
		}
	}
}

// WithMaxLength sets the canonical URL length limit. Values <= 0 disable it.
func WithMaxLength(n int) Option {
	return func(f *Filter) {
		f.maxLength = n
	}
}

// WithRules appends trap rules after the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(f *Filter) {
		f.extraRules = append(f.extraRules, rules...)
	}
}

// WithoutDefaultRules drops the built-in trap table. Rules added with
// WithRules are kept.
func WithoutDefaultRules() Option {
	return func(f *Filter) {
		f.builtinRules = false
	}
}

// WithNonStandardPorts accepts URLs carrying an explicit non-default port.
func WithNonStandardPorts(allow bool) Option {
	return func(f *Filter) {
		f.allowNonStandardPorts = allow
	}
}

// New creates a Filter with the default domains, length limit and trap table.
func New(opts ...Option) *Filter {
	f := &Filter{
		allowedDomains: slices.Clone(DefaultAllowedDomains),
		maxLength:      DefaultMaxLength,
		builtinRules:   true,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.builtinRules {
		f.rules = DefaultRules()
	}
	f.rules = append(f.rules, f.extraRules...)
	return f
}

// AllowedDomains returns a copy of the allowed domain list.
func (f *Filter) AllowedDomains() []string {
	return slices.Clone(f.allowedDomains)
}

// Rules returns the names of the trap rules in evaluation order.
func (f *Filter) Rules() []string {
	names := make([]string, 0, len(f.rules))
	for _, r := range f.rules {
		names = append(names, r.Name)
	}
	return names
}

// Validate reports whether raw may be queued.
func (f *Filter) Validate(raw string) bool {
	return f.Check(raw).Valid
}

// Check normalizes raw and runs every scope check against the canonical
// form, stopping at the first failure.
func (f *Filter) Check(raw string) Result {
	canon, err := Normalize(raw)
	if err != nil {
		if errors.Is(err, ErrUnsupportedScheme) {
			return Result{Reason: RejectScheme}
		}
		return Result{Reason: RejectMalformed}
	}
	return f.CheckCanonical(canon)
}

// CheckCanonical is Check for a URL already produced by Normalize.
func (f *Filter) CheckCanonical(canon string) Result {
	reject := func(reason Rejection) Result {
		return Result{Canonical: canon, Reason: reason}
	}

	if f.maxLength > 0 && len(canon) > f.maxLength {
		return reject(RejectTooLong)
	}

	u, err := url.Parse(canon)
	if err != nil {
		return reject(RejectMalformed)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return reject(RejectScheme)
	}
	if u.Port() != "" && !f.allowNonStandardPorts {
		return reject(RejectPort)
	}
	if !f.inScope(u.Hostname()) {
		return reject(RejectDomain)
	}
	if u.Query().Has("do") {
		return reject(RejectAction)
	}
	if rule, ok := evaluate(f.rules, u); ok && rule.Verdict == Reject {
		res := reject(RejectTrap)
		res.Rule = rule.Name
		return res
	}
	if HasDeniedExtension(u.Path) {
		return reject(RejectExtension)
	}

	return Result{Canonical: canon, Valid: true}
}

func (f *Filter) inScope(host string) bool {
	for _, d := range f.allowedDomains {
		if WithinDomain(host, d) {
			return true
		}
	}
	return false
}
