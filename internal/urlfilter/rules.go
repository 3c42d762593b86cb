package urlfilter

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Verdict is the outcome a trap rule assigns to a URL it matches.
type Verdict int

const (
	// Reject excludes the URL from the crawl.
	Reject Verdict = iota
	// Allow accepts the URL and ends trap evaluation.
	Allow
)

// String returns "allow" or "reject".
func (v Verdict) String() string {
	if v == Allow {
		return "allow"
	}
	return "reject"
}

// Rule is one entry of the trap table. Match receives the canonical URL,
// whose host is already lower-cased.
type Rule struct {
	Name    string
	Match   func(u *url.URL) bool
	Verdict Verdict
}

// evaluate returns the first rule matching u, or false when none does.
func evaluate(rules []Rule, u *url.URL) (Rule, bool) {
	for _, r := range rules {
		if r.Match(u) {
			return r, true
		}
	}
	return Rule{}, false
}

// calendarExportParams are query keys emitted by calendar plugins for
// export and day-by-day navigation links.
var calendarExportParams = []string{"ical", "outlook-ical", "tribe-bar-date"}

var dateArchivePattern = regexp.MustCompile(`/(day|month|events)/\d{4}-\d{2}(-\d{2})?/?$`)

// DefaultRules returns the built-in trap table. The slice is freshly
// allocated so callers may append to it.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "events-list",
			Verdict: Allow,
			Match: func(u *url.URL) bool {
				return WithinDomain(u.Hostname(), "ics.uci.edu") &&
					strings.HasPrefix(lowerPath(u), "/events/list")
			},
		},
		{
			Name:    "events-calendar",
			Verdict: Reject,
			Match: func(u *url.URL) bool {
				p := lowerPath(u)
				return WithinDomain(u.Hostname(), "ics.uci.edu") &&
					(p == "/events" || strings.HasPrefix(p, "/events/"))
			},
		},
		{
			Name:    "wiki-timeline",
			Verdict: Reject,
			Match: func(u *url.URL) bool {
				p := lowerPath(u)
				wiki := strings.Contains(u.Hostname(), "wiki") || strings.Contains(p, "wiki")
				return wiki && (strings.Contains(p, "timeline") ||
					strings.Contains(strings.ToLower(u.RawQuery), "timeline"))
			},
		},
		{
			Name:    "photo-gallery",
			Verdict: Reject,
			Match: func(u *url.URL) bool {
				return strings.Contains(lowerPath(u), "/pix/")
			},
		},
		{
			Name:    "calendar-export",
			Verdict: Reject,
			Match: func(u *url.URL) bool {
				return hasAnyParam(u, calendarExportParams...)
			},
		},
		{
			Name:    "date-archive",
			Verdict: Reject,
			Match: func(u *url.URL) bool {
				return dateArchivePattern.MatchString(lowerPath(u))
			},
		},
	}
}

// PatternRule is a trap rule described by data rather than code, as read
// from a configuration file. Empty fields match everything.
type PatternRule struct {
	// Name identifies the rule in verdicts and logs.
	Name string
	// Host restricts the rule to this domain and its subdomains.
	Host string
	// Path is a regular expression matched against the lower-cased path.
	Path string
	// Query is a query parameter name that must be present.
	Query string
	// Allow turns the rule into an exception instead of a rejection.
	Allow bool
}

// Compile turns p into a Rule.
func (p PatternRule) Compile() (Rule, error) {
	if p.Name == "" {
		return Rule{}, fmt.Errorf("%w: rule name is empty", ErrInvalidPattern)
	}
	if p.Host == "" && p.Path == "" && p.Query == "" {
		return Rule{}, fmt.Errorf("%w: rule %q matches every url", ErrInvalidPattern, p.Name)
	}

	var re *regexp.Regexp
	if p.Path != "" {
		var err error
		re, err = regexp.Compile(p.Path)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: rule %q: %w", ErrInvalidPattern, p.Name, err)
		}
	}
	host := strings.ToLower(p.Host)

	verdict := Reject
	if p.Allow {
		verdict = Allow
	}

	return Rule{
		Name:    p.Name,
		Verdict: verdict,
		Match: func(u *url.URL) bool {
			if host != "" && !WithinDomain(u.Hostname(), host) {
				return false
			}
			if re != nil && !re.MatchString(lowerPath(u)) {
				return false
			}
			if p.Query != "" && !hasAnyParam(u, p.Query) {
				return false
			}
			return true
		},
	}, nil
}

// WithinDomain reports whether host equals domain or is one of its
// subdomains. Both are expected in lower case.
func WithinDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func lowerPath(u *url.URL) string {
	return strings.ToLower(u.Path)
}

// hasAnyParam reports whether the query carries one of names, compared
// case-insensitively.
func hasAnyParam(u *url.URL, names ...string) bool {
	for key := range u.Query() {
		for _, name := range names {
			if strings.EqualFold(key, name) {
				return true
			}
		}
	}
	return false
}
