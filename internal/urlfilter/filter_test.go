package urlfilter

import (
	"errors"
	"strings"
	"testing"
)

func TestFilterCheck(t *testing.T) {
	t.Parallel()

	f := New()

	tests := []struct {
		name       string
		raw        string
		wantValid  bool
		wantReason Rejection
		wantRule   string
	}{
		{"root page", "https://ics.uci.edu/", true, "", ""},
		{"subdomain of allowed domain", "https://stat.ics.uci.edu/k", true, "", ""},
		{"informatics research page", "https://www.informatics.uci.edu/research/example-research-projects/", true, "", ""},
		{"stat domain", "https://www.stat.uci.edu/faculty", true, "", ""},
		{"underscore host in scope", "https://vision_lab.ics.uci.edu/people", true, "", ""},
		{"default port is fine", "http://ics.uci.edu:80/", true, "", ""},
		{"events list is allowed", "https://ics.uci.edu/events/list?x=1", true, "", ""},
		{"unknown scheme", "hello://darkness.my.old.friend", false, RejectScheme, ""},
		{"ftp scheme", "ftp://ics.uci.edu/", false, RejectScheme, ""},
		{"malformed", "http://[::1/", false, RejectMalformed, ""},
		{"non-standard port", "https://ics.uci.edu:8080/", false, RejectPort, ""},
		{"foreign domain", "https://www.google.com/search", false, RejectDomain, ""},
		{"parent domain", "https://uci.edu/", false, RejectDomain, ""},
		{"suffix without dot boundary", "https://evilics.uci.edu/", false, RejectDomain, ""},
		{"action parameter", "https://wiki.ics.uci.edu/doku.php/start?do=edit", false, RejectAction, ""},
		{"events with query", "https://ics.uci.edu/events?x=1", false, RejectTrap, "events-calendar"},
		{"events day", "https://www.ics.uci.edu/events/2024-01-01", false, RejectTrap, "events-calendar"},
		{"wiki timeline", "https://wiki.ics.uci.edu/timeline?from=2019", false, RejectTrap, "wiki-timeline"},
		{"photo gallery", "https://www.ics.uci.edu/~eppstein/pix/chron/index.html", false, RejectTrap, "photo-gallery"},
		{"ical export", "https://www.stat.uci.edu/seminar?ical=1", false, RejectTrap, "calendar-export"},
		{"tribe calendar", "https://www.cs.uci.edu/news?tribe-bar-date=2023-10-01", false, RejectTrap, "calendar-export"},
		{"date archive", "https://www.stat.uci.edu/events/2024-01", false, RejectTrap, "date-archive"},
		{"pdf", "https://www.ics.uci.edu/~faculty/paper.pdf", false, RejectExtension, ""},
		{"upper-case extension", "https://www.ics.uci.edu/slides.PPTX", false, RejectExtension, ""},
		{"extension under allowed events list", "https://ics.uci.edu/events/list/flyer.pdf", false, RejectExtension, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := f.Check(tt.raw)
			if got.Valid != tt.wantValid {
				t.Errorf("Check(%q).Valid = %v, want %v (reason %q)", tt.raw, got.Valid, tt.wantValid, got.Reason)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Check(%q).Reason = %q, want %q", tt.raw, got.Reason, tt.wantReason)
			}
			if got.Rule != tt.wantRule {
				t.Errorf("Check(%q).Rule = %q, want %q", tt.raw, got.Rule, tt.wantRule)
			}
			if f.Validate(tt.raw) != tt.wantValid {
				t.Errorf("Validate(%q) disagrees with Check", tt.raw)
			}
		})
	}
}

func TestFilterCheckCanonical(t *testing.T) {
	t.Parallel()

	got := New().Check("https://WWW.ICS.UCI.EDU:443/a?b=1&c=2#x")
	if !got.Valid {
		t.Fatalf("Check() rejected with %q", got.Reason)
	}
	if got.Canonical != "https://www.ics.uci.edu/a?b=1" {
		t.Errorf("Canonical = %q", got.Canonical)
	}
}

func TestFilterMaxLength(t *testing.T) {
	t.Parallel()

	long := "https://ics.uci.edu/" + strings.Repeat("a", DefaultMaxLength)

	if got := New().Check(long); got.Reason != RejectTooLong {
		t.Errorf("Check(long).Reason = %q, want %q", got.Reason, RejectTooLong)
	}
	if !New(WithMaxLength(0)).Validate(long) {
		t.Error("WithMaxLength(0) should disable the length limit")
	}
	if New(WithMaxLength(20)).Validate("https://ics.uci.edu/abcdef") {
		t.Error("WithMaxLength(20) should reject a 26-byte url")
	}
}

func TestFilterOptions(t *testing.T) {
	t.Parallel()

	t.Run("non-standard ports", func(t *testing.T) {
		t.Parallel()

		f := New(WithNonStandardPorts(true))
		if !f.Validate("https://ics.uci.edu:8080/") {
			t.Error("port 8080 should be accepted")
		}
	})

	t.Run("allowed domains", func(t *testing.T) {
		t.Parallel()

		f := New(WithAllowedDomains(" Example.COM. ", ""))
		if got := f.AllowedDomains(); len(got) != 1 || got[0] != "example.com" {
			t.Fatalf("AllowedDomains() = %v", got)
		}
		if !f.Validate("https://blog.example.com/post") {
			t.Error("subdomain of example.com should be accepted")
		}
		if f.Validate("https://ics.uci.edu/") {
			t.Error("default domains should be replaced")
		}
	})

	t.Run("without default rules", func(t *testing.T) {
		t.Parallel()

		f := New(WithoutDefaultRules())
		if !f.Validate("https://ics.uci.edu/events?x=1") {
			t.Error("events should be accepted without the trap table")
		}
		if len(f.Rules()) != 0 {
			t.Errorf("Rules() = %v, want none", f.Rules())
		}
	})

	t.Run("extra rules run after built-ins", func(t *testing.T) {
		t.Parallel()

		allowEvents, err := PatternRule{Name: "allow-events", Path: `^/events`, Allow: true}.Compile()
		if err != nil {
			t.Fatal(err)
		}
		f := New(WithRules(allowEvents))

		names := f.Rules()
		if names[len(names)-1] != "allow-events" {
			t.Errorf("Rules() = %v, want allow-events last", names)
		}
		if got := f.Check("https://ics.uci.edu/events?x=1"); got.Rule != "events-calendar" {
			t.Errorf("Rule = %q, want events-calendar to decide first", got.Rule)
		}
	})
}

func TestPatternRule(t *testing.T) {
	t.Parallel()

	rule, err := PatternRule{
		Name:  "archive-pages",
		Host:  "cs.uci.edu",
		Path:  `^/archive/`,
		Query: "page",
	}.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	f := New(WithRules(rule))

	tests := []struct {
		raw       string
		wantValid bool
	}{
		{"https://www.cs.uci.edu/archive/news?page=4", false},
		{"https://www.cs.uci.edu/archive/news", true},
		{"https://www.cs.uci.edu/news?page=4", true},
		{"https://www.ics.uci.edu/archive/news?page=4", true},
	}
	for _, tt := range tests {
		got := f.Check(tt.raw)
		if got.Valid != tt.wantValid {
			t.Errorf("Check(%q).Valid = %v, want %v", tt.raw, got.Valid, tt.wantValid)
		}
		if !got.Valid && got.Rule != "archive-pages" {
			t.Errorf("Check(%q).Rule = %q", tt.raw, got.Rule)
		}
	}
}

func TestPatternRuleCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule PatternRule
	}{
		{"missing name", PatternRule{Path: "x"}},
		{"matches everything", PatternRule{Name: "all"}},
		{"bad regexp", PatternRule{Name: "bad", Path: "(unclosed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tt.rule.Compile(); !errors.Is(err, ErrInvalidPattern) {
				t.Errorf("Compile() error = %v, want ErrInvalidPattern", err)
			}
		})
	}
}

func TestHasDeniedExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"/paper.pdf", true},
		{"/Paper.PDF", true},
		{"/data/dump.tar.gz", true},
		{"/setup.exe", true},
		{"/index.html", false},
		{"/people/", false},
		{"/v1.2/", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasDeniedExtension(tt.path); got != tt.want {
			t.Errorf("HasDeniedExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
