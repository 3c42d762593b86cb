package model

import "testing"

// TestFetchedPageBaseURL tests base URL selection.
func TestFetchedPageBaseURL(t *testing.T) {
	t.Parallel()

	t.Run("effective URL wins", func(t *testing.T) {
		t.Parallel()
		p := FetchedPage{URL: "http://ics.uci.edu/a", EffectiveURL: "https://ics.uci.edu/b"}
		if got := p.BaseURL(); got != "https://ics.uci.edu/b" {
			t.Errorf("expected effective URL, got %q", got)
		}
	})

	t.Run("falls back to requested URL", func(t *testing.T) {
		t.Parallel()
		p := FetchedPage{URL: "http://ics.uci.edu/a"}
		if got := p.BaseURL(); got != "http://ics.uci.edu/a" {
			t.Errorf("expected requested URL, got %q", got)
		}
	})
}

// TestFetchedPageOK tests fetch status classification.
func TestFetchedPageOK(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page FetchedPage
		want bool
	}{
		{name: "200 without error", page: FetchedPage{StatusCode: 200}, want: true},
		{name: "404", page: FetchedPage{StatusCode: 404}, want: false},
		{name: "transport error", page: FetchedPage{StatusCode: 200, TransportError: true}, want: false},
		{name: "zero status", page: FetchedPage{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.page.OK(); got != tt.want {
				t.Errorf("OK() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestRejected tests the rejection decision constructor.
func TestRejected(t *testing.T) {
	t.Parallel()

	d := Rejected("http://ics.uci.edu/", ReasonEmpty)
	if d.Accepted {
		t.Error("expected rejected decision")
	}
	if d.Links == nil || len(d.Links) != 0 {
		t.Errorf("expected empty non-nil links, got %v", d.Links)
	}
	if d.Distance != -1 {
		t.Errorf("expected distance -1, got %d", d.Distance)
	}
}
