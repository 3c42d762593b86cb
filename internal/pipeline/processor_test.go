package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/pagegate/internal/admission"
	"github.com/nao1215/pagegate/internal/model"
	"github.com/nao1215/pagegate/internal/urlfilter"
)

// admitFunc adapts a function to the Admitter interface.
type admitFunc func(page *model.FetchedPage) (model.Decision, error)

func (f admitFunc) Admit(page *model.FetchedPage) (model.Decision, error) {
	return f(page)
}

// echoAdmitter accepts every page and reports the URL back.
var echoAdmitter = admitFunc(func(page *model.FetchedPage) (model.Decision, error) {
	return model.Decision{URL: page.URL, Accepted: true}, nil
})

func pagesFor(urls ...string) []*model.FetchedPage {
	pages := make([]*model.FetchedPage, len(urls))
	for i, u := range urls {
		pages[i] = &model.FetchedPage{URL: u, StatusCode: 200}
	}
	return pages
}

func TestNewProcessor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []ProcessorOption
		want int
	}{
		{name: "default concurrency", want: DefaultConcurrency},
		{name: "custom concurrency", opts: []ProcessorOption{WithConcurrency(3)}, want: 3},
		{name: "zero keeps default", opts: []ProcessorOption{WithConcurrency(0)}, want: DefaultConcurrency},
		{name: "negative keeps default", opts: []ProcessorOption{WithConcurrency(-1)}, want: DefaultConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewProcessor(echoAdmitter, tt.opts...)
			if p.Concurrency() != tt.want {
				t.Errorf("Concurrency() = %d, want %d", p.Concurrency(), tt.want)
			}
		})
	}
}

func TestProcessorProcess(t *testing.T) {
	t.Parallel()

	t.Run("preserves input order", func(t *testing.T) {
		t.Parallel()

		urls := make([]string, 50)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://www.ics.uci.edu/p%d", i)
		}
		slow := admitFunc(func(page *model.FetchedPage) (model.Decision, error) {
			// Early pages finish last.
			if strings.HasSuffix(page.URL, "/p0") || strings.HasSuffix(page.URL, "/p1") {
				time.Sleep(10 * time.Millisecond)
			}
			return echoAdmitter(page)
		})

		p := NewProcessor(slow, WithConcurrency(8), WithProcessorLogger(quiet))
		decisions, err := p.Process(context.Background(), pagesFor(urls...))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, d := range decisions {
			if d.URL != urls[i] {
				t.Fatalf("decision %d is for %s, want %s", i, d.URL, urls[i])
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		tracking := admitFunc(func(page *model.FetchedPage) (model.Decision, error) {
			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			current.Add(-1)
			return echoAdmitter(page)
		})

		p := NewProcessor(tracking, WithConcurrency(2), WithProcessorLogger(quiet))
		if _, err := p.Process(context.Background(), pagesFor("a", "b", "c", "d", "e", "f")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("peak concurrency = %d, want at most 2", peak.Load())
		}
	})

	t.Run("stops on admit error", func(t *testing.T) {
		t.Parallel()

		failing := admitFunc(func(*model.FetchedPage) (model.Decision, error) {
			return model.Decision{}, admission.ErrNoBaseURL
		})

		p := NewProcessor(failing, WithConcurrency(1), WithProcessorLogger(quiet))
		_, err := p.Process(context.Background(), pagesFor("", ""))
		if !errors.Is(err, admission.ErrNoBaseURL) {
			t.Errorf("expected ErrNoBaseURL, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "page 1") {
			t.Errorf("expected error to name the page, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls atomic.Int32
		counting := admitFunc(func(page *model.FetchedPage) (model.Decision, error) {
			calls.Add(1)
			return echoAdmitter(page)
		})

		p := NewProcessor(counting, WithProcessorLogger(quiet))
		if _, err := p.Process(ctx, pagesFor("a", "b")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("admitter called %d times after cancellation", calls.Load())
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		decisions, err := NewProcessor(echoAdmitter, WithProcessorLogger(quiet)).Process(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(decisions) != 0 {
			t.Errorf("expected no decisions, got %d", len(decisions))
		}
	})
}

func TestProcessorProcessWithCallback(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen = make(map[int]string)
	)
	p := NewProcessor(echoAdmitter, WithConcurrency(4), WithProcessorLogger(quiet))
	err := p.ProcessWithCallback(context.Background(), pagesFor("a", "b", "c"), func(d model.Decision, index int) {
		mu.Lock()
		defer mu.Unlock()
		seen[index] = d.URL
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Errorf("callback saw %v", seen)
	}
}

func TestProcessorAdmitsOneOfIdenticalPages(t *testing.T) {
	t.Parallel()

	gate, err := admission.New(urlfilter.New(), admission.WithLogger(quiet))
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}

	words := make([]string, 80)
	for i := range words {
		words[i] = fmt.Sprintf("topic%02d", i)
	}
	body := "<html><body><p>" + strings.Join(words, " ") + "</p></body></html>"

	pages := make([]*model.FetchedPage, 20)
	for i := range pages {
		pages[i] = &model.FetchedPage{
			URL:        fmt.Sprintf("https://www.ics.uci.edu/copy/%d", i),
			StatusCode: 200,
			Raw:        []byte(body),
		}
	}

	decisions, err := NewProcessor(gate, WithConcurrency(8), WithProcessorLogger(quiet)).
		Process(context.Background(), pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accepted := 0
	for _, d := range decisions {
		switch {
		case d.Accepted:
			accepted++
		case d.Reason != model.ReasonNearDuplicate:
			t.Errorf("%s rejected as %v, want near_duplicate", d.URL, d.Reason)
		}
	}
	if accepted != 1 {
		t.Errorf("accepted %d identical pages, want exactly 1", accepted)
	}
}

func TestProcessorDecidesAroundMalformedURL(t *testing.T) {
	t.Parallel()

	gate, err := admission.New(urlfilter.New(), admission.WithLogger(quiet))
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}

	page := func(pageURL, prefix string) *model.FetchedPage {
		words := make([]string, 60)
		for i := range words {
			words[i] = fmt.Sprintf("%s%02d", prefix, i)
		}
		return &model.FetchedPage{
			URL:        pageURL,
			StatusCode: 200,
			Raw:        []byte("<html><body><p>" + strings.Join(words, " ") + "</p></body></html>"),
		}
	}
	bad := page("https://www.ics.uci.edu/b", "beta")
	bad.EffectiveURL = "https://www.ics.uci.edu/bad%zz"
	pages := []*model.FetchedPage{
		page("https://www.ics.uci.edu/a", "alpha"),
		bad,
		page("https://www.ics.uci.edu/c", "gamma"),
	}

	decisions, err := NewProcessor(gate, WithConcurrency(2), WithProcessorLogger(quiet)).
		Process(context.Background(), pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decisions) != 3 {
		t.Fatalf("got %d decisions, want 3", len(decisions))
	}
	if !decisions[0].Accepted || !decisions[2].Accepted {
		t.Errorf("well-formed pages rejected: %s, %s", decisions[0].Reason, decisions[2].Reason)
	}
	if decisions[1].Accepted || decisions[1].Reason != model.ReasonMalformedURL {
		t.Errorf("decision[1] = %v/%s, want malformed_url", decisions[1].Accepted, decisions[1].Reason)
	}
}
