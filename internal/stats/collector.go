package stats

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nao1215/pagegate/internal/model"
)

// DefaultTopWords is the number of words a report lists by default.
const DefaultTopWords = 50

// Collector accumulates statistics across a crawl run.
// It is safe for concurrent use; a single mutex guards all counters because
// every update is a read-modify-write over several of them.
type Collector struct {
	mu sync.Mutex

	startedAt time.Time

	// words counts non-stop-words across accepted pages.
	words map[string]int

	// pages holds canonical URLs of accepted pages.
	pages map[string]struct{}

	// subdomains counts unique accepted pages per host.
	subdomains map[string]int

	longest model.LongestPage

	accepted   int
	rejected   int
	links      int
	rejections map[model.Reason]int
}

// NewCollector creates an empty Collector whose run starts now.
func NewCollector() *Collector {
	return &Collector{
		startedAt:  time.Now(),
		words:      make(map[string]int),
		pages:      make(map[string]struct{}),
		subdomains: make(map[string]int),
		rejections: make(map[model.Reason]int),
	}
}

// RecordAccepted folds an accepted page into the statistics.
// pageURL should be canonical so the same page is not counted twice.
// freq maps words to their occurrences on the page; stop words in it are ignored.
func (c *Collector) RecordAccepted(pageURL, host string, wordCount int, freq map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accepted++

	if _, seen := c.pages[pageURL]; !seen {
		c.pages[pageURL] = struct{}{}
		if host != "" {
			c.subdomains[host]++
		}
	}

	if wordCount > c.longest.Words {
		c.longest = model.LongestPage{URL: pageURL, Words: wordCount}
	}

	for w, n := range freq {
		if IsStopWord(w) {
			continue
		}
		c.words[w] += n
	}
}

// RecordRejected counts a rejected page.
func (c *Collector) RecordRejected(reason model.Reason) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rejected++
	c.rejections[reason]++
}

// RecordLinks adds n to the number of links emitted to the frontier.
func (c *Collector) RecordLinks(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.links += n
}

// Snapshot returns a copy of the current statistics with at most topN words.
// A non-positive topN lists DefaultTopWords words.
func (c *Collector) Snapshot(topN int) model.Report {
	if topN <= 0 {
		topN = DefaultTopWords
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return model.Report{
		StartedAt:   c.startedAt,
		FinishedAt:  time.Now(),
		UniquePages: len(c.pages),
		Accepted:    c.accepted,
		Rejected:    c.rejected,
		Links:       c.links,
		Longest:     c.longest,
		TopWords:    topWords(c.words, topN),
		Subdomains:  sortedSubdomains(c.subdomains),
		Rejections:  maps.Clone(c.rejections),
	}
}

// topWords returns the n most frequent words, ties broken alphabetically.
func topWords(words map[string]int, n int) []model.WordCount {
	counts := make([]model.WordCount, 0, len(words))
	for w, cnt := range words {
		counts = append(counts, model.WordCount{Word: w, Count: cnt})
	}
	slices.SortFunc(counts, func(a, b model.WordCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if a.Word < b.Word {
			return -1
		}
		if a.Word > b.Word {
			return 1
		}
		return 0
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// sortedSubdomains returns per-host counts ordered by host name.
func sortedSubdomains(subdomains map[string]int) []model.SubdomainCount {
	hosts := slices.Sorted(maps.Keys(subdomains))
	result := make([]model.SubdomainCount, 0, len(hosts))
	for _, h := range hosts {
		result = append(result, model.SubdomainCount{Host: h, Pages: subdomains[h]})
	}
	return result
}
