package admission

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/nao1215/pagegate/internal/crawler"
	"github.com/nao1215/pagegate/internal/model"
	"github.com/nao1215/pagegate/internal/simhash"
	"github.com/nao1215/pagegate/internal/stats"
	"github.com/nao1215/pagegate/internal/urlfilter"
)

// DefaultDensityThreshold is the words-per-byte ratio below which a large
// page counts as a low-information dump.
const DefaultDensityThreshold = 0.05

// Gate decides page admission. It holds no per-page state; all cross-page
// state lives in the injected VisitedSet, simhash.Index and stats.Collector.
type Gate struct {
	filter    *urlfilter.Filter
	visited   *VisitedSet
	index     *simhash.Index
	collector *stats.Collector
	logger    *slog.Logger

	shingleSize      int
	hasher           simhash.Hasher
	maxContentBytes  int
	densityThreshold float64
	minWords         int
	excludeStopWords bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger every decision is reported to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithVisited shares a visited set with other components of the run.
func WithVisited(v *VisitedSet) Option {
	return func(g *Gate) {
		if v != nil {
			g.visited = v
		}
	}
}

// WithIndex sets the fingerprint index, which also fixes the similarity threshold.
func WithIndex(idx *simhash.Index) Option {
	return func(g *Gate) {
		if idx != nil {
			g.index = idx
		}
	}
}

// WithCollector sets the statistics collector.
func WithCollector(c *stats.Collector) Option {
	return func(g *Gate) {
		if c != nil {
			g.collector = c
		}
	}
}

// WithShingleSize sets the number of words per shingle.
func WithShingleSize(k int) Option {
	return func(g *Gate) {
		if k > 0 {
			g.shingleSize = k
		}
	}
}

// WithHasher sets the shingle hash function.
func WithHasher(h simhash.Hasher) Option {
	return func(g *Gate) {
		if h != nil {
			g.hasher = h
		}
	}
}

// WithMaxContentBytes sets the oversized-page ceiling.
func WithMaxContentBytes(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.maxContentBytes = n
		}
	}
}

// WithDensityThreshold sets the minimum words-per-byte ratio for pages
// larger than half the content ceiling. Zero disables the check.
func WithDensityThreshold(ratio float64) Option {
	return func(g *Gate) {
		if ratio >= 0 {
			g.densityThreshold = ratio
		}
	}
}

// WithMinWords rejects pages with fewer words as thin content.
// Zero disables the check.
func WithMinWords(n int) Option {
	return func(g *Gate) {
		if n >= 0 {
			g.minWords = n
		}
	}
}

// WithStopWordsExcluded leaves stop words out of the shingle stream so
// pages differing only in function words fingerprint alike.
func WithStopWordsExcluded(exclude bool) Option {
	return func(g *Gate) {
		g.excludeStopWords = exclude
	}
}

// New creates a Gate that validates links with filter. Without options the
// Gate gets fresh state objects and the default thresholds.
func New(filter *urlfilter.Filter, opts ...Option) (*Gate, error) {
	if filter == nil {
		return nil, ErrNilFilter
	}
	g := &Gate{
		filter:           filter,
		visited:          NewVisitedSet(),
		index:            simhash.NewIndex(simhash.DefaultThreshold),
		collector:        stats.NewCollector(),
		logger:           slog.New(slog.DiscardHandler),
		shingleSize:      simhash.DefaultShingleSize,
		hasher:           simhash.FNV64a,
		maxContentBytes:  model.MaxContentBytes,
		densityThreshold: DefaultDensityThreshold,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Visited returns the gate's visited set.
func (g *Gate) Visited() *VisitedSet { return g.visited }

// Index returns the gate's fingerprint index.
func (g *Gate) Index() *simhash.Index { return g.index }

// Collector returns the gate's statistics collector.
func (g *Gate) Collector() *stats.Collector { return g.collector }

// Admit decides whether page is accepted and returns the links to queue.
//
// An error is returned only when the caller breaks the contract (a nil page
// or one without any URL); every property of the page content itself leads
// to a Decision.
func (g *Gate) Admit(page *model.FetchedPage) (model.Decision, error) {
	if page == nil {
		return model.Decision{}, ErrNilPage
	}
	base := page.BaseURL()
	if strings.TrimSpace(base) == "" {
		return model.Decision{}, ErrNoBaseURL
	}

	// The page itself has been fetched; never hand it back to the frontier.
	canonical := g.markFetched(page)

	// A base URL that does not parse is a defect of the input, not of the
	// caller, so it becomes a rejection like any other.
	tok, tokErr := crawler.NewTokenizer(base)
	if tokErr != nil {
		g.logger.Debug("unparseable page url", slog.String("url", base), slog.Any("error", tokErr))
	}
	if d, rejected := g.precheck(page, tokErr != nil); rejected {
		d.Canonical = canonical
		return g.reject(d), nil
	}

	scan := g.scan(tok, page)
	size := len(page.Raw)

	d := model.Decision{
		URL:       page.URL,
		Canonical: canonical,
		Words:     scan.words,
		Bytes:     size,
		Distance:  -1,
		Links:     []string{},
	}

	switch {
	case scan.words == 0:
		d.Reason = model.ReasonNoWords
		return g.reject(d), nil
	case scan.words < g.minWords:
		d.Reason = model.ReasonThinContent
		return g.reject(d), nil
	}

	fp := scan.builder.Sum()
	d.Fingerprint = uint64(fp)

	match := g.index.CheckAndAdd(fp)
	d.Distance = match.Distance

	switch {
	case match.Duplicate:
		d.Reason = model.ReasonNearDuplicate
		return g.reject(d), nil
	case g.lowDensity(scan.words, size):
		d.Reason = model.ReasonLowDensity
		return g.reject(d), nil
	}

	d.Accepted = true
	d.Links = g.admitLinks(scan.links)

	pageKey := canonical
	if pageKey == "" {
		pageKey = base
	}
	g.collector.RecordAccepted(pageKey, hostOf(pageKey), scan.words, scan.freq)
	g.collector.RecordLinks(len(d.Links))

	g.logger.Debug("page accepted",
		slog.String("url", page.URL),
		slog.Int("words", d.Words),
		slog.Int("links", len(d.Links)),
		slog.Int("distance", d.Distance),
	)
	return d, nil
}

// precheck runs the checks that need no parsing. badBase reports that the
// page URL could not be parsed.
func (g *Gate) precheck(page *model.FetchedPage, badBase bool) (model.Decision, bool) {
	var reason model.Reason
	switch {
	case !page.OK():
		reason = model.ReasonFetchFailed
	case badBase:
		reason = model.ReasonMalformedURL
	case len(page.Raw) == 0:
		reason = model.ReasonEmpty
	case len(page.Raw) > g.maxContentBytes:
		reason = model.ReasonOversized
	default:
		return model.Decision{}, false
	}
	d := model.Rejected(page.URL, reason)
	d.Bytes = len(page.Raw)
	return d, true
}

// pageScan is what one pass over the token stream yields.
type pageScan struct {
	words   int
	freq    map[string]int
	links   []string
	builder *simhash.Builder
}

func (g *Gate) scan(tok *crawler.Tokenizer, page *model.FetchedPage) pageScan {
	s := pageScan{
		freq:    make(map[string]int),
		builder: simhash.NewBuilder(g.shingleSize, g.hasher),
	}
	for t := range tok.Tokens(page.Raw, page.ContentType) {
		switch t.Kind {
		case model.TokenWord:
			s.words++
			s.freq[t.Value]++
			if g.excludeStopWords && stats.IsStopWord(t.Value) {
				continue
			}
			s.builder.Add(t.Value)
		case model.TokenLink:
			s.links = append(s.links, t.Value)
		}
	}
	return s
}

func (g *Gate) lowDensity(words, size int) bool {
	if size <= g.maxContentBytes/2 {
		return false
	}
	return float64(words)/float64(size) < g.densityThreshold
}

// admitLinks canonicalizes and validates raw links, keeping those never
// seen before in document order.
func (g *Gate) admitLinks(raw []string) []string {
	links := make([]string, 0, len(raw))
	for _, link := range raw {
		res := g.filter.Check(link)
		if !res.Valid {
			continue
		}
		if g.visited.Add(res.Canonical) {
			links = append(links, res.Canonical)
		}
	}
	return links
}

// markFetched adds the canonical forms of the requested and effective URLs
// to the visited set and returns the canonical base URL ("" when it cannot
// be normalized).
func (g *Gate) markFetched(page *model.FetchedPage) string {
	var canonical string
	for _, raw := range []string{page.URL, page.EffectiveURL} {
		if raw == "" {
			continue
		}
		c, err := urlfilter.Normalize(raw)
		if err != nil {
			continue
		}
		g.visited.Add(c)
		if raw == page.BaseURL() {
			canonical = c
		}
	}
	return canonical
}

func (g *Gate) reject(d model.Decision) model.Decision {
	d.Accepted = false
	d.Links = []string{}
	g.collector.RecordRejected(d.Reason)
	g.logger.Debug("page rejected",
		slog.String("url", d.URL),
		slog.String("reason", d.Reason.String()),
		slog.Int("words", d.Words),
		slog.Int("bytes", d.Bytes),
	)
	return d
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
