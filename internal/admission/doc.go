// Package admission decides whether a fetched page is worth indexing and
// which of its links are worth queuing.
//
// A Gate runs each page through an ordered series of checks and stops at the
// first failure:
//
//  1. fetch failed (non-200 status or transport error)
//  2. empty content
//  3. oversized content
//  4. no words after tokenization
//  5. thin content (fewer words than the configured minimum, off by default)
//  6. near duplicate of an already accepted page (SimHash)
//  7. low information density on very large pages
//
// Accepted pages update the run statistics and return their outbound links,
// canonicalized, filtered and deduplicated against every link emitted
// before. Rejected pages return no links: a rejected page's neighbourhood is
// not trusted to lead anywhere productive.
//
// All cross-page state (visited URLs, seen fingerprints, statistics) lives
// in objects injected into the Gate and is safe for concurrent use, so one
// Gate may serve many workers.
package admission
