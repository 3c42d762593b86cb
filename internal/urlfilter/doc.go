// Package urlfilter canonicalizes URLs and decides which of them a focused
// crawl should queue.
//
// Normalize maps equivalent spellings of a URL to one canonical string: the
// scheme and host are lower-cased, default ports, userinfo and fragments
// are dropped, and the query string is split on both '&' and ';', stripped
// of session-style "c" and "o" parameters, sorted, and re-encoded.
//
// A Filter applies the crawl scope on top of the canonical form: a length
// cap against ever-growing trap paths, the allowed domain list, action
// parameters, an ordered table of trap rules and a file-extension deny-list.
//
// # Trap rules
//
// Calendar, wiki-timeline and gallery traps are expressed as an ordered list
// of Rule values. The first rule whose predicate matches decides; an Allow
// verdict ends trap evaluation. New traps are added by appending rules, not
// by editing control flow.
//
// Design decision: Malformed or out-of-scope URLs are verdicts, never errors
// that abort the crawl. Crawl-scale input is untrusted by nature.
package urlfilter
