// Package simhash detects near-duplicate pages by fingerprinting their word
// streams.
//
// A page's words are cut into overlapping shingles of k consecutive words.
// Each shingle is hashed to 64 bits and votes on every bit position; the
// fingerprint keeps bit i set when the votes for it are non-negative. Pages
// sharing most shingles end up with fingerprints a few bits apart, so the
// Hamming distance between fingerprints approximates textual similarity
// without storing page text.
//
// The Index compares each new fingerprint against every accepted one. This is
// a linear scan; a sharded index keyed by fingerprint prefix bits would cut it
// down for larger crawls.
package simhash
