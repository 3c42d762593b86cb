// Package model defines the core data structures shared across pagegate.
//
// This package contains the following main types:
//   - FetchedPage: A fetch result handed to the filter by the fetch layer
//   - Token: A word or outbound link produced by the tokenizer
//   - Decision: The admission verdict for a single page
//   - Report: A read-only snapshot of run-wide statistics
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The tokenizer, admission gate, statistics collector, pipeline
// and report writers all exchange these types, so centralizing them prevents
// import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
