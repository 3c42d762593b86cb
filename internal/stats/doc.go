// Package stats aggregates run-wide statistics about admitted pages.
//
// The Collector is mutated once per admission decision and read once by the
// reporting collaborator at shutdown through Snapshot. It tracks:
//   - Unique accepted pages (by canonical URL)
//   - The longest accepted page by word count
//   - Word frequencies across accepted pages, stop words excluded
//   - Unique accepted pages per host (subdomain)
//   - Rejection counts per reason
//
// All state lives for the duration of a run and is never evicted.
package stats
