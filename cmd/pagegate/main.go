// Package main provides the entry point for the pagegate CLI.
//
// pagegate decides which fetched pages a focused crawler should index and
// which outbound links it should queue. It reads a manifest of fetched
// pages, filters out failures, thin pages and near duplicates, and writes
// the frontier links and a run report.
//
// Usage:
//
//	pagegate filter pages.jsonl
//	pagegate check https://www.ics.uci.edu/about
//
// See --help for all available options.
package main

func main() {
	Execute()
}
