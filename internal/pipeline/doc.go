// Package pipeline runs a filter job as a sequence of steps.
//
// A job loads a manifest of fetched pages, admits them through the
// admission gate, snapshots the run statistics, writes the frontier links
// and the report, and records the run in the audit database. Each stage is
// a Step that receives the shared Run and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps (the audit database is optional)
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between stages
//
// Admission of many pages runs concurrently through Processor, which limits
// parallelism with errgroup.
package pipeline
