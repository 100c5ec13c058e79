// Package tasks runs the catalog's multi-request operations with real-time progress reporting.
//
// # Page Loading
//
// [PageLoader.Load] fetches the eight catalog categories concurrently through an
// [errgroup.Group] and returns a [models.CatalogPage] only when every request
// succeeded. The first failure cancels the shared context and is returned
// wrapped with its category key; no partial page is ever produced.
//
// # Bulk Export
//
// [ExportPage] writes one file per category with a small worker pool and records
// the outcome of every category in a manifest.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
