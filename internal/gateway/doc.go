// Package gateway implements the persistence boundary for tasks and categories.
//
// Every backend satisfies [Gateway] and owns the canonical task record, including the
// manual order field. Backends:
//   - [Memory] : process-local maps seeded with the default categories
//   - [SQLite] : the repositories package on a migrated sqlite database
//   - [Bolt] : a bbolt file with one bucket per entity
//
// [Latency] decorates any backend with per-operation delays, a request throttle and
// injected failures so callers experience a remote service.
package gateway
