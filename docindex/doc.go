// Package docindex caches built document indexes by fingerprint.
//
// A Cache guarantees at most one build per fingerprint at a time: when
// several callers request the same uncached document concurrently, one
// build runs and every caller receives its result. Build failures
// propagate to all waiters and are never cached, so the next request
// retries.
//
// The cache is unbounded by default; entries live for the process
// lifetime. WithCapacity enables least-recently-used eviction, and
// WithStore adds a persistent write-through layer that survives
// restarts.
package docindex
