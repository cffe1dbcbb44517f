// Package ingestion builds searchable document indexes from raw sources.
//
// The Pipeline type manages the build workflow for a document, including:
//   - Fetching raw bytes from a URL or local path
//   - Extracting and cleaning text by content type
//   - Chunking text into overlapping token windows
//   - Generating embeddings in concurrent batches
//
// Embedding batches run on a worker pool to maximize throughput against
// the embedding backend. A build either produces a complete index or
// fails; partial indexes are never returned.
package ingestion
