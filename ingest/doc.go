// Package ingest provides pipeline orchestration for offering collected
// records to the content store.
//
// The Pipeline type manages the ingestion workflow for beans, chatters and
// publishers, including:
//   - Validating rows and dropping malformed ones
//   - Idempotent persistence (duplicates silently skipped)
//   - Generating embeddings asynchronously for newly stored beans
//   - Applying collector-supplied embeddings and gists as partial merges
//
// Enrichment is performed concurrently using a worker pool. Errors during
// async processing are logged but do not fail the ingestion operation; the
// EmbedMissing catch-up pass covers anything left behind.
package ingest
