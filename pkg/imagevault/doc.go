// Package imagevault provides a reusable library for storing image objects
// across two independent backends: a blob store for the raw bytes and a
// metadata repository for the descriptive record.
//
// It exposes a single Service interface that orchestrates upload, fetch,
// search, and delete. Implementations of repositories (e.g., memory,
// Postgres) and blob stores (e.g., memory, filesystem, S3, MinIO) are
// provided under subpackages.
//
// # Consistency
//
// There is no cross-store transaction. Upload writes the blob first and the
// metadata record second; delete removes the blob first and the metadata
// record second. A failure between the two steps leaves a documented orphan:
// a blob with no record after a failed upload, or a record pointing at a
// missing blob after a failed delete. Neither window is retried or rolled
// back here; an external reconciliation sweep is the expected mitigation.
// The ordering is chosen so that in a clean run a record never outlives its
// blob silently: the orphan that can occur on delete is visible to readers
// and therefore diagnosable.
package imagevault
