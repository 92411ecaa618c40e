package imagevault

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// PresignMethod selects the HTTP method a presigned URL authorizes.
type PresignMethod string

const (
	PresignGet PresignMethod = "GET"
	PresignPut PresignMethod = "PUT"
)

// PutParams carries the content type and attributes stored alongside a blob.
type PutParams struct {
	ContentType string
	Metadata    map[string]string
}

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Key         string
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// DeleteResult reports the outcome of a blob delete. Versioned stores may
// produce a delete marker instead of removing the bytes.
type DeleteResult struct {
	DeleteMarker bool
	VersionID    string
}

// BlobStore defines the interface for blob storage backends. Implementations
// have no knowledge of metadata records; the object key is the only link.
type BlobStore interface {
	// Put writes a blob unconditionally (overwrite semantics). Key
	// uniqueness is the caller's concern.
	Put(ctx context.Context, objectKey string, reader io.Reader, params PutParams) error

	// Get returns the blob's bytes and description. It fails with
	// ErrBlobNotFound if the key is absent.
	Get(ctx context.Context, objectKey string) (io.ReadCloser, *BlobInfo, error)

	// Delete removes a blob. Deleting an absent key is not an error at this
	// layer; existence preconditions are enforced one level up.
	Delete(ctx context.Context, objectKey string) (DeleteResult, error)

	// PresignedURL returns a time-boxed direct-access URL without moving
	// bytes through the caller. The expiry must already be within the
	// supported range; the backend does not clamp.
	PresignedURL(ctx context.Context, objectKey string, method PresignMethod, expires time.Duration) (string, error)
}

// Repository defines the interface for image metadata persistence.
type Repository interface {
	// PutIfAbsent writes a record only if no record with the same id
	// exists, failing with ErrImageExists otherwise. The precondition must
	// be enforced atomically by the backing store.
	PutIfAbsent(ctx context.Context, image *Image) error

	// GetByID fails with ErrImageNotFound if the record is absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Image, error)

	// DeleteIfPresent removes a record and returns its snapshot, failing
	// with ErrImageNotFound if absent. The existence check and the removal
	// are atomic: of two concurrent deletes, exactly one succeeds.
	DeleteIfPresent(ctx context.Context, id uuid.UUID) (*Image, error)

	// QueryByOwner returns one owner's records, newest first. A limit <= 0
	// means no limit. This is the index-assisted path and is preferred
	// whenever an owner id is available.
	QueryByOwner(ctx context.Context, ownerID string, limit int) ([]*Image, error)

	// EnumerateAll returns every record with no ordering guarantee. This is
	// the expensive fallback path: it costs O(corpus size) and is used only
	// when no owner id is supplied.
	EnumerateAll(ctx context.Context) ([]*Image, error)
}

// EventSink defines the interface for lifecycle event handling. Sink
// failures never fail the operation that fired them.
type EventSink interface {
	// ImageUploaded is fired after both stores have committed an upload.
	ImageUploaded(ctx context.Context, image *Image) error

	// ImageDeleted is fired after a delete has removed the metadata record.
	ImageDeleted(ctx context.Context, imageID uuid.UUID) error
}
