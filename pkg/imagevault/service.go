package imagevault

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the image lifecycle operations exposed to the
// presentation layer. Each call is an independent, stateless unit of work;
// concurrency control lives entirely in the backing stores.
type Service interface {
	// UploadImage validates the payload, writes the blob, then the metadata
	// record. A failure after the blob write leaves an orphaned blob.
	UploadImage(ctx context.Context, req UploadImageRequest) (*UploadResult, error)

	// GetImage resolves the metadata record first, then branches on the
	// requested mode. A missing record never leaks a dangling blob read.
	GetImage(ctx context.Context, req GetImageRequest) (*GetImageResult, error)

	// SearchImages lists records matching the optional owner and substring
	// filters, preferring the owner index over full enumeration.
	SearchImages(ctx context.Context, req SearchImagesRequest) (*SearchImagesResult, error)

	// DeleteImage removes the blob, then the metadata record, and returns
	// the deleted record's snapshot. A blob delete failure aborts with the
	// record intact; a metadata delete failure leaves an orphaned record.
	DeleteImage(ctx context.Context, id uuid.UUID) (*Image, error)
}
