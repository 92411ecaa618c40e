package imagevault

import "github.com/google/uuid"

// Request/Response DTOs

// UploadImageRequest contains parameters for storing a new image.
type UploadImageRequest struct {
	OwnerID     string
	FileName    string
	Data        []byte
	Description string
}

// UploadResult is the outcome of a successful upload. DownloadURL is
// produced best-effort and may be empty if presigning failed; the upload
// itself succeeded once both stores committed.
type UploadResult struct {
	Image       *Image
	DownloadURL string
}

// FetchMode selects what GetImage returns.
type FetchMode string

const (
	// FetchMetadata returns the metadata record only.
	FetchMetadata FetchMode = "metadata"
	// FetchData returns the metadata record plus the blob's bytes.
	FetchData FetchMode = "data"
	// FetchPresigned returns the metadata record plus a presigned URL.
	FetchPresigned FetchMode = "presigned"
)

// GetImageRequest contains parameters for fetching an image.
//
// ExpirySeconds applies to FetchPresigned only. Values outside [1, 86400]
// (including the zero value) fall back to the 3600s default rather than
// failing the request.
type GetImageRequest struct {
	ID            uuid.UUID
	Mode          FetchMode
	ExpirySeconds int
}

// GetImageResult is the outcome of a fetch. Data and ContentType are set in
// FetchData mode; PresignedURL and ExpiresIn in FetchPresigned mode.
type GetImageResult struct {
	Image        *Image
	Data         []byte
	ContentType  string
	PresignedURL string
	ExpiresIn    int
}

// SearchImagesRequest contains parameters for listing images. All filters
// are optional; substring filters are case-insensitive and combine with
// logical AND. A nil Limit defaults to DefaultSearchLimit; a set Limit
// outside [1, 100] is rejected.
type SearchImagesRequest struct {
	OwnerID           string
	FileNameFilter    string
	DescriptionFilter string
	Limit             *int
}

// SearchImagesResult holds the matching records in source order.
type SearchImagesResult struct {
	Images []*Image
	Count  int
}
