package imagevault

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Every failure returned by the Service wraps exactly one of
// these, so callers can branch with errors.Is instead of string matching.
var (
	// ErrInvalidRequest indicates bad input; no store was touched.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrImageNotFound indicates no metadata record exists for the id.
	ErrImageNotFound = errors.New("image not found")

	// ErrBlobNotFound indicates the blob store has no object at the key.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrImageExists indicates a metadata record with the id already exists.
	ErrImageExists = errors.New("image already exists")

	// ErrStoreUnavailable indicates a transient backend failure.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrStoreRejected indicates a backend-enforced constraint violation.
	ErrStoreRejected = errors.New("store rejected request")
)

// ValidationError reports a rejected input field. It wraps
// ErrInvalidRequest for errors.Is checks.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// ImageError represents an error from an image lifecycle operation.
type ImageError struct {
	ImageID uuid.UUID
	Op      string
	Err     error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image operation %s failed for image %s: %v", e.Op, e.ImageID, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// StorageError represents an error from a blob store operation.
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
