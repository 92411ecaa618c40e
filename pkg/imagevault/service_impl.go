package imagevault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/image-vault/pkg/imagevault/objectkey"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobs      BlobStore
	keys       objectkey.Generator
	events     EventSink
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the metadata repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobs = store
	}
}

// WithObjectKeyGenerator sets the object key generation strategy
func WithObjectKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keys = gen
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.events = sink
	}
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		keys:   objectkey.NewOwnerScopedGenerator(),
		events: NewNoopEventSink(),
		now:    time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

func (s *service) UploadImage(ctx context.Context, req UploadImageRequest) (*UploadResult, error) {
	// Validation happens in full before any store access.
	if err := validateUpload(req); err != nil {
		return nil, err
	}

	id := uuid.New()
	key := s.keys.GenerateKey(req.OwnerID, id, req.FileName)
	image := &Image{
		ID:          id,
		OwnerID:     req.OwnerID,
		FileName:    req.FileName,
		ContentType: MediaTypeForFileName(req.FileName),
		FileSize:    int64(len(req.Data)),
		UploadedAt:  s.now().Unix(),
		ObjectKey:   key,
		Description: req.Description,
	}

	// Blob first: a failure here leaves zero residue, since nothing
	// references the key yet.
	err := s.blobs.Put(ctx, key, bytes.NewReader(req.Data), PutParams{
		ContentType: image.ContentType,
		Metadata: map[string]string{
			"user_id":           req.OwnerID,
			"image_id":          id.String(),
			"original_filename": req.FileName,
		},
	})
	if err != nil {
		return nil, &ImageError{ImageID: id, Op: "upload", Err: err}
	}

	// Metadata second. A failure here leaves an orphaned blob (bytes
	// present, no record); recovery belongs to an external reconciliation
	// sweep, not to this call.
	if err := s.repository.PutIfAbsent(ctx, image); err != nil {
		return nil, &ImageError{ImageID: id, Op: "upload", Err: err}
	}

	// Sink failures never fail the operation.
	_ = s.events.ImageUploaded(ctx, image)

	// Best-effort convenience URL; the upload has already succeeded.
	url, err := s.blobs.PresignedURL(ctx, key, PresignGet, DefaultPresignExpiry)
	if err != nil {
		url = ""
	}

	return &UploadResult{Image: image, DownloadURL: url}, nil
}

func (s *service) GetImage(ctx context.Context, req GetImageRequest) (*GetImageResult, error) {
	if req.ID == uuid.Nil {
		return nil, &ValidationError{Field: "image_id", Reason: "required"}
	}

	// The metadata lookup always precedes blob access, so a missing record
	// fails here and never reaches the blob store.
	image, err := s.repository.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	switch req.Mode {
	case FetchData:
		body, info, err := s.blobs.Get(ctx, image.ObjectKey)
		if err != nil {
			return nil, &ImageError{ImageID: req.ID, Op: "download", Err: err}
		}
		defer body.Close()
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, &ImageError{ImageID: req.ID, Op: "download", Err: err}
		}
		contentType := image.ContentType
		if info != nil && info.ContentType != "" {
			contentType = info.ContentType
		}
		return &GetImageResult{Image: image, Data: data, ContentType: contentType}, nil

	case FetchPresigned:
		expiry := normalizeExpiry(req.ExpirySeconds)
		url, err := s.blobs.PresignedURL(ctx, image.ObjectKey, PresignGet, expiry)
		if err != nil {
			return nil, &ImageError{ImageID: req.ID, Op: "presign", Err: err}
		}
		return &GetImageResult{Image: image, PresignedURL: url, ExpiresIn: int(expiry.Seconds())}, nil

	default:
		return &GetImageResult{Image: image}, nil
	}
}

func (s *service) DeleteImage(ctx context.Context, id uuid.UUID) (*Image, error) {
	// Resolve the record first; delete is defined only for images with
	// existing metadata.
	image, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Blob first, fail-closed: if this fails the record is untouched and
	// the image stays fully readable.
	if _, err := s.blobs.Delete(ctx, image.ObjectKey); err != nil {
		return nil, &ImageError{ImageID: id, Op: "delete", Err: err}
	}

	// A failure here leaves an orphaned record pointing at a missing blob.
	// That window is visible to readers (fetch fails at the blob step) and
	// is left for external reconciliation rather than retried.
	deleted, err := s.repository.DeleteIfPresent(ctx, id)
	if err != nil {
		return nil, &ImageError{ImageID: id, Op: "delete", Err: err}
	}

	// Sink failures never fail the operation.
	_ = s.events.ImageDeleted(ctx, id)

	return deleted, nil
}

func validateUpload(req UploadImageRequest) error {
	if req.OwnerID == "" {
		return &ValidationError{Field: "user_id", Reason: "required"}
	}
	if req.FileName == "" {
		return &ValidationError{Field: "filename", Reason: "required"}
	}
	if !AllowedExtension(req.FileName) {
		return &ValidationError{Field: "filename", Reason: "file extension not allowed"}
	}
	if len(req.Data) > MaxFileSize {
		return &ValidationError{
			Field:  "file_data",
			Reason: fmt.Sprintf("file size %d exceeds maximum allowed size %d", len(req.Data), MaxFileSize),
		}
	}
	return nil
}

// normalizeExpiry applies the permissive expiry policy: anything outside the
// supported range, including the unset zero value, becomes the default
// rather than an error.
func normalizeExpiry(seconds int) time.Duration {
	d := time.Duration(seconds) * time.Second
	if d < MinPresignExpiry || d > MaxPresignExpiry {
		return DefaultPresignExpiry
	}
	return d
}
