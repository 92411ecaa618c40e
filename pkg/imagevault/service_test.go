package imagevault_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/image-vault/pkg/imagevault"
	"github.com/tendant/image-vault/pkg/imagevault/repo/memory"
	memorystorage "github.com/tendant/image-vault/pkg/imagevault/storage/memory"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []imagevault.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []imagevault.Option{},
			expectError: true,
		},
		{
			name: "repository only should fail",
			options: []imagevault.Option{
				imagevault.WithRepository(memory.New()),
			},
			expectError: true,
		},
		{
			name: "repository and blob store should succeed",
			options: []imagevault.Option{
				imagevault.WithRepository(memory.New()),
				imagevault.WithBlobStore(memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := imagevault.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func setupTestService(t *testing.T) imagevault.Service {
	t.Helper()

	svc, err := imagevault.New(
		imagevault.WithRepository(memory.New()),
		imagevault.WithBlobStore(memorystorage.New()),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc
}

func uploadTestImage(t *testing.T, svc imagevault.Service, owner, fileName, description string) *imagevault.Image {
	t.Helper()

	result, err := svc.UploadImage(context.Background(), imagevault.UploadImageRequest{
		OwnerID:     owner,
		FileName:    fileName,
		Data:        []byte("test image data"),
		Description: description,
	})
	require.NoError(t, err)
	return result.Image
}

func TestUploadImage(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	data := []byte("fake png bytes")
	result, err := svc.UploadImage(ctx, imagevault.UploadImageRequest{
		OwnerID:     "user-1",
		FileName:    "vacation.png",
		Data:        data,
		Description: "beach photo",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Image)

	image := result.Image
	assert.NotEqual(t, uuid.Nil, image.ID)
	assert.Equal(t, "user-1", image.OwnerID)
	assert.Equal(t, "vacation.png", image.FileName)
	assert.Equal(t, "image/png", image.ContentType)
	assert.Equal(t, int64(len(data)), image.FileSize)
	assert.NotZero(t, image.UploadedAt)
	assert.Equal(t, fmt.Sprintf("user-1/%s/vacation.png", image.ID), image.ObjectKey)
	assert.Equal(t, "beach photo", image.Description)
	assert.NotEmpty(t, result.DownloadURL)

	// Round trip: the bytes come back unchanged.
	fetched, err := svc.GetImage(ctx, imagevault.GetImageRequest{ID: image.ID, Mode: imagevault.FetchData})
	require.NoError(t, err)
	assert.Equal(t, data, fetched.Data)
	assert.Equal(t, "image/png", fetched.ContentType)
}

func TestUploadImageValidation(t *testing.T) {
	tests := []struct {
		name string
		req  imagevault.UploadImageRequest
	}{
		{
			name: "missing owner",
			req:  imagevault.UploadImageRequest{FileName: "a.png", Data: []byte("x")},
		},
		{
			name: "missing filename",
			req:  imagevault.UploadImageRequest{OwnerID: "user-1", Data: []byte("x")},
		},
		{
			name: "disallowed extension",
			req:  imagevault.UploadImageRequest{OwnerID: "user-1", FileName: "malware.exe", Data: []byte("x")},
		},
		{
			name: "no extension",
			req:  imagevault.UploadImageRequest{OwnerID: "user-1", FileName: "photo", Data: []byte("x")},
		},
		{
			name: "oversized payload",
			req: imagevault.UploadImageRequest{
				OwnerID:  "user-1",
				FileName: "big.jpg",
				Data:     make([]byte, imagevault.MaxFileSize+1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &recordingRepository{Repository: memory.New()}
			store := &recordingBlobStore{BlobStore: memorystorage.New()}
			svc, err := imagevault.New(
				imagevault.WithRepository(repo),
				imagevault.WithBlobStore(store),
			)
			require.NoError(t, err)

			result, err := svc.UploadImage(context.Background(), tt.req)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, imagevault.ErrInvalidRequest)

			var verr *imagevault.ValidationError
			assert.ErrorAs(t, err, &verr)

			// Rejected input must not touch either store.
			assert.Zero(t, store.puts)
			assert.Zero(t, repo.putIfAbsentCalls)
		})
	}
}

func TestUploadImageCaseInsensitiveExtension(t *testing.T) {
	svc := setupTestService(t)

	image := uploadTestImage(t, svc, "user-1", "SHOUTING.JPG", "")
	assert.Equal(t, "image/jpeg", image.ContentType)
}

func TestUploadImageMetadataConflict(t *testing.T) {
	store := memorystorage.New()
	repo := &conflictingRepository{Repository: memory.New()}
	svc, err := imagevault.New(
		imagevault.WithRepository(repo),
		imagevault.WithBlobStore(store),
	)
	require.NoError(t, err)

	result, err := svc.UploadImage(context.Background(), imagevault.UploadImageRequest{
		OwnerID:  "user-1",
		FileName: "a.png",
		Data:     []byte("x"),
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, imagevault.ErrImageExists)
}

func TestGetImageMetadata(t *testing.T) {
	svc := setupTestService(t)
	image := uploadTestImage(t, svc, "user-1", "a.png", "desc")

	result, err := svc.GetImage(context.Background(), imagevault.GetImageRequest{ID: image.ID})
	require.NoError(t, err)

	assert.Equal(t, image.ID, result.Image.ID)
	assert.Nil(t, result.Data)
	assert.Empty(t, result.PresignedURL)
}

func TestGetImageNotFound(t *testing.T) {
	svc := setupTestService(t)

	result, err := svc.GetImage(context.Background(), imagevault.GetImageRequest{ID: uuid.New()})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, imagevault.ErrImageNotFound)
}

func TestGetImageNilID(t *testing.T) {
	svc := setupTestService(t)

	result, err := svc.GetImage(context.Background(), imagevault.GetImageRequest{})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, imagevault.ErrInvalidRequest)
}

func TestGetImagePresignedExpiry(t *testing.T) {
	tests := []struct {
		name          string
		expirySeconds int
		wantSeconds   int
	}{
		{name: "unset falls back to default", expirySeconds: 0, wantSeconds: 3600},
		{name: "negative falls back to default", expirySeconds: -5, wantSeconds: 3600},
		{name: "above maximum falls back to default", expirySeconds: 999999, wantSeconds: 3600},
		{name: "in range is honored", expirySeconds: 600, wantSeconds: 600},
		{name: "minimum is honored", expirySeconds: 1, wantSeconds: 1},
		{name: "maximum is honored", expirySeconds: 86400, wantSeconds: 86400},
	}

	svc := setupTestService(t)
	image := uploadTestImage(t, svc, "user-1", "a.png", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetImage(context.Background(), imagevault.GetImageRequest{
				ID:            image.ID,
				Mode:          imagevault.FetchPresigned,
				ExpirySeconds: tt.expirySeconds,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantSeconds, result.ExpiresIn)
			assert.Contains(t, result.PresignedURL, fmt.Sprintf("expires=%d", tt.wantSeconds))
		})
	}
}

func TestDeleteImage(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	image := uploadTestImage(t, svc, "user-1", "a.png", "doomed")

	deleted, err := svc.DeleteImage(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, image.ID, deleted.ID)
	assert.Equal(t, "doomed", deleted.Description)

	_, err = svc.GetImage(ctx, imagevault.GetImageRequest{ID: image.ID})
	assert.ErrorIs(t, err, imagevault.ErrImageNotFound)
}

func TestDeleteImageNotFound(t *testing.T) {
	svc := setupTestService(t)

	deleted, err := svc.DeleteImage(context.Background(), uuid.New())
	assert.Nil(t, deleted)
	assert.ErrorIs(t, err, imagevault.ErrImageNotFound)
}

func TestDeleteImageBlobFailureKeepsRecord(t *testing.T) {
	store := &failingDeleteBlobStore{BlobStore: memorystorage.New()}
	svc, err := imagevault.New(
		imagevault.WithRepository(memory.New()),
		imagevault.WithBlobStore(store),
	)
	require.NoError(t, err)

	ctx := context.Background()
	image := uploadTestImage(t, svc, "user-1", "a.png", "")

	deleted, err := svc.DeleteImage(ctx, image.ID)
	assert.Nil(t, deleted)
	assert.ErrorIs(t, err, imagevault.ErrStoreUnavailable)

	// Fail-closed: the record survives and the image stays readable.
	result, err := svc.GetImage(ctx, imagevault.GetImageRequest{ID: image.ID, Mode: imagevault.FetchData})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Data)
}

func TestUploadTimestampUsesClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, err := imagevault.New(
		imagevault.WithRepository(memory.New()),
		imagevault.WithBlobStore(memorystorage.New()),
		imagevault.WithClock(func() time.Time { return fixed }),
	)
	require.NoError(t, err)

	image := uploadTestImage(t, svc, "user-1", "a.png", "")
	assert.Equal(t, fixed.Unix(), image.UploadedAt)
}

func TestEventSinkFailureDoesNotFailOperation(t *testing.T) {
	svc, err := imagevault.New(
		imagevault.WithRepository(memory.New()),
		imagevault.WithBlobStore(memorystorage.New()),
		imagevault.WithEventSink(failingEventSink{}),
	)
	require.NoError(t, err)

	image := uploadTestImage(t, svc, "user-1", "a.png", "")

	_, err = svc.DeleteImage(context.Background(), image.ID)
	assert.NoError(t, err)
}

func TestCustomObjectKeyGenerator(t *testing.T) {
	svc, err := imagevault.New(
		imagevault.WithRepository(memory.New()),
		imagevault.WithBlobStore(memorystorage.New()),
		imagevault.WithObjectKeyGenerator(stubKeyGenerator{}),
	)
	require.NoError(t, err)

	image := uploadTestImage(t, svc, "user-1", "a.png", "")
	assert.True(t, strings.HasPrefix(image.ObjectKey, "custom/"), "got key %q", image.ObjectKey)
}

// Test doubles

type recordingRepository struct {
	imagevault.Repository
	putIfAbsentCalls int
}

func (r *recordingRepository) PutIfAbsent(ctx context.Context, image *imagevault.Image) error {
	r.putIfAbsentCalls++
	return r.Repository.PutIfAbsent(ctx, image)
}

type recordingBlobStore struct {
	imagevault.BlobStore
	puts int
}

func (s *recordingBlobStore) Put(ctx context.Context, objectKey string, reader io.Reader, params imagevault.PutParams) error {
	s.puts++
	return s.BlobStore.Put(ctx, objectKey, reader, params)
}

type conflictingRepository struct {
	imagevault.Repository
}

func (r *conflictingRepository) PutIfAbsent(ctx context.Context, image *imagevault.Image) error {
	return imagevault.ErrImageExists
}

type failingDeleteBlobStore struct {
	imagevault.BlobStore
}

func (s *failingDeleteBlobStore) Delete(ctx context.Context, objectKey string) (imagevault.DeleteResult, error) {
	return imagevault.DeleteResult{}, fmt.Errorf("%w: simulated outage", imagevault.ErrStoreUnavailable)
}

type failingEventSink struct{}

func (failingEventSink) ImageUploaded(ctx context.Context, image *imagevault.Image) error {
	return errors.New("sink down")
}

func (failingEventSink) ImageDeleted(ctx context.Context, imageID uuid.UUID) error {
	return errors.New("sink down")
}

type stubKeyGenerator struct{}

func (stubKeyGenerator) GenerateKey(ownerID string, imageID uuid.UUID, fileName string) string {
	return "custom/" + imageID.String()
}
