// Package memory provides an in-memory blob store, primarily for tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tendant/image-vault/pkg/imagevault"
)

// Backend is an in-memory implementation of the imagevault.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	info    map[string]imagevault.BlobInfo
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
		info:    make(map[string]imagevault.BlobInfo),
	}
}

func (b *Backend) Put(ctx context.Context, objectKey string, reader io.Reader, params imagevault.PutParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return &imagevault.StorageError{
			Backend: "memory",
			Key:     objectKey,
			Op:      "put",
			Err:     fmt.Errorf("%w: %v", imagevault.ErrStoreUnavailable, err),
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	contentType := params.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	metadata := make(map[string]string, len(params.Metadata))
	for k, v := range params.Metadata {
		metadata[k] = v
	}

	b.objects[objectKey] = data
	b.info[objectKey] = imagevault.BlobInfo{
		Key:         objectKey,
		Size:        int64(len(data)),
		ContentType: contentType,
		Metadata:    metadata,
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, objectKey string) (io.ReadCloser, *imagevault.BlobInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, nil, imagevault.ErrBlobNotFound
	}
	info := b.info[objectKey]
	return io.NopCloser(bytes.NewReader(data)), &info, nil
}

// Delete removes a blob. An absent key is not an error; the in-memory store
// is unversioned, so no delete marker is ever produced.
func (b *Backend) Delete(ctx context.Context, objectKey string) (imagevault.DeleteResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, objectKey)
	delete(b.info, objectKey)
	return imagevault.DeleteResult{}, nil
}

// PresignedURL returns a synthetic memory:// URL. Nothing enforces the
// expiry; the scheme exists so callers exercising the presign path have a
// URL to inspect.
func (b *Backend) PresignedURL(ctx context.Context, objectKey string, method imagevault.PresignMethod, expires time.Duration) (string, error) {
	return fmt.Sprintf("memory://%s?method=%s&expires=%d", objectKey, method, int(expires.Seconds())), nil
}
