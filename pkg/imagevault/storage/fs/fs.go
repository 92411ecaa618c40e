// Package fs provides a filesystem blob store.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tendant/image-vault/pkg/imagevault"
)

// Backend is a filesystem implementation of the imagevault.BlobStore interface
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // Optional URL prefix for presigned-style URLs
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: config.URLPrefix,
	}, nil
}

func (b *Backend) Put(ctx context.Context, objectKey string, reader io.Reader, params imagevault.PutParams) error {
	filePath := filepath.Join(b.baseDir, objectKey)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return b.wrapError("put", objectKey, err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return b.wrapError("put", objectKey, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return b.wrapError("put", objectKey, err)
	}

	// Content type and attributes are not persisted separately; the type is
	// re-detected on read.
	return nil
}

func (b *Backend) Get(ctx context.Context, objectKey string) (io.ReadCloser, *imagevault.BlobInfo, error) {
	filePath := filepath.Join(b.baseDir, objectKey)

	stat, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, nil, imagevault.ErrBlobNotFound
	} else if err != nil {
		return nil, nil, b.wrapError("get", objectKey, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, b.wrapError("get", objectKey, err)
	}

	contentType := "application/octet-stream"
	buffer := make([]byte, 512)
	if n, err := file.Read(buffer); err == nil || err == io.EOF {
		contentType = http.DetectContentType(buffer[:n])
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, nil, b.wrapError("get", objectKey, err)
	}

	info := &imagevault.BlobInfo{
		Key:         objectKey,
		Size:        stat.Size(),
		ContentType: contentType,
	}
	return file, info, nil
}

// Delete removes a blob and prunes empty parent directories. An absent key
// is not an error; the filesystem is unversioned, so no delete marker is
// ever produced.
func (b *Backend) Delete(ctx context.Context, objectKey string) (imagevault.DeleteResult, error) {
	filePath := filepath.Join(b.baseDir, objectKey)

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return imagevault.DeleteResult{}, nil
		}
		return imagevault.DeleteResult{}, b.wrapError("delete", objectKey, err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return imagevault.DeleteResult{}, nil
}

// PresignedURL returns a URL under the configured prefix. The filesystem
// cannot sign requests, so the expiry is advisory and not enforced.
func (b *Backend) PresignedURL(ctx context.Context, objectKey string, method imagevault.PresignMethod, expires time.Duration) (string, error) {
	if b.urlPrefix == "" {
		return "", &imagevault.StorageError{
			Backend: "fs",
			Key:     objectKey,
			Op:      "presign",
			Err:     fmt.Errorf("%w: filesystem backend has no url prefix configured", imagevault.ErrStoreRejected),
		}
	}
	return fmt.Sprintf("%s/%s?expires=%d", b.urlPrefix, objectKey, int(expires.Seconds())), nil
}

// wrapError maps filesystem failures onto the library's error kinds. I/O
// faults are treated as transient.
func (b *Backend) wrapError(op, key string, err error) error {
	return &imagevault.StorageError{
		Backend: "fs",
		Key:     key,
		Op:      op,
		Err:     fmt.Errorf("%w: %v", imagevault.ErrStoreUnavailable, err),
	}
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
