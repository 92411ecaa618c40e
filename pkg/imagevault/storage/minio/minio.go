// Package minio provides a MinIO-backed blob store using the native MinIO
// client rather than the S3 compatibility layer.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tendant/image-vault/pkg/imagevault"
)

// Config options for the MinIO backend
type Config struct {
	Endpoint        string // host:port of the MinIO server
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	CreateBucket    bool // Create the bucket if it doesn't exist
}

// Backend is a MinIO implementation of the imagevault.BlobStore interface
type Backend struct {
	client *minio.Client
	bucket string
}

// New creates a new MinIO storage backend
func New(config Config) (*Backend, error) {
	if config.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	if config.CreateBucket {
		if err := ensureBucket(context.Background(), client, config.Bucket); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket: %w", err)
		}
	}

	return &Backend{client: client, bucket: config.Bucket}, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

func (b *Backend) Put(ctx context.Context, objectKey string, reader io.Reader, params imagevault.PutParams) error {
	// Size -1 streams with multipart; payloads here are bounded well below
	// the part size anyway.
	_, err := b.client.PutObject(ctx, b.bucket, objectKey, reader, -1, minio.PutObjectOptions{
		ContentType:  params.ContentType,
		UserMetadata: params.Metadata,
	})
	if err != nil {
		return b.wrapError("put", objectKey, err)
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, objectKey string) (io.ReadCloser, *imagevault.BlobInfo, error) {
	object, err := b.client.GetObject(ctx, b.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, b.wrapError("get", objectKey, err)
	}

	// GetObject is lazy; Stat forces the request and surfaces NoSuchKey.
	stat, err := object.Stat()
	if err != nil {
		object.Close()
		return nil, nil, b.wrapError("get", objectKey, err)
	}

	info := &imagevault.BlobInfo{
		Key:         objectKey,
		Size:        stat.Size,
		ContentType: stat.ContentType,
		Metadata:    stat.UserMetadata,
	}
	return object, info, nil
}

// Delete removes a blob. Deleting an absent key succeeds; MinIO reports no
// delete marker through this API.
func (b *Backend) Delete(ctx context.Context, objectKey string) (imagevault.DeleteResult, error) {
	if err := b.client.RemoveObject(ctx, b.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return imagevault.DeleteResult{}, b.wrapError("delete", objectKey, err)
	}
	return imagevault.DeleteResult{}, nil
}

func (b *Backend) PresignedURL(ctx context.Context, objectKey string, method imagevault.PresignMethod, expires time.Duration) (string, error) {
	var (
		u   *url.URL
		err error
	)
	switch method {
	case imagevault.PresignPut:
		u, err = b.client.PresignedPutObject(ctx, b.bucket, objectKey, expires)
	default:
		u, err = b.client.PresignedGetObject(ctx, b.bucket, objectKey, expires, url.Values{})
	}
	if err != nil {
		return "", b.wrapError("presign", objectKey, err)
	}
	return u.String(), nil
}

// wrapError maps MinIO failures onto the library's error kinds.
func (b *Backend) wrapError(op, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return imagevault.ErrBlobNotFound
	}

	kind := imagevault.ErrStoreUnavailable
	switch resp.Code {
	case "AccessDenied", "InvalidRequest", "InvalidArgument", "EntityTooLarge", "QuotaExceeded":
		kind = imagevault.ErrStoreRejected
	}

	return &imagevault.StorageError{
		Backend: "minio",
		Key:     key,
		Op:      op,
		Err:     fmt.Errorf("%w: %v", kind, err),
	}
}
