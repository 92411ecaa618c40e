package fs_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/image-vault/pkg/imagevault"
	"github.com/tendant/image-vault/pkg/imagevault/storage/fs"
)

func newBackend(t *testing.T) (*fs.Backend, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := fs.New(fs.Config{BaseDir: dir})
	require.NoError(t, err)
	return backend, dir
}

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := fs.New(fs.Config{})
	assert.Error(t, err)
}

func TestPutAndGet(t *testing.T) {
	backend, dir := newBackend(t)
	ctx := context.Background()
	data := []byte("file contents")

	err := backend.Put(ctx, "alice/1/photo.png", bytes.NewReader(data), imagevault.PutParams{})
	require.NoError(t, err)

	// Nested key components become directories on disk.
	_, err = os.Stat(filepath.Join(dir, "alice", "1", "photo.png"))
	require.NoError(t, err)

	body, info, err := backend.Get(ctx, "alice/1/photo.png")
	require.NoError(t, err)
	defer body.Close()

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, int64(len(data)), info.Size)
}

func TestGetMissingKey(t *testing.T) {
	backend, _ := newBackend(t)

	_, _, err := backend.Get(context.Background(), "absent/key")
	assert.ErrorIs(t, err, imagevault.ErrBlobNotFound)
}

func TestDeletePrunesEmptyDirectories(t *testing.T) {
	backend, dir := newBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "alice/1/photo.png", bytes.NewReader([]byte("x")), imagevault.PutParams{}))

	_, err := backend.Delete(ctx, "alice/1/photo.png")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "alice"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingKeySucceeds(t *testing.T) {
	backend, _ := newBackend(t)

	_, err := backend.Delete(context.Background(), "absent/key")
	assert.NoError(t, err)
}

func TestPutFailureMapsToStoreUnavailable(t *testing.T) {
	backend, dir := newBackend(t)
	ctx := context.Background()

	// A regular file occupying the directory slot makes the nested write fail.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice"), []byte("x"), 0644))

	err := backend.Put(ctx, "alice/1/photo.png", bytes.NewReader([]byte("x")), imagevault.PutParams{})
	assert.ErrorIs(t, err, imagevault.ErrStoreUnavailable)

	var serr *imagevault.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "fs", serr.Backend)
	assert.Equal(t, "put", serr.Op)
}

func TestPresignedURLRequiresPrefix(t *testing.T) {
	backend, _ := newBackend(t)

	_, err := backend.PresignedURL(context.Background(), "k", imagevault.PresignGet, time.Hour)
	assert.ErrorIs(t, err, imagevault.ErrStoreRejected)
}

func TestPresignedURLWithPrefix(t *testing.T) {
	dir := t.TempDir()
	backend, err := fs.New(fs.Config{BaseDir: dir, URLPrefix: "http://localhost:8080/files"})
	require.NoError(t, err)

	url, err := backend.PresignedURL(context.Background(), "alice/1/photo.png", imagevault.PresignGet, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/alice/1/photo.png?expires=3600", url)
}
