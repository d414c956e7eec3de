package local

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/fieldinspect/internal/photostore"
)

func TestLocalPhotoStorePutAndGet(t *testing.T) {
	tmpdir := t.TempDir()
	store, err := NewLocalPhotoStore(tmpdir)
	require.NoError(t, err)

	ctx := context.Background()
	imageData := []byte("fake jpeg data")

	uri, err := store.Put(ctx, "Тверь_Советская_12_счетчик_14052024_093015_01.jpg", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(uri))

	reader, mimeType, err := store.Get(ctx, "Тверь_Советская_12_счетчик_14052024_093015_01.jpg")
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "image/jpeg", mimeType)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, imageData, data)

	byURI, _, err := store.Get(ctx, uri)
	require.NoError(t, err)
	_ = byURI.Close()
}

func TestLocalPhotoStorePutNeverOverwrites(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Put(ctx, "a.jpg", strings.NewReader("first"))
	require.NoError(t, err)

	_, err = store.Put(ctx, "a.jpg", strings.NewReader("second"))
	assert.ErrorIs(t, err, photostore.ErrExists)

	r, _, err := store.Get(ctx, "a.jpg")
	require.NoError(t, err)
	defer r.Close()
	data, _ := io.ReadAll(r)
	assert.Equal(t, "first", string(data))
}

func TestLocalPhotoStoreSidecarMime(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Put(ctx, "a.txt", strings.NewReader("lat=1,lon=2"))
	require.NoError(t, err)

	r, mimeType, err := store.Get(ctx, "a.txt")
	require.NoError(t, err)
	_ = r.Close()
	assert.Equal(t, "text/plain; charset=utf-8", mimeType)
}

func TestLocalPhotoStoreDelete(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	uri, err := store.Put(ctx, "a.jpg", bytes.NewReader([]byte("test data")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, uri))

	_, _, err = store.Get(ctx, "a.jpg")
	assert.ErrorIs(t, err, photostore.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "a.jpg"), photostore.ErrNotFound)
}

func TestLocalPhotoStorePathTraversal(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = store.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)

	_, err = store.Put(ctx, "../escape.jpg", strings.NewReader("x"))
	assert.Error(t, err)

	assert.Error(t, store.Delete(ctx, "/etc/passwd"))
}
