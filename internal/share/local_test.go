package share

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalShareCopiesIntoOutbox(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Отчет_14052024_0930.txt")
	require.NoError(t, os.WriteFile(src, []byte("1. report"), 0644))
	outbox := filepath.Join(t.TempDir(), "outbox")

	l, err := NewLocal(outbox)
	require.NoError(t, err)

	url, err := l.Share(context.Background(), src, "text/plain")
	require.NoError(t, err)

	dst := filepath.Join(outbox, "Отчет_14052024_0930.txt")
	assert.Equal(t, "file://"+dst, url)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "1. report", string(data))

	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestLocalShareReplacesSameName(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "r.txt")
	outbox := filepath.Join(dir, "outbox")
	l, err := NewLocal(outbox)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("first"), 0644))
	_, err = l.Share(context.Background(), src, "text/plain")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, []byte("second"), 0644))
	_, err = l.Share(context.Background(), src, "text/plain")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outbox, "r.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalShareMissingSource(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = l.Share(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Error(t, err)
}

func TestLocalShareCancelledContext(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Share(ctx, "whatever", "")
	assert.ErrorIs(t, err, context.Canceled)
}
