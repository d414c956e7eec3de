package provider

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/fieldinspect/internal/db"
	"github.com/vbonduro/fieldinspect/internal/domain"
)

func testOpener(calls *atomic.Int32) Opener {
	return func(context.Context) (*sql.DB, error) {
		calls.Add(1)
		return db.OpenForTesting()
	}
}

func TestProviderOpsBeforeStart(t *testing.T) {
	var calls atomic.Int32
	p := New(testOpener(&calls), slog.Default())

	assert.False(t, p.Initialized())
	ops, err := p.Ops()
	assert.Nil(t, ops)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
	assert.Zero(t, calls.Load())
}

func TestProviderStartInitializesOnce(t *testing.T) {
	var calls atomic.Int32
	p := New(testOpener(&calls), slog.Default())
	t.Cleanup(func() { assert.NoError(t, p.Close()) })
	ctx := context.Background()

	p.Start(ctx)
	p.Start(ctx)
	require.NoError(t, p.Wait(ctx))
	p.Start(ctx)

	assert.True(t, p.Initialized())
	assert.Equal(t, int32(1), calls.Load())

	ops, err := p.Ops()
	require.NoError(t, err)

	id, err := ops.Add(ctx, "Иванов И.И.")
	require.NoError(t, err)
	assert.NotZero(t, id)

	inspectors, err := ops.List(ctx)
	require.NoError(t, err)
	assert.Len(t, inspectors, 1)
}

func TestProviderInitFailure(t *testing.T) {
	cause := errors.New("read-only filesystem")
	p := New(func(context.Context) (*sql.DB, error) { return nil, cause }, slog.Default())
	ctx := context.Background()

	p.Start(ctx)
	err := p.Wait(ctx)

	var initErr *domain.StoreInitError
	require.ErrorAs(t, err, &initErr)
	assert.ErrorIs(t, err, cause)
	assert.False(t, p.Initialized())

	_, err = p.Ops()
	assert.ErrorAs(t, err, &initErr)
	assert.NoError(t, p.Close())
}

func TestProviderOpsWhileInitializing(t *testing.T) {
	release := make(chan struct{})
	p := New(func(context.Context) (*sql.DB, error) {
		<-release
		return db.OpenForTesting()
	}, slog.Default())
	t.Cleanup(func() { _ = p.Close() })
	ctx := context.Background()

	p.Start(ctx)
	_, err := p.Ops()
	assert.ErrorIs(t, err, domain.ErrNotInitialized)

	close(release)
	require.NoError(t, p.Wait(ctx))
	_, err = p.Ops()
	assert.NoError(t, err)
}

func TestProviderWaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	p := New(func(context.Context) (*sql.DB, error) {
		<-release
		return nil, errors.New("never opened")
	}, slog.Default())
	t.Cleanup(func() { close(release) })

	p.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.DeadlineExceeded)
}

func TestProviderCloseResetsState(t *testing.T) {
	var calls atomic.Int32
	p := New(testOpener(&calls), slog.Default())
	ctx := context.Background()

	p.Start(ctx)
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Close())

	assert.False(t, p.Initialized())
	_, err := p.Ops()
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}
