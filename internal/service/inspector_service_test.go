package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/fieldinspect/internal/db"
	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/metrics"
	"github.com/vbonduro/fieldinspect/internal/provider"
)

func newTestInspectorService(t *testing.T) (*InspectorService, *metrics.Metrics) {
	t.Helper()
	p := provider.New(func(context.Context) (*sql.DB, error) { return db.OpenForTesting() }, slog.Default())
	p.Start(context.Background())
	require.NoError(t, p.Wait(context.Background()))
	t.Cleanup(func() { _ = p.Close() })

	m := metrics.New()
	return NewInspectorService(p, m, slog.Default()), m
}

func TestInspectorServiceAddTrimsName(t *testing.T) {
	svc, m := newTestInspectorService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, "  Иванов И.И.  ")
	require.NoError(t, err)
	assert.Positive(t, id)

	names, err := svc.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Иванов И.И."}, names)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InspectorChanges.WithLabelValues("add")))
}

func TestInspectorServiceRejectsBlankName(t *testing.T) {
	svc, m := newTestInspectorService(t)

	_, err := svc.Add(context.Background(), "   ")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name"}, verr.Fields)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("add_inspector")))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInspectorServiceRemove(t *testing.T) {
	svc, _ := newTestInspectorService(t)
	ctx := context.Background()

	a, err := svc.Add(ctx, "A")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "B")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, a))
	require.NoError(t, svc.Remove(ctx, 9999))

	names, err := svc.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, names)
}

type fixedSource struct{ err error }

func (f fixedSource) Ops() (provider.Ops, error) { return nil, f.err }

func TestInspectorServiceUnavailableStore(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not initialized", domain.ErrNotInitialized},
		{"init failed", &domain.StoreInitError{Err: errors.New("disk full")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewInspectorService(fixedSource{err: tt.err}, metrics.New(), slog.Default())
			ctx := context.Background()

			_, err := svc.List(ctx)
			assert.True(t, Unavailable(err))
			_, err = svc.Add(ctx, "A")
			assert.True(t, Unavailable(err))
			assert.True(t, Unavailable(svc.Remove(ctx, 1)))
		})
	}
}

func TestUnavailable(t *testing.T) {
	assert.False(t, Unavailable(nil))
	assert.False(t, Unavailable(errors.New("other")))
}
