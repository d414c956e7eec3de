package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/fieldinspect/internal/capture"
	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/entry"
	"github.com/vbonduro/fieldinspect/internal/metrics"
	"github.com/vbonduro/fieldinspect/internal/photostore/local"
	"github.com/vbonduro/fieldinspect/internal/report"
	"github.com/vbonduro/fieldinspect/internal/share"
)

var sessionNow = time.Date(2024, 5, 14, 9, 30, 15, 0, time.UTC)

type memShot string

func (m memShot) Open() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader([]byte(m))), nil }

type stubCamera struct {
	shots []capture.Shot
	err   error
}

func (c stubCamera) Capture(context.Context) ([]capture.Shot, error) { return c.shots, c.err }

type testEnv struct {
	svc       *InspectionService
	metrics   *metrics.Metrics
	photoDir  string
	reportDir string
	outbox    string
}

func newTestInspectionService(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		photoDir:  filepath.Join(root, "photos"),
		reportDir: filepath.Join(root, "reports"),
		outbox:    filepath.Join(root, "outbox"),
		metrics:   metrics.New(),
	}
	clock := func() time.Time { return sessionNow }

	photos, err := local.NewLocalPhotoStore(env.photoDir)
	require.NoError(t, err)
	sharer, err := share.NewLocal(env.outbox)
	require.NoError(t, err)

	capturer := capture.NewCapturer(photos, slog.Default(), capture.WithClock(clock))
	exporter := report.NewExporter(env.reportDir, report.Text{}, sharer, slog.Default()).WithClock(clock)
	env.svc = NewInspectionService(entry.NewSession(clock), capturer, exporter, env.metrics, slog.Default())
	return env
}

func devices(shots ...capture.Shot) capture.Devices {
	return capture.Devices{
		Permissions: capture.Granted{},
		Camera:      stubCamera{shots: shots},
		Locator:     capture.FixedLocator{Latitude: 56.85, Longitude: 35.9},
	}
}

func fillDraft(t *testing.T, svc *InspectionService) {
	t.Helper()
	_, err := svc.UpdateDraft(func(d *entry.Draft) error {
		d.Settlement = "Тверь"
		d.Street = "Советская"
		d.House = "12"
		d.Apartment = "34"
		d.MeterNumber = "00123"
		d.Inspector1 = "Иванов И.И."
		return nil
	})
	require.NoError(t, err)
	_, err = svc.SetWorkType(domain.WorkDisconnect)
	require.NoError(t, err)
	_, err = svc.SetWorkResult(domain.ResultNoAccess)
	require.NoError(t, err)
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestWorkTypeSwitchClearsResult(t *testing.T) {
	env := newTestInspectionService(t)
	svc := env.svc

	_, err := svc.SetWorkType(domain.WorkDisconnect)
	require.NoError(t, err)
	_, err = svc.SetWorkResult(domain.ResultNoAccess)
	require.NoError(t, err)

	d, err := svc.SetWorkType(domain.WorkRestrict)
	require.NoError(t, err)
	assert.Empty(t, d.WorkResult())

	_, err = svc.SetWorkResult(domain.ResultNoAccess)
	assert.ErrorIs(t, err, domain.ErrResultNotAllowed)
	d = svc.Draft()
	assert.Equal(t, domain.WorkRestrict, d.WorkType())
	assert.Empty(t, d.WorkResult())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ValidationFailures.WithLabelValues("update_draft")))
}

func TestCapturePhotosAttachesToDraft(t *testing.T) {
	env := newTestInspectionService(t)
	fillDraft(t, env.svc)
	ctx := context.Background()

	d, err := env.svc.CapturePhotos(ctx, devices(memShot("a"), memShot("b")))
	require.NoError(t, err)
	require.Len(t, d.PhotoURIs, 2)
	assert.Contains(t, filepath.Base(d.PhotoURIs[0]), "_дверь_")

	d, err = env.svc.CapturePhotos(ctx, devices(memShot("c")))
	require.NoError(t, err)
	require.Len(t, d.PhotoURIs, 3)
	assert.Equal(t, "_03.jpg", d.PhotoURIs[2][len(d.PhotoURIs[2])-7:])

	assert.Equal(t, 6, countFiles(t, env.photoDir))
	assert.Equal(t, 3.0, testutil.ToFloat64(env.metrics.PhotosCaptured))
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.Captures.WithLabelValues(metrics.OutcomeOK)))
}

func TestCapturePhotosDeniedAndCancelled(t *testing.T) {
	env := newTestInspectionService(t)
	fillDraft(t, env.svc)
	ctx := context.Background()

	dev := devices(memShot("a"))
	dev.Permissions = capture.Granted{Denied: []capture.Permission{capture.PermissionCamera}}
	d, err := env.svc.CapturePhotos(ctx, dev)
	var perr *domain.PermissionDeniedError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, d.PhotoURIs)

	_, err = env.svc.CapturePhotos(ctx, devices())
	assert.ErrorIs(t, err, domain.ErrCaptureCancelled)

	assert.Equal(t, 0, countFiles(t, env.photoDir))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Captures.WithLabelValues(metrics.OutcomeDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Captures.WithLabelValues(metrics.OutcomeCancelled)))
}

func TestRemovePhotoDeletesFiles(t *testing.T) {
	env := newTestInspectionService(t)
	fillDraft(t, env.svc)
	ctx := context.Background()

	_, err := env.svc.CapturePhotos(ctx, devices(memShot("a"), memShot("b")))
	require.NoError(t, err)

	d, err := env.svc.RemovePhoto(ctx, 0)
	require.NoError(t, err)
	require.Len(t, d.PhotoURIs, 1)
	assert.Equal(t, 2, countFiles(t, env.photoDir))

	_, err = env.svc.RemovePhoto(ctx, 7)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestResetDiscardsPendingPhotos(t *testing.T) {
	env := newTestInspectionService(t)
	fillDraft(t, env.svc)
	ctx := context.Background()

	_, err := env.svc.CapturePhotos(ctx, devices(memShot("a")))
	require.NoError(t, err)

	d := env.svc.Reset(ctx)
	assert.Empty(t, d.PhotoURIs)
	assert.Empty(t, d.Settlement)
	assert.Equal(t, "14.05.2024", d.WorkDate)
	assert.Equal(t, 0, countFiles(t, env.photoDir))
}

// blockingCamera hands over its shots only once release is closed.
type blockingCamera struct {
	shots   []capture.Shot
	started chan struct{}
	release chan struct{}
}

func (c *blockingCamera) Capture(ctx context.Context) ([]capture.Shot, error) {
	close(c.started)
	<-c.release
	return c.shots, nil
}

func TestResetWaitsForInFlightCapture(t *testing.T) {
	env := newTestInspectionService(t)
	fillDraft(t, env.svc)
	ctx := context.Background()

	cam := &blockingCamera{
		shots:   []capture.Shot{memShot("a")},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	dev := devices()
	dev.Camera = cam

	captured := make(chan entry.Draft, 1)
	go func() {
		d, err := env.svc.CapturePhotos(ctx, dev)
		assert.NoError(t, err)
		captured <- d
	}()
	<-cam.started

	reset := make(chan entry.Draft, 1)
	go func() { reset <- env.svc.Reset(ctx) }()

	select {
	case <-reset:
		t.Fatal("reset finished while a capture was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(cam.release)

	withPhotos := <-captured
	assert.Len(t, withPhotos.PhotoURIs, 1)
	assert.Equal(t, "Тверь", withPhotos.Settlement)

	fresh := <-reset
	assert.Empty(t, fresh.PhotoURIs)
	assert.Empty(t, env.svc.Draft().PhotoURIs)
	assert.Equal(t, 0, countFiles(t, env.photoDir))
}

func TestSubmitKeepsPhotosAndResetsDraft(t *testing.T) {
	env := newTestInspectionService(t)
	fillDraft(t, env.svc)
	ctx := context.Background()

	_, err := env.svc.CapturePhotos(ctx, devices(memShot("a")))
	require.NoError(t, err)

	e, err := env.svc.Submit()
	require.NoError(t, err)
	assert.Equal(t, domain.AccessDenied, e.Access)
	assert.Len(t, e.PhotoURIs, 1)
	assert.Equal(t, sessionNow, e.Timestamp)

	assert.Empty(t, env.svc.Draft().Settlement)
	assert.Len(t, env.svc.Entries(), 1)
	assert.Equal(t, 2, countFiles(t, env.photoDir))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.EntriesSubmitted))
}

func TestSubmitValidationFailure(t *testing.T) {
	env := newTestInspectionService(t)

	_, err := env.svc.Submit()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "settlement")
	assert.Contains(t, verr.Fields, "inspector")
	assert.Empty(t, env.svc.Entries())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ValidationFailures.WithLabelValues("submit")))
}

func TestExport(t *testing.T) {
	env := newTestInspectionService(t)
	ctx := context.Background()

	_, err := env.svc.Export(ctx)
	assert.ErrorIs(t, err, domain.ErrNoEntries)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Exports.WithLabelValues(metrics.OutcomeEmpty)))

	fillDraft(t, env.svc)
	_, err = env.svc.Submit()
	require.NoError(t, err)

	res, err := env.svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, filepath.Join(env.reportDir, "Отчет_14052024_0930.txt"), res.Path)
	assert.Equal(t, 1, countFiles(t, env.outbox))
	assert.Len(t, env.svc.Entries(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Exports.WithLabelValues(metrics.OutcomeOK)))
}
