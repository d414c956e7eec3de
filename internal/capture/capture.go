package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/entry"
	"github.com/vbonduro/fieldinspect/internal/photostore"
)

type Capturer struct {
	photos              photostore.PhotoStore
	sidecar             SidecarFormat
	requireMediaLibrary bool
	now                 func() time.Time
	logger              *slog.Logger
}

type Option func(*Capturer)

func WithSidecarFormat(f SidecarFormat) Option {
	return func(c *Capturer) { c.sidecar = f }
}

// WithMediaLibrary makes capture also require media-library permission.
func WithMediaLibrary() Option {
	return func(c *Capturer) { c.requireMediaLibrary = true }
}

func WithClock(now func() time.Time) Option {
	return func(c *Capturer) { c.now = now }
}

func NewCapturer(photos photostore.PhotoStore, logger *slog.Logger, opts ...Option) *Capturer {
	c := &Capturer{
		photos:  photos,
		sidecar: SidecarDetailed,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture takes photos for the draft's address and stores each one with a
// geotag sidecar. The location is read once for the whole batch. It returns
// the stored photo URIs in capture order.
//
// A refused permission yields *domain.PermissionDeniedError and a cancelled
// camera yields domain.ErrCaptureCancelled; neither leaves files behind, and
// neither does a failure part-way through the batch.
func (c *Capturer) Capture(ctx context.Context, dev Devices, d entry.Draft) ([]string, error) {
	required := []Permission{PermissionCamera, PermissionLocation}
	if c.requireMediaLibrary {
		required = append(required, PermissionMediaLibrary)
	}
	for _, p := range required {
		ok, err := dev.Permissions.Request(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to request %s permission: %w", p, err)
		}
		if !ok {
			return nil, &domain.PermissionDeniedError{Permission: string(p)}
		}
	}

	shots, err := dev.Camera.Capture(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCaptureCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to capture photos: %w", err)
	}
	if len(shots) == 0 {
		return nil, domain.ErrCaptureCancelled
	}

	loc, err := dev.Locator.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	at := c.now()
	address := AddressSlug(d.Settlement, d.Street, d.House, d.Apartment, d.Room)
	first := len(d.PhotoURIs) + 1

	var written []string
	uris := make([]string, 0, len(shots))
	for i, shot := range shots {
		name := PhotoName(address, d.Access(), at, first+i)

		uri, err := c.storeShot(ctx, name, shot)
		if err != nil {
			c.rollback(ctx, written)
			return nil, err
		}
		written = append(written, uri)

		sidecarURI, err := c.photos.Put(ctx, SidecarName(name), strings.NewReader(FormatSidecar(c.sidecar, loc)))
		if err != nil {
			c.rollback(ctx, written)
			return nil, fmt.Errorf("failed to write geotag for %s: %w", name, err)
		}
		written = append(written, sidecarURI)
		uris = append(uris, uri)
	}

	c.logger.Info("photos captured",
		"count", len(uris),
		"latitude", loc.Latitude,
		"longitude", loc.Longitude,
		"tag", d.Access().PhotoTag(),
	)
	return uris, nil
}

func (c *Capturer) storeShot(ctx context.Context, name string, shot Shot) (string, error) {
	rc, err := shot.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open captured photo: %w", err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			c.logger.Error("failed to close captured photo", "error", err)
		}
	}()

	uri, err := c.photos.Put(ctx, name, rc)
	if err != nil {
		return "", fmt.Errorf("failed to copy photo %s: %w", name, err)
	}
	return uri, nil
}

// Open returns a stored photo or sidecar by file name, with its MIME type.
func (c *Capturer) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	return c.photos.Get(ctx, name)
}

// Discard removes a stored photo and its sidecar.
func (c *Capturer) Discard(ctx context.Context, uri string) error {
	if err := c.photos.Delete(ctx, uri); err != nil && !errors.Is(err, photostore.ErrNotFound) {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if err := c.photos.Delete(ctx, SidecarName(uri)); err != nil && !errors.Is(err, photostore.ErrNotFound) {
		return fmt.Errorf("failed to delete geotag: %w", err)
	}
	return nil
}

func (c *Capturer) rollback(ctx context.Context, uris []string) {
	for _, uri := range uris {
		if err := c.photos.Delete(ctx, uri); err != nil {
			c.logger.Error("failed to roll back captured file", "uri", uri, "error", err)
		}
	}
}
