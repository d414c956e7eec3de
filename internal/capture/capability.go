package capture

import (
	"context"
	"io"
	"os"

	"github.com/vbonduro/fieldinspect/internal/domain"
)

// Permission is a device permission the capture flow depends on.
type Permission string

const (
	PermissionCamera       Permission = "camera"
	PermissionLocation     Permission = "location"
	PermissionMediaLibrary Permission = "media-library"
)

// Permissions asks the platform for a permission. A refusal is (false, nil).
type Permissions interface {
	Request(ctx context.Context, p Permission) (bool, error)
}

// Shot is one image produced by the camera at a transient location.
type Shot interface {
	Open() (io.ReadCloser, error)
}

// Camera runs the platform capture flow. It returns domain.ErrCaptureCancelled
// when the user backs out.
type Camera interface {
	Capture(ctx context.Context) ([]Shot, error)
}

// Locator returns the current foreground location.
type Locator interface {
	Current(ctx context.Context) (domain.Location, error)
}

// Devices bundles the capabilities used by one capture.
type Devices struct {
	Permissions Permissions
	Camera      Camera
	Locator     Locator
}

// FileShot is a shot already written to a temporary file.
type FileShot string

func (f FileShot) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// Granted is a Permissions that allows everything except the listed
// permissions.
type Granted struct {
	Denied []Permission
}

func (g Granted) Request(_ context.Context, p Permission) (bool, error) {
	for _, d := range g.Denied {
		if d == p {
			return false, nil
		}
	}
	return true, nil
}

// FixedLocator always reports the same location.
type FixedLocator domain.Location

func (l FixedLocator) Current(context.Context) (domain.Location, error) {
	return domain.Location(l), nil
}
