// Package mapview finds geotagged photos in the device library and renders
// them as markers on a Leaflet map.
package mapview

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// DefaultLimit is the number of recent photos scanned when none is configured.
const DefaultLimit = 100

// Geotag is the location embedded in a photo.
type Geotag struct {
	Latitude  float64
	Longitude float64
	// Taken is zero when the photo carries no capture time.
	Taken time.Time
}

// LocateFunc extracts a geotag from image bytes.
type LocateFunc func(r io.Reader) (Geotag, error)

// Marker is one photo placed on the map.
type Marker struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Label     string  `json:"label"`
	Src       string  `json:"src"`
}

type Visualizer struct {
	lib    Library
	limit  int
	locate LocateFunc
	logger *slog.Logger
}

func NewVisualizer(lib Library, limit int, logger *slog.Logger) *Visualizer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Visualizer{lib: lib, limit: limit, locate: ExifGeotag, logger: logger}
}

// WithLocator replaces EXIF decoding.
func (v *Visualizer) WithLocator(fn LocateFunc) *Visualizer {
	v.locate = fn
	return v
}

// Collect returns a marker for every recent photo that carries a location.
// A refused read permission gives an empty result and no error.
func (v *Visualizer) Collect(ctx context.Context) ([]Marker, error) {
	ok, err := v.lib.RequestReadPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to request library permission: %w", err)
	}
	if !ok {
		v.logger.Info("photo library permission denied")
		return []Marker{}, nil
	}

	assets, err := v.lib.Recent(ctx, v.limit)
	if err != nil {
		return nil, err
	}

	markers := []Marker{}
	for _, a := range assets {
		m, ok := v.marker(ctx, a)
		if ok {
			markers = append(markers, m)
		}
	}
	v.logger.Info("map markers collected", "scanned", len(assets), "markers", len(markers))
	return markers, nil
}

func (v *Visualizer) marker(ctx context.Context, a Asset) (Marker, bool) {
	rc, err := v.lib.Open(ctx, a)
	if err != nil {
		v.logger.Warn("failed to open library photo", "name", a.Name, "error", err)
		return Marker{}, false
	}
	data, err := io.ReadAll(rc)
	if cerr := rc.Close(); cerr != nil {
		v.logger.Error("failed to close library photo", "name", a.Name, "error", cerr)
	}
	if err != nil {
		v.logger.Warn("failed to read library photo", "name", a.Name, "error", err)
		return Marker{}, false
	}

	tag, err := v.locate(bytes.NewReader(data))
	if err != nil {
		v.logger.Debug("photo has no location", "name", a.Name, "error", err)
		return Marker{}, false
	}

	return Marker{
		Name:      a.Name,
		Latitude:  tag.Latitude,
		Longitude: tag.Longitude,
		Label:     label(a.Name, tag),
		Src:       "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data),
	}, true
}

func label(name string, tag Geotag) string {
	s := fmt.Sprintf("%s\n%.6f, %.6f", name, tag.Latitude, tag.Longitude)
	if !tag.Taken.IsZero() {
		s += "\n" + tag.Taken.Format("02.01.2006 15:04")
	}
	return s
}

// ExifGeotag reads GPS coordinates and the capture time from EXIF metadata.
func ExifGeotag(r io.Reader) (Geotag, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return Geotag{}, fmt.Errorf("failed to decode exif: %w", err)
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		return Geotag{}, fmt.Errorf("no gps data: %w", err)
	}
	tag := Geotag{Latitude: lat, Longitude: lon}
	if taken, err := x.DateTime(); err == nil {
		tag.Taken = taken
	}
	return tag, nil
}
