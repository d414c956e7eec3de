package photostore

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound = errors.New("photo not found")
	ErrExists   = errors.New("photo already exists")
)

// PhotoStore is the application-private photo directory. Names are chosen by
// the caller; Put never overwrites.
type PhotoStore interface {
	Put(ctx context.Context, name string, r io.Reader) (uri string, err error)
	Get(ctx context.Context, name string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, name string) error
}
