// Package share delivers finished reports to a destination outside the
// app's own storage.
package share

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Local copies reports into an outbox directory that another tool (mail
// client, sync agent) picks up.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create outbox directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Share copies path into the outbox, replacing a file of the same name, and
// returns the copy's file:// URL.
func (l *Local) Share(ctx context.Context, path, mime string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open report: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			slog.Error("failed to close report", "error", err)
		}
	}()

	dst := filepath.Join(l.dir, filepath.Base(path))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create outbox file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		if cerr := out.Close(); cerr != nil {
			slog.Error("failed to close outbox file after copy error", "error", cerr)
		}
		return "", fmt.Errorf("failed to copy report: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close outbox file: %w", err)
	}

	abs, err := filepath.Abs(dst)
	if err != nil {
		return "", fmt.Errorf("failed to resolve outbox path: %w", err)
	}
	return "file://" + abs, nil
}
