package mapview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Asset is one photo in the device library.
type Asset struct {
	Name    string
	Path    string
	ModTime time.Time
}

// Library is read access to the device photo library.
type Library interface {
	// RequestReadPermission reports whether the library may be read. A
	// refusal is (false, nil).
	RequestReadPermission(ctx context.Context) (bool, error)
	// Recent returns up to limit assets, newest first.
	Recent(ctx context.Context, limit int) ([]Asset, error)
	Open(ctx context.Context, a Asset) (io.ReadCloser, error)
}

// DirLibrary serves JPEGs from a directory tree.
type DirLibrary struct {
	root string
}

func NewDirLibrary(root string) *DirLibrary {
	return &DirLibrary{root: root}
}

// RequestReadPermission grants access when the root is a readable directory.
func (l *DirLibrary) RequestReadPermission(ctx context.Context) (bool, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat library: %w", err)
	}
	return info.IsDir(), nil
}

func (l *DirLibrary) Recent(ctx context.Context, limit int) ([]Asset, error) {
	var assets []Asset
	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isJPEG(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		assets = append(assets, Asset{Name: d.Name(), Path: p, ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan library: %w", err)
	}

	sort.SliceStable(assets, func(i, j int) bool {
		if assets[i].ModTime.Equal(assets[j].ModTime) {
			return assets[i].Name < assets[j].Name
		}
		return assets[i].ModTime.After(assets[j].ModTime)
	})
	if limit > 0 && len(assets) > limit {
		assets = assets[:limit]
	}
	return assets, nil
}

func (l *DirLibrary) Open(ctx context.Context, a Asset) (io.ReadCloser, error) {
	return os.Open(a.Path)
}

func isJPEG(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}
