// Package storage persists uploaded files and hands back a stable reference.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for files that are not images.
var ErrUnsupportedType = errors.New("unsupported file type")

//go:generate mockgen -destination=mock/mock_storage.go -package=mock_storage . Storage

type Storage interface {
	// Save writes r under dir and returns the public reference of the file.
	Save(ctx context.Context, dir, filename string, r io.Reader) (string, error)
	// Delete removes a file previously returned by Save. Missing files are not an error.
	Delete(ctx context.Context, ref string) error
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// CleanImageName normalizes an uploaded image name: spaces become
// underscores and repeated image extensions ("a.jpg.jpg") collapse.
func CleanImageName(name string) (base, ext string, err error) {
	name = filepath.Base(name)
	ext = strings.ToLower(filepath.Ext(name))
	if !imageExts[ext] {
		return "", "", ErrUnsupportedType
	}
	base = strings.TrimSuffix(name, filepath.Ext(name))
	for {
		e := strings.ToLower(filepath.Ext(base))
		if e == "" || !imageExts[e] {
			break
		}
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = strings.ReplaceAll(strings.TrimSpace(base), " ", "_")
	if base == "" || base == "." {
		base = "image"
	}
	return base, ext, nil
}
