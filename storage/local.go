package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores files below Root and serves them under URLPrefix.
type Local struct {
	Root      string
	URLPrefix string
}

var _ Storage = (*Local)(nil)

func NewLocal(root, urlPrefix string) *Local {
	return &Local{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (l *Local) Save(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	base, ext, err := CleanImageName(filename)
	if err != nil {
		return "", err
	}
	r, err = sniffImage(r)
	if err != nil {
		return "", err
	}
	dir = filepath.Clean(filepath.Join("/", dir))[1:]

	target := filepath.Join(l.Root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", uuid.NewString()[:8], base, ext)
	full := filepath.Join(target, name)

	out, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	return l.URLPrefix + "/" + path.Join(filepath.ToSlash(dir), name), nil
}

// sniffImage rejects content that does not look like an image regardless of
// its name. The returned reader yields the whole body again.
func sniffImage(r io.Reader) (io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return nil, ErrUnsupportedType
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}

func (l *Local) Delete(ctx context.Context, ref string) error {
	if ref == "" || !strings.HasPrefix(ref, l.URLPrefix+"/") {
		return nil
	}
	rel := filepath.Clean(filepath.Join("/", filepath.FromSlash(strings.TrimPrefix(ref, l.URLPrefix+"/"))))
	err := os.Remove(filepath.Join(l.Root, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
