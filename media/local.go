package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/krishkalaria12/foodies/models"
)

// Local keeps images in a directory that the HTTP server exposes under
// baseURL.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Store(ctx context.Context, img *models.Image) (string, error) {
	if img == nil {
		return "", errors.New("no image to store")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := objectName(img)
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := f.Write(img.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	return path.Join(l.baseURL, name), nil
}

func (l *Local) Remove(_ context.Context, p string) error {
	file, err := l.Resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

// Resolve maps a path returned by Store back to its file on disk.
func (l *Local) Resolve(p string) (string, error) {
	name := p
	if l.baseURL != "" {
		name = strings.TrimPrefix(p, l.baseURL+"/")
		if name == p {
			return "", fmt.Errorf("path %q is not a stored image", p)
		}
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", fmt.Errorf("path %q is not a stored image", p)
	}
	return filepath.Join(l.dir, name), nil
}
