// Package media stores uploaded meal images and hands back the public path
// under which each one is served.
package media

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/krishkalaria12/foodies/models"
)

// uploadPath is the object prefix used by the bucket backends.
const uploadPath = "images/"

// Persister writes an image to durable storage. Store never overwrites an
// existing artifact; Remove deletes one written by Store.
type Persister interface {
	Store(ctx context.Context, img *models.Image) (string, error)
	Remove(ctx context.Context, path string) error
}

// objectName builds a random file name that keeps the image's extension.
func objectName(img *models.Image) string {
	return uuid.NewString() + extension(img)
}

// contentType prefers sniffing the bytes over the client-declared type.
func contentType(img *models.Image) string {
	if len(img.Data) > 0 {
		if sniffed := http.DetectContentType(img.Data); sniffed != "application/octet-stream" {
			return sniffed
		}
	}
	if img.ContentType != "" {
		return img.ContentType
	}
	return "application/octet-stream"
}

func extension(img *models.Image) string {
	ct, _, _ := mime.ParseMediaType(contentType(img))

	switch ct {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}

	if ext := strings.ToLower(filepath.Ext(img.Filename)); isSafeExt(ext) {
		return ext
	}
	if ct != "application/octet-stream" {
		if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			return exts[0]
		}
	}
	return ".bin"
}

func isSafeExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
