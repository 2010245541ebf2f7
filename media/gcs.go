package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/krishkalaria12/foodies/models"
)

// GCS uploads images to a Google Cloud Storage bucket that is readable by
// allUsers.
type GCS struct {
	cl         *storage.Client
	projectID  string
	bucketName string
	uploadPath string
}

func NewGCS(ctx context.Context, projectID, bucketName string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &GCS{
		cl:         client,
		projectID:  projectID,
		bucketName: bucketName,
		uploadPath: uploadPath,
	}, nil
}

func (g *GCS) Store(ctx context.Context, img *models.Image) (string, error) {
	if img == nil {
		return "", errors.New("no image to store")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*50)
	defer cancel()

	objectPath := g.uploadPath + objectName(img)

	// DoesNotExist makes the write fail instead of replacing an object.
	wc := g.bucket().Object(objectPath).
		If(storage.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	wc.ContentType = contentType(img)

	if _, err := io.Copy(wc, bytes.NewReader(img.Data)); err != nil {
		wc.Close()
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}

	return gcsPublicURL(g.bucketName, objectPath), nil
}

func (g *GCS) Remove(ctx context.Context, url string) error {
	objectPath, err := gcsObjectPath(g.bucketName, url)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*50)
	defer cancel()

	err = g.bucket().Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return nil
}

// bucket bills requests to projectID when one is configured.
func (g *GCS) bucket() *storage.BucketHandle {
	b := g.cl.Bucket(g.bucketName)
	if g.projectID != "" {
		b = b.UserProject(g.projectID)
	}
	return b
}

func (g *GCS) Close() error {
	return g.cl.Close()
}

func gcsPublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

func gcsObjectPath(bucket, url string) (string, error) {
	prefix := gcsPublicURL(bucket, "")
	objectPath := strings.TrimPrefix(url, prefix)
	if objectPath == url || objectPath == "" {
		return "", fmt.Errorf("url %q is not in bucket %s", url, bucket)
	}
	return objectPath, nil
}
