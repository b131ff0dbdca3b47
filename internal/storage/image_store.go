package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// allowed content types for product images.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// MaxImageSize caps product image uploads at 5 MB.
const MaxImageSize = 5 * 1024 * 1024

const objectPrefix = "shop-nexus/products"

// ImageStore uploads product images to a Cloud Storage bucket and hands back
// a durable public URL. Only the admin product-edit flow touches it.
type ImageStore struct {
	client *gcs.Client
	bucket string
}

func NewImageStore(ctx context.Context, bucket string) (*ImageStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client error: %w", err)
	}
	return &ImageStore{client: client, bucket: bucket}, nil
}

// Upload validates type and size, streams the image into the bucket and
// returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, contentType string, size int64, body io.Reader) (string, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	if size > MaxImageSize {
		return "", fmt.Errorf("image exceeds %d byte limit", MaxImageSize)
	}

	objectName := fmt.Sprintf("%s/%s%s", objectPrefix, uuid.New(), ext)

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, io.LimitReader(body, MaxImageSize)); err != nil {
		w.Close()
		return "", fmt.Errorf("image upload error: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("image upload error: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}

func (s *ImageStore) Close() error {
	return s.client.Close()
}
