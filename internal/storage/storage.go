// Package storage keeps recipe images outside the database. Recipes only
// store the reference returned by a Backend.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"foodgram/internal/apperrors"

	"github.com/google/uuid"
)

// Backend persists an object and returns its public URL.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>".
func DecodeDataURI(encoded string) (*Image, error) {
	header, payload, ok := strings.Cut(encoded, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, apperrors.Validation("image", "image must be a base64 data URI")
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	ext, ok := extensions[contentType]
	if !ok {
		return nil, apperrors.Validation("image", "unsupported image type %q", contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperrors.Validation("image", "image is not valid base64")
	}
	if len(data) == 0 {
		return nil, apperrors.Validation("image", "image is empty")
	}
	return &Image{Data: data, ContentType: contentType, Extension: ext}, nil
}

// ImageStore decodes data URI uploads and writes them to a Backend under
// recipes/<uuid>.<ext>.
type ImageStore struct {
	backend Backend
}

// NewImageStore creates a new ImageStore.
func NewImageStore(backend Backend) *ImageStore {
	return &ImageStore{backend: backend}
}

// Save stores a data URI image and returns its URL.
func (s *ImageStore) Save(ctx context.Context, encoded string) (string, error) {
	img, err := DecodeDataURI(encoded)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("recipes/%s.%s", uuid.NewString(), img.Extension)
	url, err := s.backend.Put(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}
