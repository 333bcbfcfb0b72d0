package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopfront/internal/domain"
)

// Multipart parsing ceiling for admin uploads.
const maxUploadMemory = 32 << 20

// ImageService extracts uploaded files from a request into stored images.
type ImageService interface {
	// GetUploadedImages drains every file in the request's "images" field,
	// writes each to the image store under an opaque filename, and returns
	// the resulting Image records in received order. A request without
	// uploads yields an empty slice, not an error.
	GetUploadedImages(ctx context.Context, r *http.Request) ([]domain.Image, error)
}

// FileStore writes an uploaded file under a stored name.
type FileStore interface {
	Save(ctx context.Context, name string, contents io.Reader) error
}

// DiskFileStore keeps uploads in a flat directory.
type DiskFileStore struct {
	Dir string
}

// Save writes contents to Dir/name, creating Dir if needed.
func (d *DiskFileStore) Save(ctx context.Context, name string, contents io.Reader) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	f, err := os.Create(filepath.Join(d.Dir, name))
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, contents); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}

	return nil
}

type imageService struct {
	store  FileStore
	logger *zap.Logger
}

// NewImageService creates an ImageService backed by the given file store.
func NewImageService(store FileStore, logger *zap.Logger) ImageService {
	return &imageService{store: store, logger: logger}
}

// GetUploadedImages saves each uploaded file and returns its Image record.
// The stored filename is a fresh uuid plus the original extension; the
// original name survives only as the image description.
func (s *imageService) GetUploadedImages(ctx context.Context, r *http.Request) ([]domain.Image, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			if err == http.ErrNotMultipart {
				return []domain.Image{}, nil
			}
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
	}

	files := r.MultipartForm.File["images"]
	images := make([]domain.Image, 0, len(files))

	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %q: %w", header.Filename, err)
		}

		stored := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
		if err := s.store.Save(ctx, stored, f); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to store upload %q: %w", header.Filename, err)
		}
		f.Close()

		s.logger.Debug("Stored uploaded image",
			zap.String("original", header.Filename),
			zap.String("stored", stored),
			zap.Int64("bytes", header.Size),
		)

		images = append(images, domain.Image{
			Filename:    stored,
			Description: header.Filename,
		})
	}

	return images, nil
}
