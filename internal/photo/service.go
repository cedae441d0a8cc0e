package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/storage"
)

const (
	// DefaultMaxSize bounds uploads at 5 MiB.
	DefaultMaxSize = 5 << 20

	thumbnailSize = 200
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ContentType maps a stored path to its MIME type by extension.
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for ct, e := range allowedTypes {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}

type Service interface {
	// Upload stores the original under prefix and a JPEG thumbnail beside it.
	Upload(ctx context.Context, prefix string, in UploadInput) (*Photo, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, p *Photo)
}

type service struct {
	storage storage.Storage
	imgProc *storage.ImageProcessor
	maxSize int64
	logger  *zap.Logger
}

func NewService(store storage.Storage, maxSize int64, logger *zap.Logger) Service {
	return &service{
		storage: store,
		imgProc: storage.NewImageProcessor(thumbnailSize, thumbnailSize),
		maxSize: maxSize,
		logger:  logger,
	}
}

func (s *service) Upload(ctx context.Context, prefix string, in UploadInput) (*Photo, error) {
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, ErrNotImage
	}
	if in.Size > s.maxSize {
		return nil, ErrTooLarge
	}

	// One extra byte detects a lying Size.
	content, err := io.ReadAll(io.LimitReader(in.Content, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return nil, ErrTooLarge
	}

	// Decoding for the thumbnail doubles as content validation.
	thumb, err := s.imgProc.Thumbnail(bytes.NewReader(content))
	if err != nil {
		return nil, ErrNotImage
	}

	// Sharding path: <prefix>/ab/UUID.ext
	id := uuid.New().String()
	dir := filepath.ToSlash(filepath.Join(prefix, id[:2]))
	p := &Photo{
		Path:          dir + "/" + id + ext,
		ThumbnailPath: dir + "/" + id + "_thumb.jpg",
		ContentType:   contentType,
		Size:          int64(len(content)),
	}

	if err := s.storage.Save(ctx, p.Path, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	if err := s.storage.Save(ctx, p.ThumbnailPath, thumb); err != nil {
		_ = s.storage.Delete(ctx, p.Path)
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return p, nil
}

func (s *service) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, ErrNotFound
	}
	rc, err := s.storage.Get(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rc, err
}

// Delete removes both files. Failures are logged only.
func (s *service) Delete(ctx context.Context, p *Photo) {
	if p == nil {
		return
	}
	for _, path := range []string{p.Path, p.ThumbnailPath} {
		if path == "" {
			continue
		}
		if err := s.storage.Delete(ctx, path); err != nil {
			s.logger.Warn("failed to delete photo file", zap.String("path", path), zap.Error(err))
		}
	}
}
