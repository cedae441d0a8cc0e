package photo

import (
	"io"
	"net/http"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotImage = apperror.New(http.StatusBadRequest, "file must be a JPEG, PNG or GIF image")
	ErrTooLarge = apperror.New(http.StatusRequestEntityTooLarge, "file is too large")
	ErrNotFound = apperror.New(http.StatusNotFound, "photo not found")
)

// Photo locates a stored original and its thumbnail.
type Photo struct {
	Path          string
	ThumbnailPath string
	ContentType   string
	Size          int64
}

// UploadInput is an image as received from a client.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
