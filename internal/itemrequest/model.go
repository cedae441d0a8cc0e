package itemrequest

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "item request not found")
	ErrRequestorNotFound   = apperror.New(http.StatusNotFound, "user not found")
	ErrDescriptionRequired = apperror.New(http.StatusBadRequest, "description is required")
	ErrInvalidPage         = apperror.New(http.StatusBadRequest, "from must be >= 0 and size must be > 0")
)

// ItemRequest is a user's public ask for an item nobody lists yet.
// Items holds the items other users created in answer to it.
type ItemRequest struct {
	ID          string
	Description string
	RequestorID string
	CreatedAt   time.Time
	Items       []*item.Item
}

type Page struct {
	Offset int
	Limit  int
}

func (p Page) Validate() error {
	if p.Offset < 0 || p.Limit <= 0 {
		return ErrInvalidPage
	}
	return nil
}
