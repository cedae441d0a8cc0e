package comment

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrTextRequired   = apperror.New(http.StatusBadRequest, "comment text is required")
	ErrNotEligible    = apperror.New(http.StatusBadRequest, "only users who finished an approved booking of the item can comment")
	ErrAuthorNotFound = apperror.New(http.StatusNotFound, "user not found")
	ErrItemNotFound   = apperror.New(http.StatusNotFound, "item not found")
)

type Comment struct {
	ID         string
	ItemID     string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}
