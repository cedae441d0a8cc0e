package item

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/comment"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "item not found")
	ErrNotOwner            = apperror.New(http.StatusNotFound, "item not found")
	ErrOwnerNotFound       = apperror.New(http.StatusNotFound, "user not found")
	ErrRequestNotFound     = apperror.New(http.StatusNotFound, "item request not found")
	ErrNameRequired        = apperror.New(http.StatusBadRequest, "name is required")
	ErrDescriptionRequired = apperror.New(http.StatusBadRequest, "description is required")
)

type Item struct {
	ID            string
	OwnerID       string
	Name          string
	Description   string
	Available     bool
	RequestID     *string
	PhotoPath     *string
	ThumbnailPath *string
	CreatedAt     time.Time
}

// Info projects the item for the booking engine.
func (i *Item) Info() booking.ItemInfo {
	return booking.ItemInfo{
		ID:        i.ID,
		OwnerID:   i.OwnerID,
		Name:      i.Name,
		Available: i.Available,
	}
}

// Detail is an item as its detail view shows it. Derived bookings are only
// filled in for the owner.
type Detail struct {
	*Item
	LastBooking *booking.Booking
	NextBooking *booking.Booking
	Comments    []*comment.Comment
}

type CreateRequest struct {
	Name        string
	Description string
	Available   bool
	RequestID   *string
}

// UpdateRequest holds a partial update. Nil means unchanged.
type UpdateRequest struct {
	Name        *string
	Description *string
	Available   *bool
}

type Page struct {
	Offset int
	Limit  int
}
