package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

// Authorization failures answer 404 so callers cannot probe for bookings they are not part of.
var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrUserNotFound     = apperror.New(http.StatusNotFound, "user not found")
	ErrItemNotFound     = apperror.New(http.StatusNotFound, "item not found")
	ErrOwnerSelfBooking = apperror.New(http.StatusNotFound, "owner cannot book own item")
	ErrNotOwner         = apperror.New(http.StatusNotFound, "only the item owner can decide on a booking")
	ErrNotParticipant   = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict     = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrItemUnavailable  = apperror.New(http.StatusBadRequest, "item is not available")
	ErrSameStatus       = apperror.New(http.StatusBadRequest, "booking already has this status")
	ErrAlreadyDecided   = apperror.New(http.StatusBadRequest, "booking has already been decided")
	ErrDecisionConflict = apperror.New(http.StatusConflict, "booking was decided concurrently, retry")
	ErrUnknownState     = apperror.New(http.StatusBadRequest, "Unknown state: UNSUPPORTED_STATUS")
	ErrInvalidPage      = apperror.New(http.StatusBadRequest, "invalid pagination parameters")
)

// ErrStatusChanged is returned by Repository.UpdateStatus when the expected status no longer holds.
var ErrStatusChanged = errors.New("booking status changed")

type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	// StatusCanceled is reserved; no transition produces it.
	StatusCanceled Status = "CANCELED"
)

type Booking struct {
	ID         string
	ItemID     string
	ItemName   string
	OwnerID    string
	BookerID   string
	BookerName string
	Start      time.Time
	End        time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Page is a row-offset window over a sorted result set.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) Validate() error {
	if p.Offset < 0 || p.Limit < 1 {
		return ErrInvalidPage
	}
	return nil
}
