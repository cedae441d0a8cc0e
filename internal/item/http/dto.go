package http

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/comment"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
)

// ItemTag is a brief representation of an item.
type ItemTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ItemResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Available    bool      `json:"available"`
	RequestID    *string   `json:"request_id"`
	PhotoURL     *string   `json:"photo_url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// BookingShort is a booking as embedded in an item view.
type BookingShort struct {
	ID       string    `json:"id"`
	BookerID string    `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type CommentResponse struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

type ItemDetailResponse struct {
	ItemResponse
	LastBooking *BookingShort     `json:"last_booking"`
	NextBooking *BookingShort     `json:"next_booking"`
	Comments    []CommentResponse `json:"comments"`
}

func photoURL(it *item.Item, thumbnail bool) *string {
	if it.PhotoPath == nil {
		return nil
	}
	u := "/v1/items/" + it.ID + "/photo"
	if thumbnail {
		u += "?thumbnail=true"
	}
	return &u
}

func NewItemResponse(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:           it.ID,
		Name:         it.Name,
		Description:  it.Description,
		Available:    it.Available,
		RequestID:    it.RequestID,
		PhotoURL:     photoURL(it, false),
		ThumbnailURL: photoURL(it, true),
		CreatedAt:    it.CreatedAt,
	}
}

func newBookingShort(b *booking.Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}

func NewCommentResponse(c *comment.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    c.CreatedAt,
	}
}

func NewItemDetailResponse(d *item.Detail) ItemDetailResponse {
	comments := make([]CommentResponse, len(d.Comments))
	for i, c := range d.Comments {
		comments[i] = NewCommentResponse(c)
	}
	return ItemDetailResponse{
		ItemResponse: NewItemResponse(d.Item),
		LastBooking:  newBookingShort(d.LastBooking),
		NextBooking:  newBookingShort(d.NextBooking),
		Comments:     comments,
	}
}

type CreateItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Available   *bool   `json:"available" binding:"required"`
	RequestID   *string `json:"request_id" binding:"omitempty,uuid"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type SearchItemsRequest struct {
	request.PageParams
	Text string `form:"text"`
}

type PhotoRequest struct {
	Thumbnail bool `form:"thumbnail"`
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}
