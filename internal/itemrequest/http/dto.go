package http

import (
	"time"

	itemHttp "github.com/nekogravitycat/shareit-backend/internal/item/http"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
)

type ItemRequestResponse struct {
	ID          string                  `json:"id"`
	Description string                  `json:"description"`
	RequestorID string                  `json:"requestor_id"`
	Created     time.Time               `json:"created"`
	Items       []itemHttp.ItemResponse `json:"items"`
}

func NewItemRequestResponse(req *itemrequest.ItemRequest) ItemRequestResponse {
	items := make([]itemHttp.ItemResponse, len(req.Items))
	for i, it := range req.Items {
		items[i] = itemHttp.NewItemResponse(it)
	}
	return ItemRequestResponse{
		ID:          req.ID,
		Description: req.Description,
		RequestorID: req.RequestorID,
		Created:     req.CreatedAt,
		Items:       items,
	}
}

func newItemRequestResponses(reqs []*itemrequest.ItemRequest) []ItemRequestResponse {
	out := make([]ItemRequestResponse, len(reqs))
	for i, req := range reqs {
		out[i] = NewItemRequestResponse(req)
	}
	return out
}

type CreateItemRequestRequest struct {
	Description string `json:"description" binding:"required"`
}
