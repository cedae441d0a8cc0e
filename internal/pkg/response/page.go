package response

// ListResponse is the standard wrapper for offset-paginated list endpoints.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	From  int `json:"from"`
	Size  int `json:"size"`
}

// NewListResponse is a helper to quickly create a response
func NewListResponse[T any](items []T, from, size int) ListResponse[T] {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	return ListResponse[T]{
		Items: items,
		From:  from,
		Size:  size,
	}
}
