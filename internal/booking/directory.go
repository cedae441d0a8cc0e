package booking

import "context"

// UserInfo is the read-only projection of a user the engine needs.
type UserInfo struct {
	ID   string
	Name string
}

// ItemInfo is the read-only projection of an item the engine needs.
type ItemInfo struct {
	ID        string
	OwnerID   string
	Name      string
	Available bool
}

// UserLookup resolves users. Implementations return ErrUserNotFound for unknown ids.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*UserInfo, error)
}

// ItemLookup resolves items. Implementations return ErrItemNotFound for unknown ids.
type ItemLookup interface {
	FindByID(ctx context.Context, id string) (*ItemInfo, error)
}
