package app

import (
	"context"
	"errors"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/comment"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// userFinder is the read side of user.Service.
type userFinder interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// userDirectory exposes users to the booking and comment modules.
type userDirectory struct {
	users userFinder
}

func (d userDirectory) FindByID(ctx context.Context, id string) (*booking.UserInfo, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, booking.ErrUserNotFound
		}
		return nil, err
	}
	return &booking.UserInfo{ID: u.ID, Name: u.Name}, nil
}

func (d userDirectory) AuthorName(ctx context.Context, id string) (string, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", comment.ErrAuthorNotFound
		}
		return "", err
	}
	return u.Name, nil
}

// itemFinder is satisfied by item.Repository.
type itemFinder interface {
	GetByID(ctx context.Context, id string) (*item.Item, error)
}

// itemDirectory exposes items to the booking and comment modules.
type itemDirectory struct {
	items itemFinder
}

func (d itemDirectory) FindByID(ctx context.Context, id string) (*booking.ItemInfo, error) {
	it, err := d.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, booking.ErrItemNotFound
		}
		return nil, err
	}
	info := it.Info()
	return &info, nil
}

func (d itemDirectory) CheckItem(ctx context.Context, id string) error {
	if _, err := d.items.GetByID(ctx, id); err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return comment.ErrItemNotFound
		}
		return err
	}
	return nil
}
