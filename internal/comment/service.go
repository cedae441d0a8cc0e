package comment

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// AuthorLookup resolves a user's display name, returning ErrAuthorNotFound for unknown ids.
type AuthorLookup interface {
	AuthorName(ctx context.Context, userID string) (string, error)
}

// ItemChecker returns ErrItemNotFound for unknown items.
type ItemChecker interface {
	CheckItem(ctx context.Context, itemID string) error
}

// BookingHistory reports whether a user has an approved booking of an item that has ended.
type BookingHistory interface {
	HasFinishedBooking(ctx context.Context, userID, itemID string) (bool, error)
}

type Service interface {
	Add(ctx context.Context, authorID, itemID, text string) (*Comment, error)
	ListByItem(ctx context.Context, itemID string) ([]*Comment, error)
	// ListByItems groups comments by item id.
	ListByItems(ctx context.Context, itemIDs []string) (map[string][]*Comment, error)
}

type service struct {
	repo     Repository
	authors  AuthorLookup
	items    ItemChecker
	bookings BookingHistory
	logger   *zap.Logger
}

func NewService(repo Repository, authors AuthorLookup, items ItemChecker, bookings BookingHistory, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		authors:  authors,
		items:    items,
		bookings: bookings,
		logger:   logger,
	}
}

func (s *service) Add(ctx context.Context, authorID, itemID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}

	name, err := s.authors.AuthorName(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.items.CheckItem(ctx, itemID); err != nil {
		return nil, err
	}

	ok, err := s.bookings.HasFinishedBooking(ctx, authorID, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotEligible
	}

	c := &Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: name,
		Text:       text,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("comment added", zap.String("comment_id", c.ID), zap.String("item_id", itemID))
	return c, nil
}

func (s *service) ListByItem(ctx context.Context, itemID string) ([]*Comment, error) {
	return s.repo.ListByItems(ctx, []string{itemID})
}

func (s *service) ListByItems(ctx context.Context, itemIDs []string) (map[string][]*Comment, error) {
	comments, err := s.repo.ListByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]*Comment, len(itemIDs))
	for _, c := range comments {
		grouped[c.ItemID] = append(grouped[c.ItemID], c)
	}
	return grouped, nil
}
