package item

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/comment"
	"github.com/nekogravitycat/shareit-backend/internal/photo"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// OwnerLookup is satisfied by user.Service.
type OwnerLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// RequestChecker reports whether an item request exists.
type RequestChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// BookingViews is the part of booking.Service the item views need.
type BookingViews interface {
	LastNext(ctx context.Context, viewerID string, item booking.ItemInfo) (booking.Derived, error)
	LastNextBulk(ctx context.Context, viewerID string, items []booking.ItemInfo) (map[string]booking.Derived, error)
}

// CommentLister is the read side of comment.Service.
type CommentLister interface {
	ListByItem(ctx context.Context, itemID string) ([]*comment.Comment, error)
	ListByItems(ctx context.Context, itemIDs []string) (map[string][]*comment.Comment, error)
}

type Service interface {
	Create(ctx context.Context, ownerID string, req CreateRequest) (*Item, error)
	Update(ctx context.Context, ownerID, itemID string, req UpdateRequest) (*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	GetDetail(ctx context.Context, viewerID, itemID string) (*Detail, error)
	ListOwned(ctx context.Context, ownerID string, page Page) ([]*Detail, error)
	Search(ctx context.Context, text string, page Page) ([]*Item, error)
	Delete(ctx context.Context, ownerID, itemID string) error
	UploadPhoto(ctx context.Context, ownerID, itemID string, in photo.UploadInput) (*Item, error)
	// OpenPhoto returns the stored photo or its thumbnail with its content type.
	OpenPhoto(ctx context.Context, itemID string, thumbnail bool) (io.ReadCloser, string, error)
}

type service struct {
	repo     Repository
	owners   OwnerLookup
	requests RequestChecker
	bookings BookingViews
	comments CommentLister
	photos   photo.Service
	logger   *zap.Logger
}

func NewService(
	repo Repository,
	owners OwnerLookup,
	requests RequestChecker,
	bookings BookingViews,
	comments CommentLister,
	photos photo.Service,
	logger *zap.Logger,
) Service {
	return &service{
		repo:     repo,
		owners:   owners,
		requests: requests,
		bookings: bookings,
		comments: comments,
		photos:   photos,
		logger:   logger,
	}
}

func (s *service) ensureOwner(ctx context.Context, ownerID string) error {
	if _, err := s.owners.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrOwnerNotFound
		}
		return err
	}
	return nil
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if err := s.ensureOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	if req.RequestID != nil {
		ok, err := s.requests.Exists(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRequestNotFound
		}
	}

	it := &Item{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Available:   req.Available,
		RequestID:   req.RequestID,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("item created", zap.String("item_id", it.ID), zap.String("owner_id", ownerID))
	return it, nil
}

// owned loads an item and checks that ownerID owns it.
func (s *service) owned(ctx context.Context, ownerID, itemID string) (*Item, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return it, nil
}

func (s *service) Update(ctx context.Context, ownerID, itemID string, req UpdateRequest) (*Item, error) {
	if err := s.ensureOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	it, err := s.owned(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	// Blank strings leave the field unchanged.
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		it.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		it.Description = strings.TrimSpace(*req.Description)
	}
	if req.Available != nil {
		it.Available = *req.Available
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetDetail(ctx context.Context, viewerID, itemID string) (*Detail, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	derived, err := s.bookings.LastNext(ctx, viewerID, it.Info())
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByItem(ctx, it.ID)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Item:        it,
		LastBooking: derived.Last,
		NextBooking: derived.Next,
		Comments:    comments,
	}, nil
}

func (s *service) ListOwned(ctx context.Context, ownerID string, page Page) ([]*Detail, error) {
	if err := s.ensureOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	infos := make([]booking.ItemInfo, len(items))
	ids := make([]string, len(items))
	for i, it := range items {
		infos[i] = it.Info()
		ids[i] = it.ID
	}

	derived, err := s.bookings.LastNextBulk(ctx, ownerID, infos)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]*Detail, len(items))
	for i, it := range items {
		d := derived[it.ID]
		details[i] = &Detail{
			Item:        it,
			LastBooking: d.Last,
			NextBooking: d.Next,
			Comments:    comments[it.ID],
		}
	}
	return details, nil
}

func (s *service) Search(ctx context.Context, text string, page Page) ([]*Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*Item{}, nil
	}
	return s.repo.Search(ctx, text, page)
}

func (s *service) Delete(ctx context.Context, ownerID, itemID string) error {
	it, err := s.owned(ctx, ownerID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, it.ID); err != nil {
		return err
	}
	s.photos.Delete(ctx, storedPhoto(it))

	s.logger.Info("item deleted", zap.String("item_id", it.ID))
	return nil
}

func (s *service) UploadPhoto(ctx context.Context, ownerID, itemID string, in photo.UploadInput) (*Item, error) {
	it, err := s.owned(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	p, err := s.photos.Upload(ctx, "items", in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPhoto(ctx, it.ID, p.Path, p.ThumbnailPath); err != nil {
		s.photos.Delete(ctx, p)
		return nil, err
	}

	// The previous files are unreachable once the row points at the new ones.
	s.photos.Delete(ctx, storedPhoto(it))
	it.PhotoPath = &p.Path
	it.ThumbnailPath = &p.ThumbnailPath
	return it, nil
}

func (s *service) OpenPhoto(ctx context.Context, itemID string, thumbnail bool) (io.ReadCloser, string, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, "", err
	}
	p := storedPhoto(it)
	if p == nil {
		return nil, "", photo.ErrNotFound
	}

	path := p.Path
	if thumbnail {
		path = p.ThumbnailPath
	}
	rc, err := s.photos.Open(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return rc, photo.ContentType(path), nil
}

func storedPhoto(it *Item) *photo.Photo {
	if it.PhotoPath == nil {
		return nil
	}
	p := &photo.Photo{Path: *it.PhotoPath}
	if it.ThumbnailPath != nil {
		p.ThumbnailPath = *it.ThumbnailPath
	}
	return p
}
