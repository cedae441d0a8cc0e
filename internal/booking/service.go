package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/metrics"
)

type CreateRequest struct {
	BookerID string
	ItemID   string
	Start    time.Time
	End      time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Decide(ctx context.Context, actorID, bookingID string, approve bool) (*Booking, error)
	GetByID(ctx context.Context, userID, bookingID string) (*Booking, error)
	ListByBooker(ctx context.Context, bookerID, state string, page Page) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID, state string, page Page) ([]*Booking, error)

	// LastNext returns the derived bookings of item. Viewers other than the owner get an empty result.
	LastNext(ctx context.Context, viewerID string, item ItemInfo) (Derived, error)
	// LastNextBulk is LastNext for many items with a single store round trip, keyed by item id.
	LastNextBulk(ctx context.Context, viewerID string, items []ItemInfo) (map[string]Derived, error)

	// HasFinishedBooking reports whether the user has an approved booking of the item that has ended.
	HasFinishedBooking(ctx context.Context, userID, itemID string) (bool, error)
}

type Option func(*service)

// WithClock replaces time.Now as the source of the current instant.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	repo      Repository
	users     UserLookup
	items     ItemLookup
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, users UserLookup, items ItemLookup, publisher EventPublisher, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		repo:      repo,
		users:     users,
		items:     items,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	s.logger.Debug("create booking",
		zap.String("booker_id", req.BookerID),
		zap.String("item_id", req.ItemID),
	)

	// Postgres keeps timestamps at microsecond precision and rounds.
	start := req.Start.Round(time.Microsecond)
	end := req.End.Round(time.Microsecond)
	if !end.After(start) {
		return nil, ErrTimeConflict
	}

	booker, err := s.users.FindByID(ctx, req.BookerID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == booker.ID {
		return nil, ErrOwnerSelfBooking
	}
	if !item.Available {
		return nil, ErrItemUnavailable
	}

	b := &Booking{
		ItemID:     item.ID,
		ItemName:   item.Name,
		OwnerID:    item.OwnerID,
		BookerID:   booker.ID,
		BookerName: booker.Name,
		Start:      start,
		End:        end,
		Status:     StatusWaiting,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("item_id", b.ItemID),
		zap.String("booker_id", b.BookerID),
	)
	s.publish(ctx, EventCreated, b)
	return b, nil
}

func (s *service) Decide(ctx context.Context, actorID, bookingID string, approve bool) (*Booking, error) {
	s.logger.Debug("decide booking",
		zap.String("booking_id", bookingID),
		zap.String("actor_id", actorID),
		zap.Bool("approve", approve),
	)

	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, actorID); err != nil {
		return nil, err
	}
	if b.OwnerID != actorID {
		return nil, ErrNotOwner
	}

	target := StatusRejected
	if approve {
		target = StatusApproved
	}
	if b.Status == target {
		return nil, ErrSameStatus
	}
	if b.Status != StatusWaiting {
		return nil, ErrAlreadyDecided
	}

	updatedAt, err := s.repo.UpdateStatus(ctx, b.ID, StatusWaiting, target)
	if errors.Is(err, ErrStatusChanged) {
		// Another decision committed between the read and the write.
		current, getErr := s.repo.GetByID(ctx, b.ID)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == target {
			return nil, ErrSameStatus
		}
		return nil, ErrDecisionConflict
	}
	if err != nil {
		return nil, err
	}

	b.Status = target
	b.UpdatedAt = updatedAt

	metrics.IncBookingDecision(string(target))
	s.logger.Info("booking decided",
		zap.String("booking_id", b.ID),
		zap.String("status", string(target)),
	)
	if approve {
		s.publish(ctx, EventApproved, b)
	} else {
		s.publish(ctx, EventRejected, b)
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, userID, bookingID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if b.BookerID != userID && b.OwnerID != userID {
		return nil, ErrNotParticipant
	}
	return b, nil
}

func (s *service) ListByBooker(ctx context.Context, bookerID, state string, page Page) ([]*Booking, error) {
	pred, err := s.listPredicate(ctx, bookerID, state, page)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByBooker(ctx, bookerID, pred, page)
}

func (s *service) ListByOwner(ctx context.Context, ownerID, state string, page Page) ([]*Booking, error) {
	pred, err := s.listPredicate(ctx, ownerID, state, page)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerID, pred, page)
}

func (s *service) listPredicate(ctx context.Context, userID, state string, page Page) (Predicate, error) {
	if err := page.Validate(); err != nil {
		return Predicate{}, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return Predicate{}, err
	}
	return Classify(state, s.now())
}

func (s *service) LastNext(ctx context.Context, viewerID string, item ItemInfo) (Derived, error) {
	if item.OwnerID != viewerID {
		return Derived{}, nil
	}
	bookings, err := s.repo.ListApprovedByItems(ctx, []string{item.ID})
	if err != nil {
		return Derived{}, err
	}
	return pickLastNext(bookings, s.now()), nil
}

func (s *service) LastNextBulk(ctx context.Context, viewerID string, items []ItemInfo) (map[string]Derived, error) {
	result := make(map[string]Derived, len(items))
	var owned []string
	for _, it := range items {
		result[it.ID] = Derived{}
		if it.OwnerID == viewerID {
			owned = append(owned, it.ID)
		}
	}
	if len(owned) == 0 {
		return result, nil
	}

	bookings, err := s.repo.ListApprovedByItems(ctx, owned)
	if err != nil {
		return nil, err
	}

	now := s.now()
	grouped := groupByItem(bookings)
	for _, id := range owned {
		result[id] = pickLastNext(grouped[id], now)
	}
	return result, nil
}

func (s *service) HasFinishedBooking(ctx context.Context, userID, itemID string) (bool, error) {
	return s.repo.HasFinishedBooking(ctx, userID, itemID, s.now())
}

// publish never fails the caller; the write has already committed.
func (s *service) publish(ctx context.Context, eventType string, b *Booking) {
	if err := s.publisher.Publish(ctx, b.ID, eventType, newEvent(b, s.now().UTC())); err != nil {
		s.logger.Error("failed to publish booking event",
			zap.String("event_type", eventType),
			zap.String("booking_id", b.ID),
			zap.Error(err),
		)
	}
}
