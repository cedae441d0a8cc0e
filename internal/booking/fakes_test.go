package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memRepository struct {
	mu       sync.Mutex
	seq      int
	bookings map[string]*Booking
}

func newMemRepository() *memRepository {
	return &memRepository{bookings: make(map[string]*Booking)}
}

func (r *memRepository) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	b.ID = fmt.Sprintf("b-%03d", r.seq)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepository) ListByBooker(_ context.Context, bookerID string, pred Predicate, page Page) ([]*Booking, error) {
	return r.list(func(b *Booking) bool { return b.BookerID == bookerID }, pred, page), nil
}

func (r *memRepository) ListByOwner(_ context.Context, ownerID string, pred Predicate, page Page) ([]*Booking, error) {
	return r.list(func(b *Booking) bool { return b.OwnerID == ownerID }, pred, page), nil
}

func (r *memRepository) list(subject func(*Booking) bool, pred Predicate, page Page) []*Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if subject(b) && pred.Matches(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.After(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	if page.Offset >= len(out) {
		return nil
	}
	end := page.Offset + page.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[page.Offset:end]
}

func (r *memRepository) UpdateStatus(_ context.Context, id string, from, to Status) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return time.Time{}, ErrStatusChanged
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return b.UpdatedAt, nil
}

func (r *memRepository) ListApprovedByItems(_ context.Context, itemIDs []string) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}
	var out []*Booking
	for _, b := range r.bookings {
		if wanted[b.ItemID] && b.Status == StatusApproved {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepository) HasFinishedBooking(_ context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.BookerID == bookerID && b.ItemID == itemID && b.Status == StatusApproved && !b.End.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

// put stores b as-is, bypassing Create.
func (r *memRepository) put(b *Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bookings[b.ID] = &cp
}

func (r *memRepository) setStatus(id string, s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[id].Status = s
}

type fakeUsers map[string]*UserInfo

func (f fakeUsers) FindByID(_ context.Context, id string) (*UserInfo, error) {
	u, ok := f[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type fakeItems map[string]*ItemInfo

func (f fakeItems) FindByID(_ context.Context, id string) (*ItemInfo, error) {
	it, ok := f[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return it, nil
}

type publishedEvent struct {
	key       string
	eventType string
	payload   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{key: key, eventType: eventType, payload: payload})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}
