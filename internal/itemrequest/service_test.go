package itemrequest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

type memRepository struct {
	reqs  []*ItemRequest
	clock time.Time
}

func (r *memRepository) Create(_ context.Context, req *ItemRequest) error {
	r.clock = r.clock.Add(time.Minute)
	req.ID = fmt.Sprintf("req-%d", len(r.reqs)+1)
	req.CreatedAt = r.clock
	cp := *req
	r.reqs = append(r.reqs, &cp)
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id string) (*ItemRequest, error) {
	for _, req := range r.reqs {
		if req.ID == id {
			cp := *req
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return err == nil, nil
}

// newestFirst walks reqs in reverse insertion order, which is creation order here.
func (r *memRepository) newestFirst(keep func(*ItemRequest) bool) []*ItemRequest {
	var out []*ItemRequest
	for i := len(r.reqs) - 1; i >= 0; i-- {
		if keep(r.reqs[i]) {
			cp := *r.reqs[i]
			out = append(out, &cp)
		}
	}
	return out
}

func (r *memRepository) ListByRequestor(_ context.Context, requestorID string) ([]*ItemRequest, error) {
	return r.newestFirst(func(req *ItemRequest) bool { return req.RequestorID == requestorID }), nil
}

func (r *memRepository) ListOthers(_ context.Context, userID string, page Page) ([]*ItemRequest, error) {
	all := r.newestFirst(func(req *ItemRequest) bool { return req.RequestorID != userID })
	if page.Offset >= len(all) {
		return nil, nil
	}
	end := min(page.Offset+page.Limit, len(all))
	return all[page.Offset:end], nil
}

type stubUsers map[string]bool

func (s stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if !s[id] {
		return nil, user.ErrNotFound
	}
	return &user.User{ID: id}, nil
}

type stubAnswers struct {
	items []*item.Item
	calls int
}

func (s *stubAnswers) ListByRequestIDs(_ context.Context, ids []string) ([]*item.Item, error) {
	s.calls++
	var out []*item.Item
	for _, it := range s.items {
		for _, id := range ids {
			if it.RequestID != nil && *it.RequestID == id {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func newTestService() (Service, *memRepository, *stubAnswers) {
	repo := &memRepository{clock: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	answers := &stubAnswers{}
	users := stubUsers{"alice": true, "bob": true}
	return NewService(repo, users, answers, zap.NewNop()), repo, answers
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req, err := svc.Create(ctx, "alice", "  a ladder  ")
	require.NoError(t, err)
	assert.Equal(t, "a ladder", req.Description)
	assert.NotEmpty(t, req.ID)
	assert.NotNil(t, req.Items)

	_, err = svc.Create(ctx, "alice", "   ")
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	_, err = svc.Create(ctx, "ghost", "a ladder")
	assert.ErrorIs(t, err, ErrRequestorNotFound)

	ok, err := svc.Exists(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListOwnNewestFirstWithAnswers(t *testing.T) {
	svc, _, answers := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "alice", "ladder")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "alice", "drill")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", "tent")
	require.NoError(t, err)

	answers.items = []*item.Item{
		{ID: "item-1", Name: "Ladder", RequestID: &first.ID},
		{ID: "item-2", Name: "Step ladder", RequestID: &first.ID},
	}

	reqs, err := svc.ListOwn(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, second.ID, reqs[0].ID)
	assert.Empty(t, reqs[0].Items)
	assert.Equal(t, first.ID, reqs[1].ID)
	assert.Len(t, reqs[1].Items, 2)
	assert.Equal(t, 1, answers.calls)

	_, err = svc.ListOwn(ctx, "ghost")
	assert.ErrorIs(t, err, ErrRequestorNotFound)
}

func TestListOthers(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for _, d := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, "bob", d)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "alice", "mine")
	require.NoError(t, err)

	reqs, err := svc.ListOthers(ctx, "alice", Page{Offset: 0, Limit: 2})
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "c", reqs[0].Description)
	assert.Equal(t, "b", reqs[1].Description)

	reqs, err = svc.ListOthers(ctx, "alice", Page{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "a", reqs[0].Description)

	reqs, err = svc.ListOthers(ctx, "alice", Page{Offset: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, reqs)

	_, err = svc.ListOthers(ctx, "alice", Page{Offset: -1, Limit: 2})
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, err = svc.ListOthers(ctx, "alice", Page{Offset: 0, Limit: 0})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestGetByID(t *testing.T) {
	svc, _, answers := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "bob", "tent")
	require.NoError(t, err)
	answers.items = []*item.Item{{ID: "item-1", RequestID: &created.ID}}

	got, err := svc.GetByID(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "tent", got.Description)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "item-1", got.Items[0].ID)

	_, err = svc.GetByID(ctx, "alice", "req-404")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByID(ctx, "ghost", created.ID)
	assert.ErrorIs(t, err, ErrRequestorNotFound)
}
