package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *memRepository
	publisher *recordingPublisher
	svc       Service
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithRepo(t, newMemRepository())
}

func newFixtureWithRepo(t *testing.T, repo Repository) *fixture {
	t.Helper()
	users := fakeUsers{
		"owner":    {ID: "owner", Name: "Olga"},
		"booker":   {ID: "booker", Name: "Boris"},
		"stranger": {ID: "stranger", Name: "Sam"},
	}
	items := fakeItems{
		"drill":  {ID: "drill", OwnerID: "owner", Name: "Drill", Available: true},
		"ladder": {ID: "ladder", OwnerID: "owner", Name: "Ladder", Available: false},
	}
	pub := &recordingPublisher{}
	f := &fixture{publisher: pub}
	if mem, ok := repo.(*memRepository); ok {
		f.repo = mem
	}
	f.svc = NewService(repo, users, items, pub, zap.NewNop(), WithClock(func() time.Time { return fixedNow }))
	return f
}

func (f *fixture) book(t *testing.T, start, end time.Time) *Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), CreateRequest{
		BookerID: "booker", ItemID: "drill", Start: start, End: end,
	})
	require.NoError(t, err)
	return b
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	b := f.book(t, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, StatusWaiting, b.Status)
	assert.Equal(t, "owner", b.OwnerID)
	assert.Equal(t, "Drill", b.ItemName)
	assert.Equal(t, "Boris", b.BookerName)
	assert.Equal(t, []string{EventCreated}, f.publisher.types())

	stored, err := f.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, stored.Status)
}

func TestCreateBookingPreconditions(t *testing.T) {
	start := fixedNow.Add(time.Hour)
	end := fixedNow.Add(2 * time.Hour)

	cases := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"end equals start", CreateRequest{BookerID: "booker", ItemID: "drill", Start: start, End: start}, ErrTimeConflict},
		{"sub-microsecond window", CreateRequest{BookerID: "booker", ItemID: "drill", Start: start.Add(100 * time.Nanosecond), End: start.Add(200 * time.Nanosecond)}, ErrTimeConflict},
		{"end before start", CreateRequest{BookerID: "booker", ItemID: "drill", Start: end, End: start}, ErrTimeConflict},
		{"time checked before user", CreateRequest{BookerID: "ghost", ItemID: "ghost", Start: end, End: start}, ErrTimeConflict},
		{"unknown user", CreateRequest{BookerID: "ghost", ItemID: "drill", Start: start, End: end}, ErrUserNotFound},
		{"user checked before item", CreateRequest{BookerID: "ghost", ItemID: "ghost", Start: start, End: end}, ErrUserNotFound},
		{"unknown item", CreateRequest{BookerID: "booker", ItemID: "ghost", Start: start, End: end}, ErrItemNotFound},
		{"owner books own item", CreateRequest{BookerID: "owner", ItemID: "drill", Start: start, End: end}, ErrOwnerSelfBooking},
		{"owner books own unavailable item", CreateRequest{BookerID: "owner", ItemID: "ladder", Start: start, End: end}, ErrOwnerSelfBooking},
		{"item unavailable", CreateRequest{BookerID: "booker", ItemID: "ladder", Start: start, End: end}, ErrItemUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Create(context.Background(), tc.req)

			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 0, f.repo.count())
			assert.Empty(t, f.publisher.types())
		})
	}
}

func TestCreateBookingRoundsToMicroseconds(t *testing.T) {
	f := newFixture(t)
	start := fixedNow.Add(time.Hour)

	b := f.book(t, start.Add(400*time.Nanosecond), start.Add(time.Microsecond+600*time.Nanosecond))

	assert.True(t, b.Start.Equal(start))
	assert.True(t, b.End.Equal(start.Add(2*time.Microsecond)))

	stored, err := f.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Start.Equal(b.Start))
	assert.True(t, stored.End.Equal(b.End))
}

func TestCreateBookingIgnoresPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	b := f.book(t, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))
	assert.Equal(t, StatusWaiting, b.Status)
}

func TestDecideScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))

	approved, err := f.svc.Decide(ctx, "owner", b.ID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	_, err = f.svc.Decide(ctx, "booker", b.ID, true)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.svc.Decide(ctx, "owner", b.ID, true)
	assert.ErrorIs(t, err, ErrSameStatus)

	assert.Equal(t, []string{EventCreated, EventApproved}, f.publisher.types())
}

func TestDecideErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Decide(ctx, "owner", "missing", true)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))
		_, err := f.svc.Decide(ctx, "ghost", b.ID, true)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("stranger", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))
		_, err := f.svc.Decide(ctx, "stranger", b.ID, false)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("reject twice", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))
		rejected, err := f.svc.Decide(ctx, "owner", b.ID, false)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, rejected.Status)

		_, err = f.svc.Decide(ctx, "owner", b.ID, false)
		assert.ErrorIs(t, err, ErrSameStatus)
	})

	t.Run("approve after reject", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))
		_, err := f.svc.Decide(ctx, "owner", b.ID, false)
		require.NoError(t, err)

		_, err = f.svc.Decide(ctx, "owner", b.ID, true)
		assert.ErrorIs(t, err, ErrAlreadyDecided)

		stored, err := f.repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, stored.Status)
	})
}

// racingRepository commits a competing decision right before every status write.
type racingRepository struct {
	*memRepository
	competing Status
}

func (r *racingRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (time.Time, error) {
	r.setStatus(id, r.competing)
	return r.memRepository.UpdateStatus(ctx, id, from, to)
}

func TestDecideLosingRace(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		competing Status
		approve   bool
		want      error
	}{
		{"same decision won", StatusApproved, true, ErrSameStatus},
		{"opposite decision won", StatusRejected, true, ErrDecisionConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &racingRepository{memRepository: newMemRepository(), competing: tc.competing}
			repo.put(&Booking{
				ID: "b-1", ItemID: "drill", OwnerID: "owner", BookerID: "booker",
				Start: fixedNow.Add(time.Hour), End: fixedNow.Add(2 * time.Hour), Status: StatusWaiting,
			})
			f := newFixtureWithRepo(t, repo)

			_, err := f.svc.Decide(ctx, "owner", "b-1", tc.approve)

			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.publisher.types())
		})
	}
}

func TestDecideConcurrentlyHasOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))

	const deciders = 8
	errs := make([]error, deciders)
	var wg sync.WaitGroup
	for i := 0; i < deciders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Decide(ctx, "owner", b.ID, i%2 == 0)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSameStatus), errors.Is(err, ErrAlreadyDecided), errors.Is(err, ErrDecisionConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestGetBookingAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))

	for _, userID := range []string{"booker", "owner"} {
		got, err := f.svc.GetByID(ctx, userID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err := f.svc.GetByID(ctx, "stranger", b.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.svc.GetByID(ctx, "ghost", b.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.GetByID(ctx, "booker", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func seedTimeline(f *fixture) {
	h := time.Hour
	rows := []*Booking{
		{ID: "past", Start: fixedNow.Add(-5 * h), End: fixedNow.Add(-4 * h), Status: StatusApproved},
		{ID: "ends-now", Start: fixedNow.Add(-2 * h), End: fixedNow, Status: StatusApproved},
		{ID: "current", Start: fixedNow.Add(-h), End: fixedNow.Add(h), Status: StatusWaiting},
		{ID: "starts-now", Start: fixedNow, End: fixedNow.Add(h), Status: StatusRejected},
		{ID: "future", Start: fixedNow.Add(3 * h), End: fixedNow.Add(4 * h), Status: StatusWaiting},
		{ID: "future-rejected", Start: fixedNow.Add(5 * h), End: fixedNow.Add(6 * h), Status: StatusRejected},
	}
	for _, b := range rows {
		b.ItemID = "drill"
		b.OwnerID = "owner"
		b.BookerID = "booker"
		f.repo.put(b)
	}
}

func ids(bookings []*Booking) []string {
	out := make([]string, len(bookings))
	for i, b := range bookings {
		out[i] = b.ID
	}
	return out
}

func TestListByBookerStates(t *testing.T) {
	f := newFixture(t)
	seedTimeline(f)
	ctx := context.Background()
	page := Page{Offset: 0, Limit: 100}

	cases := map[string][]string{
		"ALL":      {"future-rejected", "future", "starts-now", "current", "ends-now", "past"},
		"":         {"future-rejected", "future", "starts-now", "current", "ends-now", "past"},
		"current":  {"starts-now", "current", "ends-now"},
		"PAST":     {"past"},
		"FUTURE":   {"future-rejected", "future"},
		"WAITING":  {"future", "current"},
		"REJECTED": {"future-rejected", "starts-now"},
	}
	for state, want := range cases {
		t.Run(state, func(t *testing.T) {
			got, err := f.svc.ListByBooker(ctx, "booker", state, page)
			require.NoError(t, err)
			assert.Equal(t, want, ids(got))
		})
	}

	t.Run("owner sees the same bookings", func(t *testing.T) {
		got, err := f.svc.ListByOwner(ctx, "owner", "ALL", page)
		require.NoError(t, err)
		assert.Len(t, got, 6)

		none, err := f.svc.ListByOwner(ctx, "booker", "ALL", page)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestListTemporalStatesPartitionAll(t *testing.T) {
	f := newFixture(t)
	seedTimeline(f)
	ctx := context.Background()
	page := Page{Offset: 0, Limit: 100}

	seen := map[string]string{}
	for _, state := range []string{"PAST", "CURRENT", "FUTURE"} {
		got, err := f.svc.ListByBooker(ctx, "booker", state, page)
		require.NoError(t, err)
		for _, id := range ids(got) {
			prev, dup := seen[id]
			assert.False(t, dup, "%s returned by both %s and %s", id, prev, state)
			seen[id] = state
		}
	}

	all, err := f.svc.ListByBooker(ctx, "booker", "ALL", page)
	require.NoError(t, err)
	assert.Len(t, seen, len(all))
}

func TestListErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListByBooker(ctx, "booker", "UNSUPPORTED_STATUS", Page{Limit: 10})
	assert.ErrorIs(t, err, ErrUnknownState)
	assert.EqualError(t, err, "Unknown state: UNSUPPORTED_STATUS")

	_, err = f.svc.ListByOwner(ctx, "owner", "APPROVED", Page{Limit: 10})
	assert.ErrorIs(t, err, ErrUnknownState)

	_, err = f.svc.ListByBooker(ctx, "ghost", "ALL", Page{Limit: 10})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.ListByOwner(ctx, "owner", "ALL", Page{Offset: -1, Limit: 10})
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = f.svc.ListByOwner(ctx, "owner", "ALL", Page{Offset: 0, Limit: 0})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestListPagingIsStable(t *testing.T) {
	f := newFixture(t)
	seedTimeline(f)
	ctx := context.Background()

	all, err := f.svc.ListByBooker(ctx, "booker", "ALL", Page{Limit: 100})
	require.NoError(t, err)

	var paged []string
	for offset := 0; offset < len(all)+2; offset += 2 {
		got, err := f.svc.ListByBooker(ctx, "booker", "ALL", Page{Offset: offset, Limit: 2})
		require.NoError(t, err)
		paged = append(paged, ids(got)...)
	}
	assert.Equal(t, ids(all), paged)

	shifted, err := f.svc.ListByBooker(ctx, "booker", "ALL", Page{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, ids(all)[1:3], ids(shifted))
}

func TestHasFinishedBooking(t *testing.T) {
	f := newFixture(t)
	seedTimeline(f)
	ctx := context.Background()

	ok, err := f.svc.HasFinishedBooking(ctx, "booker", "drill")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.HasFinishedBooking(ctx, "stranger", "drill")
	require.NoError(t, err)
	assert.False(t, ok)
}
