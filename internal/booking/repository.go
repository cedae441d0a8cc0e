package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByBooker(ctx context.Context, bookerID string, pred Predicate, page Page) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID string, pred Predicate, page Page) ([]*Booking, error)

	// UpdateStatus moves a booking from one status to another atomically and
	// returns the new updated_at. It returns ErrStatusChanged when the booking is
	// no longer in the from status.
	UpdateStatus(ctx context.Context, id string, from, to Status) (time.Time, error)

	ListApprovedByItems(ctx context.Context, itemIDs []string) ([]*Booking, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.item_id", "i.name", "i.owner_id", "b.booker_id", "u.name",
	"b.start_time", "b.end_time", "b.status", "b.created_at", "b.updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func selectBookings() squirrel.SelectBuilder {
	return psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.items i ON b.item_id = i.id").
		Join("public.users u ON b.booker_id = u.id")
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemName, &b.OwnerID, &b.BookerID, &b.BookerName,
		&b.Start, &b.End, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

// applyPredicate renders pred with the same bounds Predicate.Matches checks.
func applyPredicate(q squirrel.SelectBuilder, pred Predicate) squirrel.SelectBuilder {
	if pred.StartAtOrBefore != nil {
		q = q.Where(squirrel.LtOrEq{"b.start_time": *pred.StartAtOrBefore})
	}
	if pred.StartAfter != nil {
		q = q.Where(squirrel.Gt{"b.start_time": *pred.StartAfter})
	}
	if pred.EndAtOrAfter != nil {
		q = q.Where(squirrel.GtOrEq{"b.end_time": *pred.EndAtOrAfter})
	}
	if pred.EndBefore != nil {
		q = q.Where(squirrel.Lt{"b.end_time": *pred.EndBefore})
	}
	if pred.Status != "" {
		q = q.Where(squirrel.Eq{"b.status": pred.Status})
	}
	return q
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("item_id", "booker_id", "start_time", "end_time", "status").
		Values(b.ItemID, b.BookerID, b.Start, b.End, b.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) ListByBooker(ctx context.Context, bookerID string, pred Predicate, page Page) ([]*Booking, error) {
	q := selectBookings().Where(squirrel.Eq{"b.booker_id": bookerID})
	return r.list(ctx, applyPredicate(q, pred), page)
}

func (r *pgxRepository) ListByOwner(ctx context.Context, ownerID string, pred Predicate, page Page) ([]*Booking, error) {
	q := selectBookings().Where(squirrel.Eq{"i.owner_id": ownerID})
	return r.list(ctx, applyPredicate(q, pred), page)
}

func (r *pgxRepository) list(ctx context.Context, q squirrel.SelectBuilder, page Page) ([]*Booking, error) {
	sql, args, err := q.
		OrderBy("b.start_time DESC", "b.id").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}
	return r.query(ctx, sql, args)
}

func (r *pgxRepository) query(ctx context.Context, sql string, args []interface{}) ([]*Booking, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (time.Time, error) {
	query, args, err := psql.Update("public.bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build update booking status query failed: %w", err)
	}

	var updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrStatusChanged
		}
		return time.Time{}, fmt.Errorf("update booking status failed: %w", err)
	}
	return updatedAt, nil
}

func (r *pgxRepository) ListApprovedByItems(ctx context.Context, itemIDs []string) ([]*Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	sql, args, err := selectBookings().
		Where(squirrel.Eq{"b.item_id": itemIDs, "b.status": StatusApproved}).
		OrderBy("b.item_id", "b.start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list approved bookings query failed: %w", err)
	}
	return r.query(ctx, sql, args)
}

func (r *pgxRepository) HasFinishedBooking(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	sub, args, err := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"booker_id": bookerID, "item_id": itemID, "status": StatusApproved}).
		Where(squirrel.LtOrEq{"end_time": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build finished booking query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check finished booking failed: %w", err)
	}
	return exists, nil
}
