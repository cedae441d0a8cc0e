package itemrequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, req *ItemRequest) error
	GetByID(ctx context.Context, id string) (*ItemRequest, error)
	Exists(ctx context.Context, id string) (bool, error)
	// ListByRequestor returns the user's requests, newest first.
	ListByRequestor(ctx context.Context, requestorID string) ([]*ItemRequest, error)
	// ListOthers returns requests made by anyone except userID, newest first.
	ListOthers(ctx context.Context, userID string, page Page) ([]*ItemRequest, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func selectRequests() squirrel.SelectBuilder {
	return psql.Select("id", "description", "requestor_id", "created_at").
		From("public.item_requests")
}

func scanRequest(row pgx.Row) (*ItemRequest, error) {
	var req ItemRequest
	if err := row.Scan(&req.ID, &req.Description, &req.RequestorID, &req.CreatedAt); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *pgxRepository) Create(ctx context.Context, req *ItemRequest) error {
	query, args, err := psql.Insert("public.item_requests").
		Columns("description", "requestor_id").
		Values(req.Description, req.RequestorID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create item request query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&req.ID, &req.CreatedAt); err != nil {
		return fmt.Errorf("create item request failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*ItemRequest, error) {
	query, args, err := selectRequests().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get item request query failed: %w", err)
	}

	req, err := scanRequest(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item request failed: %w", err)
	}
	return req, nil
}

func (r *pgxRepository) Exists(ctx context.Context, id string) (bool, error) {
	sub, args, err := psql.Select("1").
		From("public.item_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build item request exists query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check item request failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) ListByRequestor(ctx context.Context, requestorID string) ([]*ItemRequest, error) {
	q := selectRequests().
		Where(squirrel.Eq{"requestor_id": requestorID}).
		OrderBy("created_at DESC", "id")
	return r.list(ctx, q)
}

func (r *pgxRepository) ListOthers(ctx context.Context, userID string, page Page) ([]*ItemRequest, error) {
	q := selectRequests().
		Where(squirrel.NotEq{"requestor_id": userID}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset))
	return r.list(ctx, q)
}

func (r *pgxRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*ItemRequest, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list item requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list item requests failed: %w", err)
	}
	defer rows.Close()

	var reqs []*ItemRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item request failed: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
