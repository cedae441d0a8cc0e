package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisClient is the subset of redis commands the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// cachedUser is the cache representation. The password hash is never cached.
type cachedUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// CachedRepository is a read-through redis cache in front of GetByID.
// Users returned by GetByID carry no PasswordHash; credentials go through GetByEmail.
type CachedRepository struct {
	Repository
	client redisClient
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRepository(next Repository, client redisClient, ttl time.Duration, logger *zap.Logger) *CachedRepository {
	return &CachedRepository{
		Repository: next,
		client:     client,
		ttl:        ttl,
		logger:     logger,
	}
}

func cacheKey(id string) string {
	return "user:" + id
}

func (r *CachedRepository) GetByID(ctx context.Context, id string) (*User, error) {
	raw, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if err := json.Unmarshal(raw, &cu); err == nil {
			return &User{
				ID:          cu.ID,
				Email:       cu.Email,
				Name:        cu.Name,
				CreatedAt:   cu.CreatedAt,
				LastLoginAt: cu.LastLoginAt,
			}, nil
		}
		r.logger.Warn("dropping malformed cached user", zap.String("user_id", id))
	case !errors.Is(err, redis.Nil):
		// Redis being down degrades to a database read.
		r.logger.Warn("user cache read failed", zap.String("user_id", id), zap.Error(err))
	}

	u, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	})
	if err == nil {
		if err := r.client.Set(ctx, cacheKey(id), payload, r.ttl).Err(); err != nil {
			r.logger.Warn("user cache write failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	u.PasswordHash = ""
	return u, nil
}

func (r *CachedRepository) Update(ctx context.Context, u *User) error {
	if err := r.Repository.Update(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx, u.ID)
	return nil
}

func (r *CachedRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	if err := r.Repository.UpdateLastLogin(ctx, id, t); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		r.logger.Warn("user cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}
}
