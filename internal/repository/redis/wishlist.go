package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rdev014/bio-farm-wishlist/internal/domain"
	apperrors "github.com/rdev014/bio-farm-wishlist/pkg/errors"
)

const keyPrefix = "wishlist:"

// WishlistRepository implements repository.WishlistRepository using Redis.
// Snapshots are stored without expiry: a wishlist survives until the user
// clears it or the key is deleted.
type WishlistRepository struct {
	client *redis.Client
}

// NewWishlistRepository creates a Redis-backed wishlist repository.
func NewWishlistRepository(client *redis.Client) *WishlistRepository {
	return &WishlistRepository{client: client}
}

// Get retrieves the wishlist snapshot for a user.
func (r *WishlistRepository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	data, err := r.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("wishlist", userID)
		}
		return nil, fmt.Errorf("redis get wishlist: %w", err)
	}

	var w domain.Wishlist
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist: %w", err)
	}

	return &w, nil
}

// Save persists the full snapshot under the user's key with no expiry.
func (r *WishlistRepository) Save(ctx context.Context, wishlist *domain.Wishlist) error {
	data, err := json.Marshal(wishlist)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+wishlist.UserID, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set wishlist: %w", err)
	}

	return nil
}

// Delete removes the snapshot for a user. Deleting a missing key is not an
// error.
func (r *WishlistRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del wishlist: %w", err)
	}
	return nil
}
