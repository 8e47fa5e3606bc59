package repository

import (
	"context"

	"github.com/rdev014/bio-farm-wishlist/internal/domain"
)

// WishlistRepository defines snapshot persistence for wishlist aggregates.
// The whole aggregate is written and read as one unit; the last complete
// snapshot wins.
type WishlistRepository interface {
	// Get retrieves the wishlist snapshot for a user.
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)

	// Save persists the full snapshot, overwriting any existing one.
	Save(ctx context.Context, wishlist *domain.Wishlist) error

	// Delete removes the snapshot for a user.
	Delete(ctx context.Context, userID string) error
}
