package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rdev014/bio-farm-wishlist/internal/domain"
	"github.com/rdev014/bio-farm-wishlist/internal/event"
	"github.com/rdev014/bio-farm-wishlist/internal/repository"
	"github.com/rdev014/bio-farm-wishlist/internal/sharing"
	apperrors "github.com/rdev014/bio-farm-wishlist/pkg/errors"
)

// Upper bounds to keep snapshots at a sane size.
const (
	// MaxItems is the maximum number of saved items per wishlist.
	MaxItems = 500
	// MaxLists is the maximum number of lists per wishlist.
	MaxLists = 50
	// MaxNotesLength is the maximum length of per-item notes.
	MaxNotesLength = 2000
)

// AddItemInput holds the product fields for saving an item.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required,min=1,max=500"`
	Price     int64  `json:"price" validate:"gte=0"`
	ImageURL  string `json:"image_url"`
}

// WishlistService implements the business logic for wishlist operations.
// Every mutator follows the same shape: load the user's snapshot (seeding an
// empty wishlist when none exists), apply the aggregate operation, and write
// the whole snapshot back. Aggregate operations themselves never fail;
// unknown product or list ids leave the snapshot unchanged and the write is
// a harmless no-op save.
type WishlistService struct {
	repo      repository.WishlistRepository
	publisher sharing.Publisher
	events    *event.Producer
	logger    *slog.Logger
}

// NewWishlistService creates a wishlist service.
func NewWishlistService(
	repo repository.WishlistRepository,
	publisher sharing.Publisher,
	events *event.Producer,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		repo:      repo,
		publisher: publisher,
		events:    events,
		logger:    logger,
	}
}

// Get retrieves the user's wishlist. If none exists yet an empty seeded
// wishlist is returned without being persisted.
func (s *WishlistService) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	return s.loadOrSeed(ctx, userID)
}

// AddItem saves a product to the user's wishlist. Duplicate saves of the
// same product are allowed and each gets its own timestamp.
func (s *WishlistService) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(w.Items) >= MaxItems {
		return nil, apperrors.InvalidInput(fmt.Sprintf("wishlist must not contain more than %d items", MaxItems))
	}

	item := w.AddItem(domain.Product{
		ID:       input.ProductID,
		Name:     input.Name,
		Price:    input.Price,
		ImageURL: input.ImageURL,
	}, time.Now().UTC())

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	if err := s.events.PublishItemAdded(ctx, userID, item, len(w.Items)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish item_added event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item saved to wishlist",
		slog.String("user_id", userID),
		slog.String("product_id", input.ProductID),
	)

	return w, nil
}

// RemoveItem deletes every occurrence of the product from the wishlist and
// all its lists. Removing an unknown product is a no-op, not an error.
func (s *WishlistService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.RemoveItem(productID)

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	if err := s.events.PublishItemRemoved(ctx, userID, productID, len(w.Items)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish item_removed event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item removed from wishlist",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return w, nil
}

// MoveToList relocates an item between two lists. Unknown items or lists
// leave the wishlist unchanged.
func (s *WishlistService) MoveToList(ctx context.Context, userID, productID, fromListID, toListID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if fromListID == "" || toListID == "" {
		return nil, apperrors.InvalidInput("from_list_id and to_list_id are required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.MoveToList(productID, fromListID, toListID)

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// UpdateNotes sets the notes on every saved copy of the product.
func (s *WishlistService) UpdateNotes(ctx context.Context, userID, productID, notes string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if len(notes) > MaxNotesLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("notes must not exceed %d characters", MaxNotesLength))
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.UpdateItemNotes(productID, notes)

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// ToggleNotification flips the availability or price alert on the product.
func (s *WishlistService) ToggleNotification(ctx context.Context, userID, productID string, kind domain.NotificationKind) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if kind != domain.NotifyAvailability && kind != domain.NotifyPriceChange {
		return nil, apperrors.InvalidInput("kind must be one of: availability, price")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.ToggleNotification(productID, kind)

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// SetPriceAlert enables a price alert with an explicit target price.
func (s *WishlistService) SetPriceAlert(ctx context.Context, userID, productID string, targetPrice int64) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if targetPrice < 0 {
		return nil, apperrors.InvalidInput("target price must not be negative")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.SetPriceAlert(productID, targetPrice)

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// CreateList adds a new named list to the wishlist.
func (s *WishlistService) CreateList(ctx context.Context, userID, name string, isPublic bool) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if name == "" {
		return nil, apperrors.InvalidInput("list name is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(w.Lists) >= MaxLists {
		return nil, apperrors.InvalidInput(fmt.Sprintf("wishlist must not contain more than %d lists", MaxLists))
	}

	l := w.CreateList(name, isPublic, time.Now().UTC())

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "list created",
		slog.String("user_id", userID),
		slog.String("list_id", l.ID),
	)

	return w, nil
}

// DeleteList removes a list. Its items stay in the flat collection.
func (s *WishlistService) DeleteList(ctx context.Context, userID, listID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if listID == "" {
		return nil, apperrors.InvalidInput("list id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.DeleteList(listID)

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// RenameList sets a new display name on a list.
func (s *WishlistService) RenameList(ctx context.Context, userID, listID, newName string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if listID == "" {
		return nil, apperrors.InvalidInput("list id is required")
	}
	if newName == "" {
		return nil, apperrors.InvalidInput("list name is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.RenameList(listID, newName)

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// ToggleListVisibility flips a list between public and private.
func (s *WishlistService) ToggleListVisibility(ctx context.Context, userID, listID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if listID == "" {
		return nil, apperrors.InvalidInput("list id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.ToggleListVisibility(listID)

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// ShareList publishes a public list and returns its share URL. A missing or
// private list, and a publisher failure, all degrade to an empty URL with no
// state change; the share counter moves only when a URL was actually minted
// and recorded.
//
// The publisher call can suspend for a network round-trip, so the snapshot
// is re-read afterwards and the share result is merged last-write-wins into
// whatever state exists by then.
func (s *WishlistService) ShareList(ctx context.Context, userID, listID string) (string, error) {
	if userID == "" {
		return "", apperrors.InvalidInput("user id is required")
	}
	if listID == "" {
		return "", apperrors.InvalidInput("list id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return "", err
	}

	l := w.FindList(listID)
	if l == nil || !l.IsPublic {
		return "", nil
	}

	url, err := s.publisher.Publish(ctx, userID, listID)
	if err != nil {
		s.logger.ErrorContext(ctx, "share publish failed",
			slog.String("user_id", userID),
			slog.String("list_id", listID),
			slog.String("error", err.Error()),
		)
		return "", nil
	}

	// Re-read: the snapshot may have changed while the publish call was in
	// flight.
	w, err = s.loadOrSeed(ctx, userID)
	if err != nil {
		return "", err
	}
	if w.FindList(listID) == nil {
		return "", nil
	}

	w.MarkShared(listID, url)

	if err := s.save(ctx, w); err != nil {
		return "", err
	}

	if err := s.events.PublishListShared(ctx, userID, listID, url); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish list_shared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "list shared",
		slog.String("user_id", userID),
		slog.String("list_id", listID),
	)

	return url, nil
}

// Contains reports whether the product is saved in the user's wishlist.
func (s *WishlistService) Contains(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" {
		return false, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return false, apperrors.InvalidInput("product id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return false, err
	}
	return w.Contains(productID), nil
}

// ClearAll empties the wishlist: items, lists, and analytics counters.
func (s *WishlistService) ClearAll(ctx context.Context, userID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.ClearAll(time.Now().UTC())

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	if err := s.events.PublishCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist cleared", slog.String("user_id", userID))

	return w, nil
}

// Export serializes the user's items and lists to a JSON blob.
func (s *WishlistService) Export(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperrors.InvalidInput("user id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return "", err
	}
	return w.Export()
}

// Import replaces the user's items and lists from an exported blob. A
// malformed blob reports false and leaves the stored snapshot untouched;
// parse failure is not an error.
func (s *WishlistService) Import(ctx context.Context, userID, blob string) (bool, error) {
	if userID == "" {
		return false, apperrors.InvalidInput("user id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return false, err
	}

	if !w.Import(blob) {
		return false, nil
	}

	if err := s.save(ctx, w); err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "wishlist imported",
		slog.String("user_id", userID),
		slog.Int("items", len(w.Items)),
		slog.Int("lists", len(w.Lists)),
	)

	return true, nil
}

// RecordView counts a product view and returns the refreshed analytics.
func (s *WishlistService) RecordView(ctx context.Context, userID, productID string) (domain.Analytics, error) {
	if userID == "" {
		return domain.Analytics{}, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return domain.Analytics{}, apperrors.InvalidInput("product id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return domain.Analytics{}, err
	}

	w.IncrementViews(productID, time.Now().UTC())

	if err := s.save(ctx, w); err != nil {
		return domain.Analytics{}, err
	}

	return w.AnalyticsSnapshot(), nil
}

// RecordShare counts an external share (outside the list publishing flow)
// and returns the refreshed analytics.
func (s *WishlistService) RecordShare(ctx context.Context, userID string) (domain.Analytics, error) {
	if userID == "" {
		return domain.Analytics{}, apperrors.InvalidInput("user id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return domain.Analytics{}, err
	}

	w.IncrementShares()

	if err := s.save(ctx, w); err != nil {
		return domain.Analytics{}, err
	}

	return w.AnalyticsSnapshot(), nil
}

// Analytics returns a copy of the user's analytics.
func (s *WishlistService) Analytics(ctx context.Context, userID string) (domain.Analytics, error) {
	if userID == "" {
		return domain.Analytics{}, apperrors.InvalidInput("user id is required")
	}

	w, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return domain.Analytics{}, err
	}
	return w.AnalyticsSnapshot(), nil
}

// loadOrSeed retrieves the user's snapshot, seeding a fresh empty wishlist
// when none is stored yet.
func (s *WishlistService) loadOrSeed(ctx context.Context, userID string) (*domain.Wishlist, error) {
	w, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.New(userID, time.Now().UTC()), nil
		}
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	return w, nil
}

// save writes the full snapshot back. Every mutation is written through; the
// stored state is always the last complete snapshot.
func (s *WishlistService) save(ctx context.Context, w *domain.Wishlist) error {
	w.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, w); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}
