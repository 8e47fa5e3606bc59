package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rdev014/bio-farm-wishlist/internal/domain"
	pkgkafka "github.com/rdev014/bio-farm-wishlist/pkg/kafka"
)

// Kafka topics for wishlist domain events.
const (
	TopicItemAdded   = "biofarm.wishlist.item_added"
	TopicItemRemoved = "biofarm.wishlist.item_removed"
	TopicListShared  = "biofarm.wishlist.list_shared"
	TopicCleared     = "biofarm.wishlist.cleared"
)

// AggregateTypeWishlist identifies the aggregate in event envelopes.
const AggregateTypeWishlist = "wishlist"

// SourceWishlistService identifies this service as the event origin.
const SourceWishlistService = "wishlist-service"

// ItemAddedData is the payload for an item_added event.
type ItemAddedData struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ItemCount int    `json:"item_count"`
}

// ItemRemovedData is the payload for an item_removed event.
type ItemRemovedData struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	ItemCount int    `json:"item_count"`
}

// ListSharedData is the payload for a list_shared event.
type ListSharedData struct {
	UserID   string `json:"user_id"`
	ListID   string `json:"list_id"`
	ShareURL string `json:"share_url"`
}

// ClearedData is the payload for a cleared event.
type ClearedData struct {
	UserID string `json:"user_id"`
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the wishlist service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishItemAdded publishes an item_added event.
func (p *Producer) PublishItemAdded(ctx context.Context, userID string, item domain.Item, itemCount int) error {
	data := ItemAddedData{
		UserID:    userID,
		ProductID: item.ID,
		Name:      item.Name,
		Price:     item.Price,
		ItemCount: itemCount,
	}

	evt, err := pkgkafka.NewEvent(TopicItemAdded, userID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create item_added event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicItemAdded, evt); err != nil {
		return fmt.Errorf("publish item_added event: %w", err)
	}

	p.logger.DebugContext(ctx, "published item_added event",
		slog.String("user_id", userID),
		slog.String("product_id", item.ID),
	)

	return nil
}

// PublishItemRemoved publishes an item_removed event.
func (p *Producer) PublishItemRemoved(ctx context.Context, userID, productID string, itemCount int) error {
	data := ItemRemovedData{UserID: userID, ProductID: productID, ItemCount: itemCount}

	evt, err := pkgkafka.NewEvent(TopicItemRemoved, userID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create item_removed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicItemRemoved, evt); err != nil {
		return fmt.Errorf("publish item_removed event: %w", err)
	}

	return nil
}

// PublishListShared publishes a list_shared event.
func (p *Producer) PublishListShared(ctx context.Context, userID, listID, shareURL string) error {
	data := ListSharedData{UserID: userID, ListID: listID, ShareURL: shareURL}

	evt, err := pkgkafka.NewEvent(TopicListShared, userID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create list_shared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicListShared, evt); err != nil {
		return fmt.Errorf("publish list_shared event: %w", err)
	}

	return nil
}

// PublishCleared publishes a cleared event.
func (p *Producer) PublishCleared(ctx context.Context, userID string) error {
	data := ClearedData{UserID: userID}

	evt, err := pkgkafka.NewEvent(TopicCleared, userID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCleared, evt); err != nil {
		return fmt.Errorf("publish cleared event: %w", err)
	}

	return nil
}
