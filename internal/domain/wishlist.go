package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SchemaVersion is stamped on every persisted snapshot so future schema
// migrations can detect old payloads. Export blobs do not carry it.
const SchemaVersion = 1

// DefaultListID is the id of the list seeded at aggregate creation.
const DefaultListID = "default"

// MostViewedLimit caps the length of Analytics.MostViewedItems.
const MostViewedLimit = 5

// NotificationKind selects which per-item alert ToggleNotification flips.
type NotificationKind string

const (
	NotifyAvailability NotificationKind = "availability"
	NotifyPriceChange  NotificationKind = "price"
)

// Product is the catalog value object saved into a wishlist. It is supplied
// by the catalog service and treated as immutable input.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url,omitempty"`
}

// PriceAlert is a per-item price-drop alert with a target price in cents.
type PriceAlert struct {
	Enabled     bool  `json:"enabled"`
	TargetPrice int64 `json:"target_price"`
}

// Item is a saved product plus user-specific metadata. Its identity is the
// product id; the aggregate does not enforce id uniqueness, so duplicate
// saves of the same product are legal and each keeps its own metadata.
type Item struct {
	Product
	AddedAt             time.Time   `json:"added_at"`
	NotifyWhenAvailable bool        `json:"notify_when_available"`
	NotifyOnPriceChange *PriceAlert `json:"notify_on_price_change,omitempty"`
	Notes               string      `json:"notes,omitempty"`
}

// List is a named, ordered grouping of wishlist items. Insertion order is
// significant: the most recently added item is last.
type List struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Items    []Item `json:"items"`
	IsPublic bool   `json:"is_public"`
	ShareURL string `json:"share_url,omitempty"`
}

// Analytics tracks lightweight usage counters for a wishlist. It is derived
// state: callers receive copies and must not expect mutations to stick.
type Analytics struct {
	TotalViews      int       `json:"total_views"`
	TotalShares     int       `json:"total_shares"`
	MostViewedItems []string  `json:"most_viewed_items"`
	LastViewed      time.Time `json:"last_viewed"`
}

// Wishlist is the per-user aggregate: a flat item collection, the per-list
// organization of those items, and usage analytics. It is persisted and
// restored as a single snapshot.
//
// Items appear in two representations: the flat Items collection and the
// per-list Items sequences. Only AddItem and RemoveItem keep both in sync;
// MoveToList touches lists only, while the notification and price-alert
// mutators touch the flat collection only. Callers that need a membership
// answer should use the flat collection (Contains does).
type Wishlist struct {
	SchemaVersion int       `json:"schema_version"`
	UserID        string    `json:"user_id"`
	Items         []Item    `json:"items"`
	Lists         []List    `json:"lists"`
	Analytics     Analytics `json:"analytics"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New creates an empty wishlist for the given user, seeded with the default
// list and zeroed analytics.
func New(userID string, now time.Time) *Wishlist {
	return &Wishlist{
		SchemaVersion: SchemaVersion,
		UserID:        userID,
		Items:         []Item{},
		Lists: []List{
			{ID: DefaultListID, Name: "My Wishlist", Items: []Item{}},
		},
		Analytics: Analytics{MostViewedItems: []string{}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem appends a new item for the product to the flat collection and to
// the default list, stamped with the given time. No uniqueness check is
// performed. Returns the created item.
func (w *Wishlist) AddItem(p Product, now time.Time) Item {
	item := Item{Product: p, AddedAt: now}
	w.Items = append(w.Items, item)
	if l := w.FindList(DefaultListID); l != nil {
		l.Items = append(l.Items, item)
	}
	return item
}

// RemoveItem deletes every item matching the product id from the flat
// collection and from every list. Removing an unknown id is a no-op.
func (w *Wishlist) RemoveItem(productID string) {
	w.Items = withoutProduct(w.Items, productID)
	for i := range w.Lists {
		w.Lists[i].Items = withoutProduct(w.Lists[i].Items, productID)
	}
}

// MoveToList relocates the first item matching productID from one list to
// another, fields unchanged. If the source list or the item is absent the
// call is a no-op. The flat collection is not touched: list membership and
// flat membership are independent once an item has been saved.
func (w *Wishlist) MoveToList(productID, fromListID, toListID string) {
	from := w.FindList(fromListID)
	if from == nil {
		return
	}
	idx := -1
	for i := range from.Items {
		if from.Items[i].ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	item := from.Items[idx]
	from.Items = append(from.Items[:idx], from.Items[idx+1:]...)
	if to := w.FindList(toListID); to != nil {
		to.Items = append(to.Items, item)
	}
}

// UpdateItemNotes sets the notes on every item matching the product id, in
// the flat collection and in every list.
func (w *Wishlist) UpdateItemNotes(productID, notes string) {
	for i := range w.Items {
		if w.Items[i].ID == productID {
			w.Items[i].Notes = notes
		}
	}
	for li := range w.Lists {
		for i := range w.Lists[li].Items {
			if w.Lists[li].Items[i].ID == productID {
				w.Lists[li].Items[i].Notes = notes
			}
		}
	}
}

// ToggleNotification flips the given alert on every flat item matching the
// product id. For price alerts with no prior target, the target price is
// initialized to the item's current price. Unknown ids and unknown kinds
// are no-ops.
func (w *Wishlist) ToggleNotification(productID string, kind NotificationKind) {
	for i := range w.Items {
		if w.Items[i].ID != productID {
			continue
		}
		switch kind {
		case NotifyAvailability:
			w.Items[i].NotifyWhenAvailable = !w.Items[i].NotifyWhenAvailable
		case NotifyPriceChange:
			if alert := w.Items[i].NotifyOnPriceChange; alert != nil {
				alert.Enabled = !alert.Enabled
			} else {
				w.Items[i].NotifyOnPriceChange = &PriceAlert{
					Enabled:     true,
					TargetPrice: w.Items[i].Price,
				}
			}
		}
	}
}

// SetPriceAlert enables a price alert with the given target on every flat
// item matching the product id.
func (w *Wishlist) SetPriceAlert(productID string, targetPrice int64) {
	for i := range w.Items {
		if w.Items[i].ID == productID {
			w.Items[i].NotifyOnPriceChange = &PriceAlert{
				Enabled:     true,
				TargetPrice: targetPrice,
			}
		}
	}
}

// CreateList appends a new empty list with a time-derived unique id and
// returns it.
func (w *Wishlist) CreateList(name string, isPublic bool, now time.Time) List {
	l := List{
		ID:       fmt.Sprintf("list-%d", now.UnixMilli()),
		Name:     name,
		Items:    []Item{},
		IsPublic: isPublic,
	}
	w.Lists = append(w.Lists, l)
	return l
}

// DeleteList removes the list. Its items are not moved back to the default
// list; they remain reachable only through the flat collection.
func (w *Wishlist) DeleteList(listID string) {
	for i := range w.Lists {
		if w.Lists[i].ID == listID {
			w.Lists = append(w.Lists[:i], w.Lists[i+1:]...)
			return
		}
	}
}

// RenameList sets a new display name on the list.
func (w *Wishlist) RenameList(listID, newName string) {
	if l := w.FindList(listID); l != nil {
		l.Name = newName
	}
}

// ToggleListVisibility flips the list's public flag. A previously stored
// share URL is kept even when the list turns private; the URL may go stale.
func (w *Wishlist) ToggleListVisibility(listID string) {
	if l := w.FindList(listID); l != nil {
		l.IsPublic = !l.IsPublic
	}
}

// MarkShared records the published share URL on the list and counts the
// share. It is the post-publish half of the share operation and is applied
// last-write-wins against whatever snapshot exists when the publish call
// returns.
func (w *Wishlist) MarkShared(listID, url string) {
	l := w.FindList(listID)
	if l == nil {
		return
	}
	l.ShareURL = url
	w.Analytics.TotalShares++
}

// FindList returns the list with the given id, or nil.
func (w *Wishlist) FindList(listID string) *List {
	for i := range w.Lists {
		if w.Lists[i].ID == listID {
			return &w.Lists[i]
		}
	}
	return nil
}

// Contains reports whether any flat item matches the product id.
func (w *Wishlist) Contains(productID string) bool {
	for i := range w.Items {
		if w.Items[i].ID == productID {
			return true
		}
	}
	return false
}

// ClearAll empties the flat collection and all lists, and zeroes the
// analytics counters with LastViewed set to now. The default list is not
// reseeded: a cleared wishlist has no lists until the next snapshot is
// created from scratch.
func (w *Wishlist) ClearAll(now time.Time) {
	w.Items = []Item{}
	w.Lists = []List{}
	w.Analytics = Analytics{MostViewedItems: []string{}, LastViewed: now}
}

// exportPayload is the backup/transfer format: items and lists only,
// analytics intentionally excluded.
type exportPayload struct {
	Items []Item `json:"items"`
	Lists []List `json:"lists"`
}

// Export serializes the items and lists to a JSON blob for backup or
// transfer between devices.
func (w *Wishlist) Export() (string, error) {
	data, err := json.Marshal(exportPayload{Items: w.Items, Lists: w.Lists})
	if err != nil {
		return "", fmt.Errorf("marshal wishlist export: %w", err)
	}
	return string(data), nil
}

// Import replaces the items and lists from a previously exported blob.
// Collections absent from the blob default to empty. On a malformed payload
// the aggregate is left untouched and false is returned; Import never
// partially applies. Analytics are not part of the blob and keep their
// current values.
func (w *Wishlist) Import(data string) bool {
	var payload exportPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return false
	}
	if payload.Items == nil {
		payload.Items = []Item{}
	}
	if payload.Lists == nil {
		payload.Lists = []List{}
	}
	w.Items = payload.Items
	w.Lists = payload.Lists
	return true
}

// IncrementViews counts a view of the given product: bumps the view total,
// stamps LastViewed, and recomputes the most-viewed ranking. The ranking is
// a frequency count of product ids over the whole flat collection (duplicate
// saves weigh an id up), not a per-view log, so the viewed id itself does
// not change its own rank.
func (w *Wishlist) IncrementViews(productID string, now time.Time) {
	_ = productID
	w.Analytics.TotalViews++
	w.Analytics.LastViewed = now
	w.Analytics.MostViewedItems = w.topProducts(MostViewedLimit)
}

// IncrementShares bumps the share total only.
func (w *Wishlist) IncrementShares() {
	w.Analytics.TotalShares++
}

// AnalyticsSnapshot returns a copy of the analytics safe for callers to
// hold; mutating it does not affect the aggregate.
func (w *Wishlist) AnalyticsSnapshot() Analytics {
	snap := w.Analytics
	snap.MostViewedItems = append([]string{}, w.Analytics.MostViewedItems...)
	return snap
}

// topProducts returns up to limit distinct product ids ordered by descending
// occurrence count over the flat collection. Ties keep first-seen order so
// the ranking is deterministic.
func (w *Wishlist) topProducts(limit int) []string {
	counts := make(map[string]int, len(w.Items))
	order := make([]string, 0, len(w.Items))
	for i := range w.Items {
		id := w.Items[i].ID
		if _, seen := counts[id]; !seen {
			order = append(order, id)
		}
		counts[id]++
	}

	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// withoutProduct filters out every item matching the product id, preserving
// the order of the rest.
func withoutProduct(items []Item, productID string) []Item {
	kept := make([]Item, 0, len(items))
	for i := range items {
		if items[i].ID != productID {
			kept = append(kept, items[i])
		}
	}
	return kept
}
