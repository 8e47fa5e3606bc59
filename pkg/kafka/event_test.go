package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

func TestNewEvent(t *testing.T) {
	payload := testPayload{UserID: "user-1", ProductID: "prod-1"}

	evt, err := NewEvent("wishlist.item_added", "user-1", "wishlist", "wishlist-service", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, "wishlist.item_added", evt.EventType)
	assert.Equal(t, "user-1", evt.AggregateID)
	assert.Equal(t, "wishlist", evt.AggregateType)
	assert.Equal(t, "wishlist-service", evt.Source)
	assert.Equal(t, 1, evt.Version)
	assert.False(t, evt.Timestamp.IsZero())
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a, err := NewEvent("x", "agg", "t", "s", nil)
	require.NoError(t, err)
	b, err := NewEvent("x", "agg", "t", "s", nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("x", "agg", "t", "s", make(chan int))
	assert.Error(t, err)
}

func TestEvent_WithCorrelationID(t *testing.T) {
	evt, err := NewEvent("x", "agg", "t", "s", nil)
	require.NoError(t, err)

	evt.WithCorrelationID("corr-42")
	assert.Equal(t, "corr-42", evt.CorrelationID)
}

func TestEvent_MarshalAndUnmarshalData(t *testing.T) {
	payload := testPayload{UserID: "user-1", ProductID: "prod-1"}
	evt, err := NewEvent("wishlist.item_added", "user-1", "wishlist", "wishlist-service", payload)
	require.NoError(t, err)

	raw, err := evt.Marshal()
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, evt.EventID, decoded.EventID)

	var got testPayload
	require.NoError(t, decoded.UnmarshalData(&got))
	assert.Equal(t, payload, got)
}
