package model

import (
	"encoding/json"
	"time"
)

// AuctionEvent is the persisted audit record of a realtime event, one row per
// published event.
type AuctionEvent struct {
	ID        int64           `json:"id"`
	AuctionID string          `json:"auction_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
