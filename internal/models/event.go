package models

import (
	"encoding/json"
	"time"
)

// EventType names a state change pushed to subscribers
type EventType string

const (
	EventMinted           EventType = "minted"
	EventRoyaltiesUpdated EventType = "royalties_updated"
	EventViewerAdded      EventType = "viewer_added"
)

// Event is broadcast after a transaction commits
type Event struct {
	Type    EventType       `json:"type"`
	AssetID uint64          `json:"asset_id"`
	Address string          `json:"address,omitempty"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
