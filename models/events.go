package models

import "time"

type CatalogAction string

const (
	ActionCreated  CatalogAction = "created"
	ActionUpdated  CatalogAction = "updated"
	ActionMoved    CatalogAction = "moved"
	ActionDeleted  CatalogAction = "deleted"
	ActionRestored CatalogAction = "restored"
)

// CatalogEvent announces a committed change to a building. Building is nil
// for deletions.
type CatalogEvent struct {
	Action    CatalogAction `json:"action"`
	Key       string        `json:"id"`
	Building  *Building     `json:"building,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

func NewCatalogEvent(action CatalogAction, key string, b *Building) CatalogEvent {
	return CatalogEvent{Action: action, Key: key, Building: b, Timestamp: time.Now().Unix()}
}
