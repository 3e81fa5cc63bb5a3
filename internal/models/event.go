package models

import "time"

// Catalog event types published after a successful write.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent notifies consumers that a product changed.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"productId"`
	Languages  []string  `json:"languages,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
