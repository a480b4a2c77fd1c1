// Package notify defines the notification dispatch port for matching events.
//
// The matching core only decides who gets told about what; delivery mechanics
// (push, email, consumer topology) live outside this module.
package notify

import (
	"context"
	"time"
)

// Event types emitted by the matching workflow.
const (
	EventOfferAccepted = "offer.accepted"
	EventOfferRejected = "offer.rejected"
	EventBidAccepted   = "bid.accepted"
	EventBidRejected   = "bid.rejected"
)

// Event is one notification: who to tell, what happened, about which entity.
type Event struct {
	RecipientID string    `json:"recipient_id"`
	Type        string    `json:"type"`
	EntityID    string    `json:"entity_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Dispatcher delivers events to an external notification channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}
