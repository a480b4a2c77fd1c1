package domain

import (
	"strings"
	"time"

	apperrors "github.com/EmreGurenekli/yolnext/internal/platform/errors"
)

// OfferStatus describes the lifecycle of a forwarder offer.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

var (
	// ErrOfferShipmentRequired indicates a missing shipment reference.
	ErrOfferShipmentRequired = apperrors.New(apperrors.CodeOfferShipmentRequired, "offer shipment id is required")
	// ErrOfferForwarderRequired indicates a missing forwarder reference.
	ErrOfferForwarderRequired = apperrors.New(apperrors.CodeOfferForwarderRequired, "offer forwarder id is required")
	// ErrOfferPriceInvalid indicates a non-positive offer price.
	ErrOfferPriceInvalid = apperrors.New(apperrors.CodeOfferPriceInvalid, "offer price must be greater than zero")
	// ErrOfferNotPending indicates a resolution attempt on an already-resolved offer.
	ErrOfferNotPending = apperrors.New(apperrors.CodeOfferNotPending, "offer is not pending")
)

// Offer is one forwarder's price against a pending shipment. Offers are
// immutable once they leave the pending status.
type Offer struct {
	ID          string
	ShipmentID  string
	ForwarderID string
	Price       float64
	Message     string
	Status      OfferStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOfferInput carries the forwarder-provided attributes for submission.
type NewOfferInput struct {
	ShipmentID  string
	ForwarderID string
	Price       float64
	Message     string
}

// NewOffer validates input and builds a pending offer.
func NewOffer(input NewOfferInput, id string, now time.Time) (Offer, error) {
	shipmentID := strings.TrimSpace(input.ShipmentID)
	if shipmentID == "" {
		return Offer{}, ErrOfferShipmentRequired
	}
	forwarderID := strings.TrimSpace(input.ForwarderID)
	if forwarderID == "" {
		return Offer{}, ErrOfferForwarderRequired
	}
	if input.Price <= 0 {
		return Offer{}, ErrOfferPriceInvalid
	}

	now = now.UTC()
	return Offer{
		ID:          id,
		ShipmentID:  shipmentID,
		ForwarderID: forwarderID,
		Price:       input.Price,
		Message:     strings.TrimSpace(input.Message),
		Status:      OfferStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
