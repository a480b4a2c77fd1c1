package domain

import (
	"strings"
	"time"

	apperrors "github.com/EmreGurenekli/yolnext/internal/platform/errors"
)

// ListingStatus describes the lifecycle of a carrier-market listing.
type ListingStatus string

const (
	ListingStatusOpen      ListingStatus = "open"
	ListingStatusAssigned  ListingStatus = "assigned"
	ListingStatusCancelled ListingStatus = "cancelled"
)

var (
	// ErrListingShipmentRequired indicates a missing shipment reference.
	ErrListingShipmentRequired = apperrors.New(apperrors.CodeListingShipmentRequired, "listing shipment id is required")
	// ErrListingForwarderRequired indicates a missing forwarder reference.
	ErrListingForwarderRequired = apperrors.New(apperrors.CodeListingForwarderRequired, "listing forwarder id is required")
	// ErrListingMinPriceInvalid indicates a non-positive minimum price.
	ErrListingMinPriceInvalid = apperrors.New(apperrors.CodeListingMinPriceInvalid, "listing minimum price must be greater than zero")
	// ErrListingNotOpen indicates bidding or resolution against a closed listing.
	ErrListingNotOpen = apperrors.New(apperrors.CodeListingNotOpen, "listing is not open")
	// ErrListingAlreadyOpen indicates a second open listing for the same shipment.
	ErrListingAlreadyOpen = apperrors.New(apperrors.CodeListingAlreadyOpen, "an open listing already exists for this shipment")
	// ErrListingForwarderMismatch indicates the opener does not hold the accepted offer.
	ErrListingForwarderMismatch = apperrors.New(apperrors.CodeListingForwarderMismatch, "listing forwarder does not match the accepted offer")
)

// Listing is a winning forwarder's re-listing of an accepted shipment on the
// carrier market.
type Listing struct {
	ID          string
	ShipmentID  string
	ForwarderID string
	MinPrice    float64
	Notes       string
	Status      ListingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewListingInput carries the forwarder-provided attributes for opening.
type NewListingInput struct {
	ShipmentID  string
	ForwarderID string
	MinPrice    float64
	Notes       string
}

// NewListing validates input and builds an open listing.
func NewListing(input NewListingInput, id string, now time.Time) (Listing, error) {
	shipmentID := strings.TrimSpace(input.ShipmentID)
	if shipmentID == "" {
		return Listing{}, ErrListingShipmentRequired
	}
	forwarderID := strings.TrimSpace(input.ForwarderID)
	if forwarderID == "" {
		return Listing{}, ErrListingForwarderRequired
	}
	if input.MinPrice <= 0 {
		return Listing{}, ErrListingMinPriceInvalid
	}

	now = now.UTC()
	return Listing{
		ID:          id,
		ShipmentID:  shipmentID,
		ForwarderID: forwarderID,
		MinPrice:    input.MinPrice,
		Notes:       strings.TrimSpace(input.Notes),
		Status:      ListingStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
