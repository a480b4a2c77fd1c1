package domain

import (
	"strings"
	"time"

	apperrors "github.com/EmreGurenekli/yolnext/internal/platform/errors"
)

// BidStatus describes the lifecycle of a carrier bid.
type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

var (
	// ErrBidListingRequired indicates a missing listing reference.
	ErrBidListingRequired = apperrors.New(apperrors.CodeBidListingRequired, "bid listing id is required")
	// ErrBidCarrierRequired indicates a missing carrier reference.
	ErrBidCarrierRequired = apperrors.New(apperrors.CodeBidCarrierRequired, "bid carrier id is required")
	// ErrBidPriceInvalid indicates a non-positive bid price.
	ErrBidPriceInvalid = apperrors.New(apperrors.CodeBidPriceInvalid, "bid price must be greater than zero")
	// ErrBidEtaInvalid indicates a non-positive ETA.
	ErrBidEtaInvalid = apperrors.New(apperrors.CodeBidEtaInvalid, "bid eta hours must be greater than zero")
	// ErrBidNotPending indicates a resolution attempt on an already-resolved bid.
	ErrBidNotPending = apperrors.New(apperrors.CodeBidNotPending, "bid is not pending")
)

// Bid is one carrier's price against an open listing. A carrier may hold
// several bids on the same listing; each is resolved exactly once.
type Bid struct {
	ID        string
	ListingID string
	CarrierID string
	Price     float64
	EtaHours  int
	Note      string
	Status    BidStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBidInput carries the carrier-provided attributes for placement.
type NewBidInput struct {
	ListingID string
	CarrierID string
	Price     float64
	EtaHours  int
	Note      string
}

// NewBid validates input and builds a pending bid.
func NewBid(input NewBidInput, id string, now time.Time) (Bid, error) {
	listingID := strings.TrimSpace(input.ListingID)
	if listingID == "" {
		return Bid{}, ErrBidListingRequired
	}
	carrierID := strings.TrimSpace(input.CarrierID)
	if carrierID == "" {
		return Bid{}, ErrBidCarrierRequired
	}
	if input.Price <= 0 {
		return Bid{}, ErrBidPriceInvalid
	}
	if input.EtaHours <= 0 {
		return Bid{}, ErrBidEtaInvalid
	}

	now = now.UTC()
	return Bid{
		ID:        id,
		ListingID: listingID,
		CarrierID: carrierID,
		Price:     input.Price,
		EtaHours:  input.EtaHours,
		Note:      strings.TrimSpace(input.Note),
		Status:    BidStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
