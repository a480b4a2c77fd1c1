// Package storage defines persistence contracts for freight matching state.
//
// The storage layer owns atomicity: every multi-entity transition (accepting
// an offer, accepting a bid) is a single transaction, so either every
// invariant holds after the call returns or no write is observable.
package storage

import (
	"context"
	"time"

	apperrors "github.com/EmreGurenekli/yolnext/internal/platform/errors"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/domain"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity" states
// and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrContention indicates transient write contention on shared rows.
// It is the only retriable storage error; callers that exhaust their retry
// budget surface it unchanged as a concurrency conflict.
var ErrContention = apperrors.New(apperrors.CodeConcurrencyConflict, "storage contention")

// AcceptOfferResult captures every record mutated by one offer acceptance.
type AcceptOfferResult struct {
	Accepted domain.Offer
	Rejected []domain.Offer
	Shipment domain.Shipment
}

// AcceptBidResult captures every record mutated by one bid acceptance.
type AcceptBidResult struct {
	Accepted   domain.Bid
	Rejected   []domain.Bid
	Listing    domain.Listing
	Shipment   domain.Shipment
	Commission domain.Commission
}

// ShipmentStore owns shipment records and their lifecycle status.
type ShipmentStore interface {
	CreateShipment(ctx context.Context, shipment domain.Shipment) error
	GetShipment(ctx context.Context, id string) (domain.Shipment, error)
	// SetShipmentStatus applies a lifecycle transition; disallowed transitions
	// fail with domain.ErrInvalidShipmentTransition.
	SetShipmentStatus(ctx context.Context, id string, status domain.ShipmentStatus, now time.Time) (domain.Shipment, error)
	ListShipmentsByOwner(ctx context.Context, ownerID string) ([]domain.Shipment, error)
	// ListActiveShipmentsByCarrier returns carrier-assigned, non-terminal shipments.
	ListActiveShipmentsByCarrier(ctx context.Context, carrierID string) ([]domain.Shipment, error)
}

// OfferStore owns forwarder offers and the at-most-one-accepted invariant.
type OfferStore interface {
	// CreateOffer persists a pending offer; the referenced shipment must still
	// be pending, checked in the same transaction as the insert.
	CreateOffer(ctx context.Context, offer domain.Offer) error
	GetOffer(ctx context.Context, id string) (domain.Offer, error)
	// ListOffersByShipment returns offers ordered by creation time ascending.
	// The shipment must exist; an unknown id is ErrNotFound.
	ListOffersByShipment(ctx context.Context, shipmentID string) ([]domain.Offer, error)
	// AcceptOffer atomically accepts one pending offer, rejects its pending
	// siblings, and moves the shipment to accepted. The losing side of a race
	// observes domain.ErrOfferNotPending.
	AcceptOffer(ctx context.Context, offerID string, now time.Time) (AcceptOfferResult, error)
}

// ListingStore owns carrier-market listings and the one-open-per-shipment rule.
type ListingStore interface {
	// CreateListing persists an open listing; the shipment must be accepted,
	// the forwarder must hold the accepted offer, and no other listing for the
	// shipment may be open; all of this is checked in the insert transaction.
	CreateListing(ctx context.Context, listing domain.Listing) error
	GetListing(ctx context.Context, id string) (domain.Listing, error)
	ListListingsByForwarder(ctx context.Context, forwarderID string) ([]domain.Listing, error)
	// CancelListing closes an open listing without assignment so the shipment
	// can be re-listed.
	CancelListing(ctx context.Context, id string, now time.Time) (domain.Listing, error)
}

// BidStore owns carrier bids and the at-most-one-accepted invariant.
type BidStore interface {
	// CreateBid persists a pending bid; the referenced listing must be open,
	// checked in the same transaction as the insert.
	CreateBid(ctx context.Context, bid domain.Bid) error
	GetBid(ctx context.Context, id string) (domain.Bid, error)
	// ListBidsByListing returns bids ordered by creation time ascending.
	// The listing must exist; an unknown id is ErrNotFound.
	ListBidsByListing(ctx context.Context, listingID string) ([]domain.Bid, error)
	// AcceptBid atomically accepts one pending bid, rejects its pending
	// siblings, marks the listing assigned, assigns the carrier on the
	// shipment, and records the commission entry.
	AcceptBid(ctx context.Context, bidID string, now time.Time) (AcceptBidResult, error)
}

// CommissionStore exposes the commission entries recorded on assignment.
type CommissionStore interface {
	ListCommissionsByForwarder(ctx context.Context, forwarderID string) ([]domain.Commission, error)
}

// Store composes every persistence contract the matching service needs.
type Store interface {
	ShipmentStore
	OfferStore
	ListingStore
	BidStore
	CommissionStore
}
