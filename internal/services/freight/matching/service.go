// Package matching orchestrates the shipment, offer, listing, and bid
// workflow. The storage layer owns atomicity; this layer owns sequencing,
// validation policy, bounded retry, and notification fan-out.
package matching

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/EmreGurenekli/yolnext/internal/platform/errors"
	"github.com/EmreGurenekli/yolnext/internal/platform/id"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/domain"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/storage"
	"github.com/EmreGurenekli/yolnext/internal/services/notify"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("freight store is not configured")
	// ErrIDGeneratorNotConfigured indicates an ID generator is required.
	ErrIDGeneratorNotConfigured = errors.New("freight id generator is not configured")

	// ErrIDRequired indicates a lookup was attempted without an identifier.
	ErrIDRequired = apperrors.New(apperrors.CodeIDRequired, "id is required")
)

// acceptAttempts bounds retries of retriable storage contention before the
// conflict is surfaced to the caller.
const acceptAttempts = 3

const retryBackoff = 25 * time.Millisecond

// Service exposes the matching workflow use-cases.
type Service struct {
	store      storage.Store
	dispatcher notify.Dispatcher
	clock      func() time.Time
	newID      func() (string, error)
	tracer     trace.Tracer
}

// NewService constructs the matching service. A nil dispatcher disables
// notification fan-out; nil clock and ID generator fall back to defaults.
func NewService(store storage.Store, dispatcher notify.Dispatcher, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		clock:      clock,
		newID:      newID,
		tracer:     otel.Tracer("freight/matching"),
	}
}

// CreateShipment validates input and stores a pending shipment.
func (s *Service) CreateShipment(ctx context.Context, input domain.NewShipmentInput) (domain.Shipment, error) {
	ctx, span := s.start(ctx, "matching.CreateShipment")
	defer span.End()

	if s == nil || s.store == nil {
		return domain.Shipment{}, ErrStoreNotConfigured
	}
	shipmentID, err := s.nextID()
	if err != nil {
		return domain.Shipment{}, err
	}
	shipment, err := domain.NewShipment(input, shipmentID, s.nowUTC())
	if err != nil {
		return domain.Shipment{}, err
	}
	if err := s.store.CreateShipment(ctx, shipment); err != nil {
		return domain.Shipment{}, err
	}
	return shipment, nil
}

// GetShipment returns one shipment by ID.
func (s *Service) GetShipment(ctx context.Context, shipmentID string) (domain.Shipment, error) {
	ctx, span := s.start(ctx, "matching.GetShipment")
	defer span.End()

	if s == nil || s.store == nil {
		return domain.Shipment{}, ErrStoreNotConfigured
	}
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return domain.Shipment{}, ErrIDRequired
	}
	return s.store.GetShipment(ctx, shipmentID)
}

// UpdateShipmentStatus applies a lifecycle transition: carrier_assigned to
// in_progress to completed, or cancellation from any non-terminal status.
func (s *Service) UpdateShipmentStatus(ctx context.Context, shipmentID string, status domain.ShipmentStatus) (domain.Shipment, error) {
	ctx, span := s.start(ctx, "matching.UpdateShipmentStatus")
	defer span.End()

	if s == nil || s.store == nil {
		return domain.Shipment{}, ErrStoreNotConfigured
	}
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return domain.Shipment{}, ErrIDRequired
	}
	return s.store.SetShipmentStatus(ctx, shipmentID, status, s.nowUTC())
}

// ListMyShipments returns an owner's shipments ordered by creation time.
func (s *Service) ListMyShipments(ctx context.Context, ownerID string) ([]domain.Shipment, error) {
	ctx, span := s.start(ctx, "matching.ListMyShipments")
	defer span.End()

	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrIDRequired
	}
	return s.store.ListShipmentsByOwner(ctx, ownerID)
}

// ListActiveForCarrier returns a carrier's assigned, non-terminal shipments.
func (s *Service) ListActiveForCarrier(ctx context.Context, carrierID string) ([]domain.Shipment, error) {
	ctx, span := s.start(ctx, "matching.ListActiveForCarrier")
	defer span.End()

	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	carrierID = strings.TrimSpace(carrierID)
	if carrierID == "" {
		return nil, ErrIDRequired
	}
	return s.store.ListActiveShipmentsByCarrier(ctx, carrierID)
}

// SubmitOffer validates input and stores a pending offer against a pending
// shipment.
func (s *Service) SubmitOffer(ctx context.Context, input domain.NewOfferInput) (domain.Offer, error) {
	ctx, span := s.start(ctx, "matching.SubmitOffer")
	defer span.End()

	if s == nil || s.store == nil {
		return domain.Offer{}, ErrStoreNotConfigured
	}
	offerID, err := s.nextID()
	if err != nil {
		return domain.Offer{}, err
	}
	offer, err := domain.NewOffer(input, offerID, s.nowUTC())
	if err != nil {
		return domain.Offer{}, err
	}
	if err := s.store.CreateOffer(ctx, offer); err != nil {
		return domain.Offer{}, err
	}
	return offer, nil
}

// ListOffers returns a shipment's offers ordered by creation time.
func (s *Service) ListOffers(ctx context.Context, shipmentID string) ([]domain.Offer, error) {
	ctx, span := s.start(ctx, "matching.ListOffers")
	defer span.End()

	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return nil, ErrIDRequired
	}
	return s.store.ListOffersByShipment(ctx, shipmentID)
}

// AcceptOffer accepts one pending offer, rejecting its pending siblings and
// moving the shipment to accepted. The first committed accept wins; later
// attempts observe the offer as no longer pending. Retriable storage
// contention is retried before the conflict is surfaced.
func (s *Service) AcceptOffer(ctx context.Context, offerID string) (storage.AcceptOfferResult, error) {
	ctx, span := s.start(ctx, "matching.AcceptOffer")
	defer span.End()

	if s == nil || s.store == nil {
		return storage.AcceptOfferResult{}, ErrStoreNotConfigured
	}
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return storage.AcceptOfferResult{}, ErrIDRequired
	}

	var result storage.AcceptOfferResult
	err := s.withRetry(ctx, func() error {
		var err error
		result, err = s.store.AcceptOffer(ctx, offerID, s.nowUTC())
		return err
	})
	if err != nil {
		return storage.AcceptOfferResult{}, err
	}

	s.dispatch(ctx, notify.Event{
		RecipientID: result.Shipment.OwnerID,
		Type:        notify.EventOfferAccepted,
		EntityID:    result.Accepted.ID,
		OccurredAt:  result.Accepted.UpdatedAt,
	})
	s.dispatch(ctx, notify.Event{
		RecipientID: result.Accepted.ForwarderID,
		Type:        notify.EventOfferAccepted,
		EntityID:    result.Accepted.ID,
		OccurredAt:  result.Accepted.UpdatedAt,
	})
	for _, rejected := range result.Rejected {
		s.dispatch(ctx, notify.Event{
			RecipientID: rejected.ForwarderID,
			Type:        notify.EventOfferRejected,
			EntityID:    rejected.ID,
			OccurredAt:  rejected.UpdatedAt,
		})
	}
	return result, nil
}

// OpenListing validates input and opens a carrier-market listing for an
// accepted shipment.
func (s *Service) OpenListing(ctx context.Context, input domain.NewListingInput) (domain.Listing, error) {
	ctx, span := s.start(ctx, "matching.OpenListing")
	defer span.End()

	if s == nil || s.store == nil {
		return domain.Listing{}, ErrStoreNotConfigured
	}
	listingID, err := s.nextID()
	if err != nil {
		return domain.Listing{}, err
	}
	listing, err := domain.NewListing(input, listingID, s.nowUTC())
	if err != nil {
		return domain.Listing{}, err
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

// CancelListing closes an open listing without assignment. Only the forwarder
// who opened the listing may cancel it.
func (s *Service) CancelListing(ctx context.Context, listingID, forwarderID string) (domain.Listing, error) {
	ctx, span := s.start(ctx, "matching.CancelListing")
	defer span.End()

	if s == nil || s.store == nil {
		return domain.Listing{}, ErrStoreNotConfigured
	}
	listingID = strings.TrimSpace(listingID)
	forwarderID = strings.TrimSpace(forwarderID)
	if listingID == "" || forwarderID == "" {
		return domain.Listing{}, ErrIDRequired
	}
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return domain.Listing{}, err
	}
	if listing.ForwarderID != forwarderID {
		return domain.Listing{}, domain.ErrListingForwarderMismatch
	}
	return s.store.CancelListing(ctx, listingID, s.nowUTC())
}

// ListMyListings returns a forwarder's listings ordered by creation time.
func (s *Service) ListMyListings(ctx context.Context, forwarderID string) ([]domain.Listing, error) {
	ctx, span := s.start(ctx, "matching.ListMyListings")
	defer span.End()

	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	forwarderID = strings.TrimSpace(forwarderID)
	if forwarderID == "" {
		return nil, ErrIDRequired
	}
	return s.store.ListListingsByForwarder(ctx, forwarderID)
}

// PlaceBid validates input and stores a pending bid against an open listing.
func (s *Service) PlaceBid(ctx context.Context, input domain.NewBidInput) (domain.Bid, error) {
	ctx, span := s.start(ctx, "matching.PlaceBid")
	defer span.End()

	if s == nil || s.store == nil {
		return domain.Bid{}, ErrStoreNotConfigured
	}
	bidID, err := s.nextID()
	if err != nil {
		return domain.Bid{}, err
	}
	bid, err := domain.NewBid(input, bidID, s.nowUTC())
	if err != nil {
		return domain.Bid{}, err
	}
	if err := s.store.CreateBid(ctx, bid); err != nil {
		return domain.Bid{}, err
	}
	return bid, nil
}

// ListBids returns a listing's bids ordered by creation time.
func (s *Service) ListBids(ctx context.Context, listingID string) ([]domain.Bid, error) {
	ctx, span := s.start(ctx, "matching.ListBids")
	defer span.End()

	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return nil, ErrIDRequired
	}
	return s.store.ListBidsByListing(ctx, listingID)
}

// AcceptBid accepts one pending bid, rejecting its siblings, assigning the
// listing and the shipment's carrier, and recording the commission entry.
func (s *Service) AcceptBid(ctx context.Context, bidID string) (storage.AcceptBidResult, error) {
	ctx, span := s.start(ctx, "matching.AcceptBid")
	defer span.End()

	if s == nil || s.store == nil {
		return storage.AcceptBidResult{}, ErrStoreNotConfigured
	}
	bidID = strings.TrimSpace(bidID)
	if bidID == "" {
		return storage.AcceptBidResult{}, ErrIDRequired
	}

	var result storage.AcceptBidResult
	err := s.withRetry(ctx, func() error {
		var err error
		result, err = s.store.AcceptBid(ctx, bidID, s.nowUTC())
		return err
	})
	if err != nil {
		return storage.AcceptBidResult{}, err
	}

	s.dispatch(ctx, notify.Event{
		RecipientID: result.Accepted.CarrierID,
		Type:        notify.EventBidAccepted,
		EntityID:    result.Accepted.ID,
		OccurredAt:  result.Accepted.UpdatedAt,
	})
	s.dispatch(ctx, notify.Event{
		RecipientID: result.Shipment.OwnerID,
		Type:        notify.EventBidAccepted,
		EntityID:    result.Accepted.ID,
		OccurredAt:  result.Accepted.UpdatedAt,
	})
	for _, rejected := range result.Rejected {
		s.dispatch(ctx, notify.Event{
			RecipientID: rejected.CarrierID,
			Type:        notify.EventBidRejected,
			EntityID:    rejected.ID,
			OccurredAt:  rejected.UpdatedAt,
		})
	}
	return result, nil
}

// ListCommissions returns a forwarder's commission entries.
func (s *Service) ListCommissions(ctx context.Context, forwarderID string) ([]domain.Commission, error) {
	ctx, span := s.start(ctx, "matching.ListCommissions")
	defer span.End()

	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	forwarderID = strings.TrimSpace(forwarderID)
	if forwarderID == "" {
		return nil, ErrIDRequired
	}
	return s.store.ListCommissionsByForwarder(ctx, forwarderID)
}

// withRetry runs fn up to acceptAttempts times, retrying only retriable
// storage contention. The final contention error surfaces unchanged as the
// concurrency conflict.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < acceptAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
		err = fn()
		if err == nil || !errors.Is(err, storage.ErrContention) {
			return err
		}
	}
	return err
}

// dispatch sends one notification best-effort. Delivery is external and never
// blocks a committed state change.
func (s *Service) dispatch(ctx context.Context, event notify.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		log.Printf("matching: dispatch %s to %s failed: %v", event.Type, event.RecipientID, err)
	}
}

func (s *Service) start(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return otel.Tracer("freight/matching").Start(ctx, name)
	}
	return s.tracer.Start(ctx, name)
}

func (s *Service) nextID() (string, error) {
	if s.newID == nil {
		return "", ErrIDGeneratorNotConfigured
	}
	return s.newID()
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}
