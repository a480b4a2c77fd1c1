// Package memory provides an in-memory freight store for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/EmreGurenekli/yolnext/internal/services/freight/domain"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/storage"
)

// Store keeps all freight matching state behind a single mutex so the
// multi-entity accept operations stay atomic without a database.
type Store struct {
	mu          sync.RWMutex
	shipments   map[string]domain.Shipment
	offers      map[string]domain.Offer
	listings    map[string]domain.Listing
	bids        map[string]domain.Bid
	commissions map[string]domain.Commission
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		shipments:   make(map[string]domain.Shipment),
		offers:      make(map[string]domain.Offer),
		listings:    make(map[string]domain.Listing),
		bids:        make(map[string]domain.Bid),
		commissions: make(map[string]domain.Commission),
	}
}

// CreateShipment stores one pending shipment.
func (s *Store) CreateShipment(ctx context.Context, shipment domain.Shipment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipments[shipment.ID] = shipment
	return nil
}

// GetShipment returns one shipment by ID.
func (s *Store) GetShipment(ctx context.Context, id string) (domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Shipment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	shipment, ok := s.shipments[id]
	if !ok {
		return domain.Shipment{}, storage.ErrNotFound
	}
	return shipment, nil
}

// SetShipmentStatus applies a lifecycle transition.
func (s *Store) SetShipmentStatus(ctx context.Context, id string, status domain.ShipmentStatus, now time.Time) (domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Shipment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	shipment, ok := s.shipments[id]
	if !ok {
		return domain.Shipment{}, storage.ErrNotFound
	}
	if !domain.IsShipmentTransitionAllowed(shipment.Status, status) {
		return domain.Shipment{}, domain.InvalidTransitionError(shipment.Status, status)
	}
	shipment.Status = status
	shipment.UpdatedAt = now.UTC()
	s.shipments[id] = shipment
	return shipment, nil
}

// ListShipmentsByOwner returns an owner's shipments ordered by creation time.
func (s *Store) ListShipmentsByOwner(ctx context.Context, ownerID string) ([]domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Shipment
	for _, shipment := range s.shipments {
		if shipment.OwnerID == ownerID {
			result = append(result, shipment)
		}
	}
	sortShipments(result)
	return result, nil
}

// ListActiveShipmentsByCarrier returns assigned, non-terminal shipments.
func (s *Store) ListActiveShipmentsByCarrier(ctx context.Context, carrierID string) ([]domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Shipment
	for _, shipment := range s.shipments {
		if shipment.AssignedCarrierID == carrierID && !shipment.Status.IsTerminal() {
			result = append(result, shipment)
		}
	}
	sortShipments(result)
	return result, nil
}

// CreateOffer stores one pending offer after checking the shipment is pending.
func (s *Store) CreateOffer(ctx context.Context, offer domain.Offer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	shipment, ok := s.shipments[offer.ShipmentID]
	if !ok {
		return storage.ErrNotFound
	}
	if shipment.Status != domain.ShipmentStatusPending {
		return domain.ErrShipmentNotPending
	}
	s.offers[offer.ID] = offer
	return nil
}

// GetOffer returns one offer by ID.
func (s *Store) GetOffer(ctx context.Context, id string) (domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Offer{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	offer, ok := s.offers[id]
	if !ok {
		return domain.Offer{}, storage.ErrNotFound
	}
	return offer, nil
}

// ListOffersByShipment returns a shipment's offers ordered by creation time.
// An unknown shipment is storage.ErrNotFound, not an empty list.
func (s *Store) ListOffersByShipment(ctx context.Context, shipmentID string) ([]domain.Offer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.shipments[shipmentID]; !ok {
		return nil, storage.ErrNotFound
	}
	var result []domain.Offer
	for _, offer := range s.offers {
		if offer.ShipmentID == shipmentID {
			result = append(result, offer)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// AcceptOffer resolves one offer acceptance under the store mutex.
func (s *Store) AcceptOffer(ctx context.Context, offerID string, now time.Time) (storage.AcceptOfferResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.AcceptOfferResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.offers[offerID]
	if !ok {
		return storage.AcceptOfferResult{}, storage.ErrNotFound
	}
	if offer.Status != domain.OfferStatusPending {
		return storage.AcceptOfferResult{}, domain.ErrOfferNotPending
	}
	shipment, ok := s.shipments[offer.ShipmentID]
	if !ok {
		return storage.AcceptOfferResult{}, storage.ErrNotFound
	}
	if shipment.Status != domain.ShipmentStatusPending {
		return storage.AcceptOfferResult{}, domain.ErrShipmentNotPending
	}

	now = now.UTC()
	offer.Status = domain.OfferStatusAccepted
	offer.UpdatedAt = now
	s.offers[offerID] = offer

	var rejected []domain.Offer
	for id, sibling := range s.offers {
		if sibling.ShipmentID != offer.ShipmentID || id == offerID || sibling.Status != domain.OfferStatusPending {
			continue
		}
		sibling.Status = domain.OfferStatusRejected
		sibling.UpdatedAt = now
		s.offers[id] = sibling
		rejected = append(rejected, sibling)
	}
	sort.Slice(rejected, func(i, j int) bool { return rejected[i].ID < rejected[j].ID })

	shipment.Status = domain.ShipmentStatusAccepted
	shipment.UpdatedAt = now
	s.shipments[shipment.ID] = shipment

	return storage.AcceptOfferResult{Accepted: offer, Rejected: rejected, Shipment: shipment}, nil
}

// CreateListing stores one open listing after checking the shipment is
// accepted, the forwarder holds the accepted offer, and no sibling is open.
func (s *Store) CreateListing(ctx context.Context, listing domain.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	shipment, ok := s.shipments[listing.ShipmentID]
	if !ok {
		return storage.ErrNotFound
	}
	if shipment.Status != domain.ShipmentStatusAccepted {
		return domain.ErrShipmentNotAccepted
	}
	accepted, ok := s.acceptedOfferLocked(listing.ShipmentID)
	if !ok {
		return domain.ErrShipmentNotAccepted
	}
	if accepted.ForwarderID != listing.ForwarderID {
		return domain.ErrListingForwarderMismatch
	}
	for _, sibling := range s.listings {
		if sibling.ShipmentID == listing.ShipmentID && sibling.Status == domain.ListingStatusOpen {
			return domain.ErrListingAlreadyOpen
		}
	}
	s.listings[listing.ID] = listing
	return nil
}

// GetListing returns one listing by ID.
func (s *Store) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return domain.Listing{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.listings[id]
	if !ok {
		return domain.Listing{}, storage.ErrNotFound
	}
	return listing, nil
}

// ListListingsByForwarder returns a forwarder's listings ordered by creation time.
func (s *Store) ListListingsByForwarder(ctx context.Context, forwarderID string) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Listing
	for _, listing := range s.listings {
		if listing.ForwarderID == forwarderID {
			result = append(result, listing)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// CancelListing closes an open listing without assignment.
func (s *Store) CancelListing(ctx context.Context, id string, now time.Time) (domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return domain.Listing{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	listing, ok := s.listings[id]
	if !ok {
		return domain.Listing{}, storage.ErrNotFound
	}
	if listing.Status != domain.ListingStatusOpen {
		return domain.Listing{}, domain.ErrListingNotOpen
	}
	listing.Status = domain.ListingStatusCancelled
	listing.UpdatedAt = now.UTC()
	s.listings[id] = listing
	return listing, nil
}

// CreateBid stores one pending bid after checking the listing is open.
func (s *Store) CreateBid(ctx context.Context, bid domain.Bid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	listing, ok := s.listings[bid.ListingID]
	if !ok {
		return storage.ErrNotFound
	}
	if listing.Status != domain.ListingStatusOpen {
		return domain.ErrListingNotOpen
	}
	s.bids[bid.ID] = bid
	return nil
}

// GetBid returns one bid by ID.
func (s *Store) GetBid(ctx context.Context, id string) (domain.Bid, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bid{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	bid, ok := s.bids[id]
	if !ok {
		return domain.Bid{}, storage.ErrNotFound
	}
	return bid, nil
}

// ListBidsByListing returns a listing's bids ordered by creation time.
// An unknown listing is storage.ErrNotFound, not an empty list.
func (s *Store) ListBidsByListing(ctx context.Context, listingID string) ([]domain.Bid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.listings[listingID]; !ok {
		return nil, storage.ErrNotFound
	}
	var result []domain.Bid
	for _, bid := range s.bids {
		if bid.ListingID == listingID {
			result = append(result, bid)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// AcceptBid resolves one bid acceptance under the store mutex, mirroring the
// SQLite transaction: bid, siblings, listing, shipment, commission.
func (s *Store) AcceptBid(ctx context.Context, bidID string, now time.Time) (storage.AcceptBidResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.AcceptBidResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bid, ok := s.bids[bidID]
	if !ok {
		return storage.AcceptBidResult{}, storage.ErrNotFound
	}
	if bid.Status != domain.BidStatusPending {
		return storage.AcceptBidResult{}, domain.ErrBidNotPending
	}
	listing, ok := s.listings[bid.ListingID]
	if !ok {
		return storage.AcceptBidResult{}, storage.ErrNotFound
	}
	if listing.Status != domain.ListingStatusOpen {
		return storage.AcceptBidResult{}, domain.ErrListingNotOpen
	}
	shipment, ok := s.shipments[listing.ShipmentID]
	if !ok {
		return storage.AcceptBidResult{}, storage.ErrNotFound
	}
	if shipment.Status != domain.ShipmentStatusAccepted {
		return storage.AcceptBidResult{}, domain.ErrShipmentNotAssignable
	}
	acceptedOffer, ok := s.acceptedOfferLocked(listing.ShipmentID)
	if !ok {
		return storage.AcceptBidResult{}, domain.ErrShipmentNotAssignable
	}

	now = now.UTC()
	bid.Status = domain.BidStatusAccepted
	bid.UpdatedAt = now
	s.bids[bidID] = bid

	var rejected []domain.Bid
	for id, sibling := range s.bids {
		if sibling.ListingID != bid.ListingID || id == bidID || sibling.Status != domain.BidStatusPending {
			continue
		}
		sibling.Status = domain.BidStatusRejected
		sibling.UpdatedAt = now
		s.bids[id] = sibling
		rejected = append(rejected, sibling)
	}
	sort.Slice(rejected, func(i, j int) bool { return rejected[i].ID < rejected[j].ID })

	listing.Status = domain.ListingStatusAssigned
	listing.UpdatedAt = now
	s.listings[listing.ID] = listing

	shipment.Status = domain.ShipmentStatusCarrierAssigned
	shipment.AssignedCarrierID = bid.CarrierID
	shipment.UpdatedAt = now
	s.shipments[shipment.ID] = shipment

	commission := domain.Commission{
		ID:          "com-" + bid.ID,
		ShipmentID:  shipment.ID,
		ListingID:   listing.ID,
		ForwarderID: listing.ForwarderID,
		CarrierID:   bid.CarrierID,
		OfferPrice:  acceptedOffer.Price,
		BidPrice:    bid.Price,
		Margin:      acceptedOffer.Price - bid.Price,
		CreatedAt:   now,
	}
	s.commissions[commission.ID] = commission

	return storage.AcceptBidResult{
		Accepted:   bid,
		Rejected:   rejected,
		Listing:    listing,
		Shipment:   shipment,
		Commission: commission,
	}, nil
}

// ListCommissionsByForwarder returns a forwarder's commission entries.
func (s *Store) ListCommissionsByForwarder(ctx context.Context, forwarderID string) ([]domain.Commission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Commission
	for _, commission := range s.commissions {
		if commission.ForwarderID == forwarderID {
			result = append(result, commission)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) acceptedOfferLocked(shipmentID string) (domain.Offer, bool) {
	for _, offer := range s.offers {
		if offer.ShipmentID == shipmentID && offer.Status == domain.OfferStatusAccepted {
			return offer, true
		}
	}
	return domain.Offer{}, false
}

func sortShipments(shipments []domain.Shipment) {
	sort.Slice(shipments, func(i, j int) bool {
		if shipments[i].CreatedAt.Equal(shipments[j].CreatedAt) {
			return shipments[i].ID < shipments[j].ID
		}
		return shipments[i].CreatedAt.Before(shipments[j].CreatedAt)
	})
}

var _ storage.Store = (*Store)(nil)
