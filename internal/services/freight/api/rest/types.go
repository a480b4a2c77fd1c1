package rest

import (
	"time"

	"github.com/EmreGurenekli/yolnext/internal/services/freight/domain"
)

type createShipmentRequest struct {
	OwnerID        string  `json:"owner_id"`
	OwnerRole      string  `json:"owner_role"`
	OriginCity     string  `json:"origin_city"`
	OriginAddress  string  `json:"origin_address"`
	DestCity       string  `json:"destination_city"`
	DestAddress    string  `json:"destination_address"`
	CargoDesc      string  `json:"cargo_description"`
	WeightKg       float64 `json:"weight_kg"`
	VolumeM3       float64 `json:"volume_m3"`
	RequestedPrice float64 `json:"requested_price"`
}

type updateShipmentStatusRequest struct {
	Status string `json:"status"`
}

type submitOfferRequest struct {
	ForwarderID string  `json:"forwarder_id"`
	Price       float64 `json:"price"`
	Message     string  `json:"message"`
}

type openListingRequest struct {
	ShipmentID  string  `json:"shipment_id"`
	ForwarderID string  `json:"forwarder_id"`
	MinPrice    float64 `json:"min_price"`
	Notes       string  `json:"notes"`
}

type cancelListingRequest struct {
	ForwarderID string `json:"forwarder_id"`
}

type placeBidRequest struct {
	CarrierID string  `json:"carrier_id"`
	Price     float64 `json:"price"`
	EtaHours  int     `json:"eta_hours"`
	Note      string  `json:"note"`
}

type shipmentResponse struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner_id"`
	OwnerRole         string    `json:"owner_role"`
	OriginCity        string    `json:"origin_city"`
	OriginAddress     string    `json:"origin_address"`
	DestCity          string    `json:"destination_city"`
	DestAddress       string    `json:"destination_address"`
	CargoDesc         string    `json:"cargo_description"`
	WeightKg          float64   `json:"weight_kg"`
	VolumeM3          float64   `json:"volume_m3"`
	RequestedPrice    float64   `json:"requested_price"`
	Status            string    `json:"status"`
	AssignedCarrierID string    `json:"assigned_carrier_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type offerResponse struct {
	ID          string    `json:"id"`
	ShipmentID  string    `json:"shipment_id"`
	ForwarderID string    `json:"forwarder_id"`
	Price       float64   `json:"price"`
	Message     string    `json:"message,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type listingResponse struct {
	ID          string    `json:"id"`
	ShipmentID  string    `json:"shipment_id"`
	ForwarderID string    `json:"forwarder_id"`
	MinPrice    float64   `json:"min_price"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type bidResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	CarrierID string    `json:"carrier_id"`
	Price     float64   `json:"price"`
	EtaHours  int       `json:"eta_hours"`
	Note      string    `json:"note,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type commissionResponse struct {
	ID          string    `json:"id"`
	ShipmentID  string    `json:"shipment_id"`
	ListingID   string    `json:"listing_id"`
	ForwarderID string    `json:"forwarder_id"`
	CarrierID   string    `json:"carrier_id"`
	OfferPrice  float64   `json:"offer_price"`
	BidPrice    float64   `json:"bid_price"`
	Margin      float64   `json:"margin"`
	CreatedAt   time.Time `json:"created_at"`
}

type acceptOfferResponse struct {
	Accepted offerResponse    `json:"accepted"`
	Rejected []offerResponse  `json:"rejected"`
	Shipment shipmentResponse `json:"shipment"`
}

type acceptBidResponse struct {
	Accepted   bidResponse        `json:"accepted"`
	Rejected   []bidResponse      `json:"rejected"`
	Listing    listingResponse    `json:"listing"`
	Shipment   shipmentResponse   `json:"shipment"`
	Commission commissionResponse `json:"commission"`
}

func toShipmentResponse(shipment domain.Shipment) shipmentResponse {
	return shipmentResponse{
		ID:                shipment.ID,
		OwnerID:           shipment.OwnerID,
		OwnerRole:         string(shipment.OwnerRole),
		OriginCity:        shipment.Origin.City,
		OriginAddress:     shipment.Origin.Address,
		DestCity:          shipment.Destination.City,
		DestAddress:       shipment.Destination.Address,
		CargoDesc:         shipment.Cargo.Description,
		WeightKg:          shipment.Cargo.WeightKg,
		VolumeM3:          shipment.Cargo.VolumeM3,
		RequestedPrice:    shipment.RequestedPrice,
		Status:            string(shipment.Status),
		AssignedCarrierID: shipment.AssignedCarrierID,
		CreatedAt:         shipment.CreatedAt,
		UpdatedAt:         shipment.UpdatedAt,
	}
}

func toOfferResponse(offer domain.Offer) offerResponse {
	return offerResponse{
		ID:          offer.ID,
		ShipmentID:  offer.ShipmentID,
		ForwarderID: offer.ForwarderID,
		Price:       offer.Price,
		Message:     offer.Message,
		Status:      string(offer.Status),
		CreatedAt:   offer.CreatedAt,
		UpdatedAt:   offer.UpdatedAt,
	}
}

func toListingResponse(listing domain.Listing) listingResponse {
	return listingResponse{
		ID:          listing.ID,
		ShipmentID:  listing.ShipmentID,
		ForwarderID: listing.ForwarderID,
		MinPrice:    listing.MinPrice,
		Notes:       listing.Notes,
		Status:      string(listing.Status),
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}

func toBidResponse(bid domain.Bid) bidResponse {
	return bidResponse{
		ID:        bid.ID,
		ListingID: bid.ListingID,
		CarrierID: bid.CarrierID,
		Price:     bid.Price,
		EtaHours:  bid.EtaHours,
		Note:      bid.Note,
		Status:    string(bid.Status),
		CreatedAt: bid.CreatedAt,
		UpdatedAt: bid.UpdatedAt,
	}
}

func toCommissionResponse(commission domain.Commission) commissionResponse {
	return commissionResponse{
		ID:          commission.ID,
		ShipmentID:  commission.ShipmentID,
		ListingID:   commission.ListingID,
		ForwarderID: commission.ForwarderID,
		CarrierID:   commission.CarrierID,
		OfferPrice:  commission.OfferPrice,
		BidPrice:    commission.BidPrice,
		Margin:      commission.Margin,
		CreatedAt:   commission.CreatedAt,
	}
}

func toOfferResponses(offers []domain.Offer) []offerResponse {
	out := make([]offerResponse, 0, len(offers))
	for _, offer := range offers {
		out = append(out, toOfferResponse(offer))
	}
	return out
}

func toBidResponses(bids []domain.Bid) []bidResponse {
	out := make([]bidResponse, 0, len(bids))
	for _, bid := range bids {
		out = append(out, toBidResponse(bid))
	}
	return out
}

func toShipmentResponses(shipments []domain.Shipment) []shipmentResponse {
	out := make([]shipmentResponse, 0, len(shipments))
	for _, shipment := range shipments {
		out = append(out, toShipmentResponse(shipment))
	}
	return out
}

func toListingResponses(listings []domain.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for _, listing := range listings {
		out = append(out, toListingResponse(listing))
	}
	return out
}

func toCommissionResponses(commissions []domain.Commission) []commissionResponse {
	out := make([]commissionResponse, 0, len(commissions))
	for _, commission := range commissions {
		out = append(out, toCommissionResponse(commission))
	}
	return out
}
