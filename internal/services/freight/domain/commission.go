package domain

import "time"

// Commission records the forwarder margin captured when a carrier is assigned:
// the accepted offer price minus the accepted bid price. It is the only piece
// of payment state owned by the matching core; ledger mechanics live elsewhere.
type Commission struct {
	ID          string
	ShipmentID  string
	ListingID   string
	ForwarderID string
	CarrierID   string
	OfferPrice  float64
	BidPrice    float64
	Margin      float64
	CreatedAt   time.Time
}
