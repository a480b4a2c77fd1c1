package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewOfferInitializesPending(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)
	offer, err := NewOffer(NewOfferInput{
		ShipmentID:  "ship-1",
		ForwarderID: "fwd-1",
		Price:       3200,
		Message:     "  pickup tomorrow ",
	}, "offer-1", now)
	if err != nil {
		t.Fatalf("new offer: %v", err)
	}
	if offer.Status != OfferStatusPending {
		t.Fatalf("expected pending status, got %q", offer.Status)
	}
	if offer.Message != "pickup tomorrow" {
		t.Fatalf("expected trimmed message, got %q", offer.Message)
	}
}

func TestNewOfferValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   NewOfferInput
		wantErr error
	}{
		{"missing shipment", NewOfferInput{ForwarderID: "fwd-1", Price: 100}, ErrOfferShipmentRequired},
		{"missing forwarder", NewOfferInput{ShipmentID: "ship-1", Price: 100}, ErrOfferForwarderRequired},
		{"zero price", NewOfferInput{ShipmentID: "ship-1", ForwarderID: "fwd-1"}, ErrOfferPriceInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewOffer(tc.input, "offer-1", time.Now())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNewListingValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   NewListingInput
		wantErr error
	}{
		{"missing shipment", NewListingInput{ForwarderID: "fwd-1", MinPrice: 100}, ErrListingShipmentRequired},
		{"missing forwarder", NewListingInput{ShipmentID: "ship-1", MinPrice: 100}, ErrListingForwarderRequired},
		{"zero min price", NewListingInput{ShipmentID: "ship-1", ForwarderID: "fwd-1"}, ErrListingMinPriceInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewListing(tc.input, "listing-1", time.Now())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	listing, err := NewListing(NewListingInput{
		ShipmentID:  "ship-1",
		ForwarderID: "fwd-1",
		MinPrice:    3000,
	}, "listing-1", time.Now())
	if err != nil {
		t.Fatalf("new listing: %v", err)
	}
	if listing.Status != ListingStatusOpen {
		t.Fatalf("expected open status, got %q", listing.Status)
	}
}

func TestNewBidValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   NewBidInput
		wantErr error
	}{
		{"missing listing", NewBidInput{CarrierID: "car-1", Price: 100, EtaHours: 12}, ErrBidListingRequired},
		{"missing carrier", NewBidInput{ListingID: "listing-1", Price: 100, EtaHours: 12}, ErrBidCarrierRequired},
		{"zero price", NewBidInput{ListingID: "listing-1", CarrierID: "car-1", EtaHours: 12}, ErrBidPriceInvalid},
		{"zero eta", NewBidInput{ListingID: "listing-1", CarrierID: "car-1", Price: 100}, ErrBidEtaInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewBid(tc.input, "bid-1", time.Now())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	bid, err := NewBid(NewBidInput{
		ListingID: "listing-1",
		CarrierID: "car-1",
		Price:     3100,
		EtaHours:  24,
	}, "bid-1", time.Now())
	if err != nil {
		t.Fatalf("new bid: %v", err)
	}
	if bid.Status != BidStatusPending {
		t.Fatalf("expected pending status, got %q", bid.Status)
	}
}
