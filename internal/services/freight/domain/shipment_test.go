package domain

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/EmreGurenekli/yolnext/internal/platform/errors"
)

func validShipmentInput() NewShipmentInput {
	return NewShipmentInput{
		OwnerID:   "shipper-1",
		OwnerRole: OwnerRoleIndividual,
		Origin:    Location{City: "Istanbul", Address: "Kadikoy"},
		Destination: Location{
			City: "Ankara", Address: "Cankaya",
		},
		Cargo:          Cargo{Description: "furniture", WeightKg: 1200, VolumeM3: 8},
		RequestedPrice: 3000,
	}
}

func TestNewShipmentInitializesPending(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	shipment, err := NewShipment(validShipmentInput(), "ship-1", now)
	if err != nil {
		t.Fatalf("new shipment: %v", err)
	}
	if shipment.Status != ShipmentStatusPending {
		t.Fatalf("expected pending status, got %q", shipment.Status)
	}
	if shipment.AssignedCarrierID != "" {
		t.Fatalf("expected empty assigned carrier, got %q", shipment.AssignedCarrierID)
	}
	if !shipment.CreatedAt.Equal(now) || !shipment.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected timestamps: %v / %v", shipment.CreatedAt, shipment.UpdatedAt)
	}
}

func TestNewShipmentValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*NewShipmentInput)
		wantErr error
	}{
		{"missing owner", func(in *NewShipmentInput) { in.OwnerID = "  " }, ErrShipmentOwnerRequired},
		{"unknown role", func(in *NewShipmentInput) { in.OwnerRole = "agency" }, ErrShipmentOwnerRoleInvalid},
		{"missing origin city", func(in *NewShipmentInput) { in.Origin.City = "" }, ErrShipmentOriginRequired},
		{"missing destination city", func(in *NewShipmentInput) { in.Destination.City = " " }, ErrShipmentDestinationRequired},
		{"zero weight", func(in *NewShipmentInput) { in.Cargo.WeightKg = 0 }, ErrShipmentWeightInvalid},
		{"negative weight", func(in *NewShipmentInput) { in.Cargo.WeightKg = -5 }, ErrShipmentWeightInvalid},
		{"zero price", func(in *NewShipmentInput) { in.RequestedPrice = 0 }, ErrShipmentPriceInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			input := validShipmentInput()
			tc.mutate(&input)
			_, err := NewShipment(input, "ship-1", time.Now())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestIsShipmentTransitionAllowed(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to ShipmentStatus }{
		{ShipmentStatusPending, ShipmentStatusAccepted},
		{ShipmentStatusAccepted, ShipmentStatusCarrierAssigned},
		{ShipmentStatusCarrierAssigned, ShipmentStatusInProgress},
		{ShipmentStatusInProgress, ShipmentStatusCompleted},
		{ShipmentStatusPending, ShipmentStatusCancelled},
		{ShipmentStatusAccepted, ShipmentStatusCancelled},
		{ShipmentStatusCarrierAssigned, ShipmentStatusCancelled},
		{ShipmentStatusInProgress, ShipmentStatusCancelled},
	}
	for _, tc := range allowed {
		if !IsShipmentTransitionAllowed(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to ShipmentStatus }{
		{ShipmentStatusPending, ShipmentStatusCarrierAssigned},
		{ShipmentStatusPending, ShipmentStatusInProgress},
		{ShipmentStatusAccepted, ShipmentStatusPending},
		{ShipmentStatusAccepted, ShipmentStatusCompleted},
		{ShipmentStatusCompleted, ShipmentStatusCancelled},
		{ShipmentStatusCancelled, ShipmentStatusPending},
		{ShipmentStatusCancelled, ShipmentStatusCancelled},
		{ShipmentStatusUnspecified, ShipmentStatusCancelled},
	}
	for _, tc := range denied {
		if IsShipmentTransitionAllowed(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestInvalidTransitionErrorCarriesAttemptedPair(t *testing.T) {
	t.Parallel()

	err := InvalidTransitionError(ShipmentStatusPending, ShipmentStatusCompleted)
	if !errors.Is(err, ErrInvalidShipmentTransition) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidShipmentTransition)
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if appErr.Metadata["from"] != string(ShipmentStatusPending) {
		t.Fatalf("from = %q, want %q", appErr.Metadata["from"], ShipmentStatusPending)
	}
	if appErr.Metadata["to"] != string(ShipmentStatusCompleted) {
		t.Fatalf("to = %q, want %q", appErr.Metadata["to"], ShipmentStatusCompleted)
	}
}

func TestParseShipmentStatus(t *testing.T) {
	t.Parallel()

	if got, ok := ParseShipmentStatus(" In_Progress "); !ok || got != ShipmentStatusInProgress {
		t.Fatalf("expected in_progress, got %q ok=%v", got, ok)
	}
	if _, ok := ParseShipmentStatus("shipped"); ok {
		t.Fatal("expected unknown status to fail")
	}
}

func TestParseOwnerRole(t *testing.T) {
	t.Parallel()

	if got, ok := ParseOwnerRole("Corporate"); !ok || got != OwnerRoleCorporate {
		t.Fatalf("expected corporate, got %q ok=%v", got, ok)
	}
	if _, ok := ParseOwnerRole("broker"); ok {
		t.Fatal("expected unknown role to fail")
	}
}
