package domain

import (
	"strings"
	"time"

	apperrors "github.com/EmreGurenekli/yolnext/internal/platform/errors"
)

// OwnerRole describes which kind of shipper owns a shipment.
type OwnerRole string

const (
	OwnerRoleUnspecified OwnerRole = ""
	OwnerRoleIndividual  OwnerRole = "individual"
	OwnerRoleCorporate   OwnerRole = "corporate"
)

// ShipmentStatus describes the shipment lifecycle label used by domain decisions.
type ShipmentStatus string

const (
	ShipmentStatusUnspecified     ShipmentStatus = ""
	ShipmentStatusPending         ShipmentStatus = "pending"
	ShipmentStatusAccepted        ShipmentStatus = "accepted"
	ShipmentStatusCarrierAssigned ShipmentStatus = "carrier_assigned"
	ShipmentStatusInProgress      ShipmentStatus = "in_progress"
	ShipmentStatusCompleted       ShipmentStatus = "completed"
	ShipmentStatusCancelled       ShipmentStatus = "cancelled"
)

var (
	// ErrShipmentOwnerRequired indicates a missing shipment owner reference.
	ErrShipmentOwnerRequired = apperrors.New(apperrors.CodeShipmentOwnerRequired, "shipment owner is required")
	// ErrShipmentOwnerRoleInvalid indicates a missing or unknown owner role.
	ErrShipmentOwnerRoleInvalid = apperrors.New(apperrors.CodeShipmentOwnerRoleInvalid, "shipment owner role is invalid")
	// ErrShipmentOriginRequired indicates a missing origin location.
	ErrShipmentOriginRequired = apperrors.New(apperrors.CodeShipmentOriginRequired, "shipment origin is required")
	// ErrShipmentDestinationRequired indicates a missing destination location.
	ErrShipmentDestinationRequired = apperrors.New(apperrors.CodeShipmentDestinationRequired, "shipment destination is required")
	// ErrShipmentWeightInvalid indicates a non-positive cargo weight.
	ErrShipmentWeightInvalid = apperrors.New(apperrors.CodeShipmentWeightInvalid, "cargo weight must be greater than zero")
	// ErrShipmentPriceInvalid indicates a non-positive requested price.
	ErrShipmentPriceInvalid = apperrors.New(apperrors.CodeShipmentPriceInvalid, "requested price must be greater than zero")
	// ErrInvalidShipmentTransition indicates a disallowed shipment status change.
	ErrInvalidShipmentTransition = apperrors.New(apperrors.CodeShipmentInvalidTransition, "shipment status transition is not allowed")
	// ErrShipmentNotPending indicates an operation that requires a pending shipment.
	ErrShipmentNotPending = apperrors.New(apperrors.CodeShipmentNotPending, "shipment is not pending")
	// ErrShipmentNotAccepted indicates an operation that requires an accepted shipment.
	ErrShipmentNotAccepted = apperrors.New(apperrors.CodeShipmentNotAccepted, "shipment is not accepted")
	// ErrShipmentNotAssignable indicates carrier assignment without a prior accepted offer.
	ErrShipmentNotAssignable = apperrors.New(apperrors.CodeShipmentNotAssignable, "shipment is not eligible for carrier assignment")
)

// Location is an origin or destination descriptor.
type Location struct {
	City    string
	Address string
}

// Cargo captures the freight attributes a forwarder prices against.
type Cargo struct {
	Description string
	WeightKg    float64
	VolumeM3    float64
}

// Shipment represents one shipper job moving through the matching workflow.
// AssignedCarrierID stays empty until a carrier-market bid is accepted.
type Shipment struct {
	ID                string
	OwnerID           string
	OwnerRole         OwnerRole
	Origin            Location
	Destination       Location
	Cargo             Cargo
	RequestedPrice    float64
	Status            ShipmentStatus
	AssignedCarrierID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewShipmentInput carries the shipper-provided attributes for creation.
type NewShipmentInput struct {
	OwnerID        string
	OwnerRole      OwnerRole
	Origin         Location
	Destination    Location
	Cargo          Cargo
	RequestedPrice float64
}

// NewShipment validates input and builds a pending shipment.
func NewShipment(input NewShipmentInput, id string, now time.Time) (Shipment, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return Shipment{}, ErrShipmentOwnerRequired
	}
	switch input.OwnerRole {
	case OwnerRoleIndividual, OwnerRoleCorporate:
	default:
		return Shipment{}, ErrShipmentOwnerRoleInvalid
	}
	if strings.TrimSpace(input.Origin.City) == "" {
		return Shipment{}, ErrShipmentOriginRequired
	}
	if strings.TrimSpace(input.Destination.City) == "" {
		return Shipment{}, ErrShipmentDestinationRequired
	}
	if input.Cargo.WeightKg <= 0 {
		return Shipment{}, ErrShipmentWeightInvalid
	}
	if input.RequestedPrice <= 0 {
		return Shipment{}, ErrShipmentPriceInvalid
	}

	now = now.UTC()
	return Shipment{
		ID:             id,
		OwnerID:        ownerID,
		OwnerRole:      input.OwnerRole,
		Origin:         trimLocation(input.Origin),
		Destination:    trimLocation(input.Destination),
		Cargo:          trimCargo(input.Cargo),
		RequestedPrice: input.RequestedPrice,
		Status:         ShipmentStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func trimLocation(loc Location) Location {
	return Location{
		City:    strings.TrimSpace(loc.City),
		Address: strings.TrimSpace(loc.Address),
	}
}

func trimCargo(c Cargo) Cargo {
	c.Description = strings.TrimSpace(c.Description)
	return c
}

// IsTerminal reports whether the status admits no further transitions.
func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentStatusCompleted || s == ShipmentStatusCancelled
}

// IsShipmentTransitionAllowed enforces valid shipment lifecycle transitions.
// Cancellation is reachable from every non-terminal status.
func IsShipmentTransitionAllowed(from, to ShipmentStatus) bool {
	if to == ShipmentStatusCancelled {
		return !from.IsTerminal() && from != ShipmentStatusUnspecified
	}
	switch from {
	case ShipmentStatusPending:
		return to == ShipmentStatusAccepted
	case ShipmentStatusAccepted:
		return to == ShipmentStatusCarrierAssigned
	case ShipmentStatusCarrierAssigned:
		return to == ShipmentStatusInProgress
	case ShipmentStatusInProgress:
		return to == ShipmentStatusCompleted
	default:
		return false
	}
}

// InvalidTransitionError reports a disallowed status change with the attempted
// from/to pair attached as metadata. It matches ErrInvalidShipmentTransition
// under errors.Is.
func InvalidTransitionError(from, to ShipmentStatus) error {
	return apperrors.WithMetadata(apperrors.CodeShipmentInvalidTransition,
		"shipment status transition is not allowed",
		map[string]string{"from": string(from), "to": string(to)})
}

// ParseShipmentStatus canonicalizes a status label from an external boundary.
func ParseShipmentStatus(value string) (ShipmentStatus, bool) {
	switch ShipmentStatus(strings.ToLower(strings.TrimSpace(value))) {
	case ShipmentStatusPending:
		return ShipmentStatusPending, true
	case ShipmentStatusAccepted:
		return ShipmentStatusAccepted, true
	case ShipmentStatusCarrierAssigned:
		return ShipmentStatusCarrierAssigned, true
	case ShipmentStatusInProgress:
		return ShipmentStatusInProgress, true
	case ShipmentStatusCompleted:
		return ShipmentStatusCompleted, true
	case ShipmentStatusCancelled:
		return ShipmentStatusCancelled, true
	default:
		return ShipmentStatusUnspecified, false
	}
}

// ParseOwnerRole canonicalizes an owner role label from an external boundary.
func ParseOwnerRole(value string) (OwnerRole, bool) {
	switch OwnerRole(strings.ToLower(strings.TrimSpace(value))) {
	case OwnerRoleIndividual:
		return OwnerRoleIndividual, true
	case OwnerRoleCorporate:
		return OwnerRoleCorporate, true
	default:
		return OwnerRoleUnspecified, false
	}
}
