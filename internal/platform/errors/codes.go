// Package errors provides structured error handling for the freight core.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Shipment validation errors
	CodeShipmentOwnerRequired       Code = "SHIPMENT_OWNER_REQUIRED"
	CodeShipmentOwnerRoleInvalid    Code = "SHIPMENT_OWNER_ROLE_INVALID"
	CodeShipmentOriginRequired      Code = "SHIPMENT_ORIGIN_REQUIRED"
	CodeShipmentDestinationRequired Code = "SHIPMENT_DESTINATION_REQUIRED"
	CodeShipmentWeightInvalid       Code = "SHIPMENT_WEIGHT_INVALID"
	CodeShipmentPriceInvalid        Code = "SHIPMENT_PRICE_INVALID"

	// Offer validation errors
	CodeOfferShipmentRequired  Code = "OFFER_SHIPMENT_REQUIRED"
	CodeOfferForwarderRequired Code = "OFFER_FORWARDER_REQUIRED"
	CodeOfferPriceInvalid      Code = "OFFER_PRICE_INVALID"

	// Listing validation errors
	CodeListingShipmentRequired  Code = "LISTING_SHIPMENT_REQUIRED"
	CodeListingForwarderRequired Code = "LISTING_FORWARDER_REQUIRED"
	CodeListingMinPriceInvalid   Code = "LISTING_MIN_PRICE_INVALID"

	// Bid validation errors
	CodeBidListingRequired Code = "BID_LISTING_REQUIRED"
	CodeBidCarrierRequired Code = "BID_CARRIER_REQUIRED"
	CodeBidPriceInvalid    Code = "BID_PRICE_INVALID"
	CodeBidEtaInvalid      Code = "BID_ETA_INVALID"

	// Generic input errors
	CodeIDRequired Code = "ID_REQUIRED"

	// Lookup errors
	CodeNotFound Code = "NOT_FOUND"

	// State errors
	CodeShipmentInvalidTransition Code = "SHIPMENT_INVALID_STATUS_TRANSITION"
	CodeShipmentNotPending        Code = "SHIPMENT_NOT_PENDING"
	CodeShipmentNotAccepted       Code = "SHIPMENT_NOT_ACCEPTED"
	CodeShipmentNotAssignable     Code = "SHIPMENT_NOT_ASSIGNABLE"
	CodeOfferNotPending           Code = "OFFER_NOT_PENDING"
	CodeListingNotOpen            Code = "LISTING_NOT_OPEN"
	CodeListingAlreadyOpen        Code = "LISTING_ALREADY_OPEN"
	CodeListingForwarderMismatch  Code = "LISTING_FORWARDER_MISMATCH"
	CodeBidNotPending             Code = "BID_NOT_PENDING"

	// Concurrency errors
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
)

// Kind groups codes into the caller-facing error taxonomy.
type Kind int

const (
	// KindUnknown covers unclassified failures.
	KindUnknown Kind = iota
	// KindValidation covers malformed or missing input; not retriable without correction.
	KindValidation
	// KindNotFound covers missing referenced entities.
	KindNotFound
	// KindInvalidState covers operations disallowed by current entity status.
	KindInvalidState
	// KindConflict covers exhausted lock contention; safe to retry.
	KindConflict
)

// Kind classifies the code into the error taxonomy.
func (c Code) Kind() Kind {
	switch c {
	case CodeShipmentOwnerRequired,
		CodeShipmentOwnerRoleInvalid,
		CodeShipmentOriginRequired,
		CodeShipmentDestinationRequired,
		CodeShipmentWeightInvalid,
		CodeShipmentPriceInvalid,
		CodeOfferShipmentRequired,
		CodeOfferForwarderRequired,
		CodeOfferPriceInvalid,
		CodeListingShipmentRequired,
		CodeListingForwarderRequired,
		CodeListingMinPriceInvalid,
		CodeBidListingRequired,
		CodeBidCarrierRequired,
		CodeBidPriceInvalid,
		CodeBidEtaInvalid,
		CodeIDRequired:
		return KindValidation

	case CodeNotFound:
		return KindNotFound

	case CodeShipmentInvalidTransition,
		CodeShipmentNotPending,
		CodeShipmentNotAccepted,
		CodeShipmentNotAssignable,
		CodeOfferNotPending,
		CodeListingNotOpen,
		CodeListingAlreadyOpen,
		CodeListingForwarderMismatch,
		CodeBidNotPending:
		return KindInvalidState

	case CodeConcurrencyConflict:
		return KindConflict

	default:
		return KindUnknown
	}
}

// HTTPStatus maps domain codes to HTTP status codes for the REST boundary.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
