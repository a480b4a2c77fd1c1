// Package rest exposes the matching workflow over HTTP/JSON.
package rest

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/EmreGurenekli/yolnext/internal/platform/errors"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/domain"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/matching"
)

// Handler wires matching use-cases to echo routes.
type Handler struct {
	svc *matching.Service
}

// NewHandler builds the REST handler around the matching service.
func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts every route on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.health)

	e.POST("/shipments", h.createShipment)
	e.GET("/shipments/:id", h.getShipment)
	e.PATCH("/shipments/:id/status", h.updateShipmentStatus)
	e.GET("/shipments/:id/offers", h.listOffers)
	e.POST("/shipments/:id/offers", h.submitOffer)

	e.POST("/offers/:id/accept", h.acceptOffer)

	e.POST("/listings", h.openListing)
	e.GET("/listings/:id/bids", h.listBids)
	e.POST("/listings/:id/bids", h.placeBid)
	e.POST("/listings/:id/cancel", h.cancelListing)

	e.POST("/bids/:id/accept", h.acceptBid)

	e.GET("/forwarders/:id/listings", h.listMyListings)
	e.GET("/forwarders/:id/commissions", h.listCommissions)
	e.GET("/carriers/:id/shipments", h.listActiveForCarrier)
	e.GET("/owners/:id/shipments", h.listMyShipments)
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) createShipment(c echo.Context) error {
	var req createShipmentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	role, ok := domain.ParseOwnerRole(req.OwnerRole)
	if !ok {
		return writeError(c, domain.ErrShipmentOwnerRoleInvalid)
	}
	shipment, err := h.svc.CreateShipment(c.Request().Context(), domain.NewShipmentInput{
		OwnerID:   req.OwnerID,
		OwnerRole: role,
		Origin:    domain.Location{City: req.OriginCity, Address: req.OriginAddress},
		Destination: domain.Location{
			City:    req.DestCity,
			Address: req.DestAddress,
		},
		Cargo: domain.Cargo{
			Description: req.CargoDesc,
			WeightKg:    req.WeightKg,
			VolumeM3:    req.VolumeM3,
		},
		RequestedPrice: req.RequestedPrice,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toShipmentResponse(shipment))
}

func (h *Handler) getShipment(c echo.Context) error {
	shipment, err := h.svc.GetShipment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toShipmentResponse(shipment))
}

func (h *Handler) updateShipmentStatus(c echo.Context) error {
	var req updateShipmentStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	status, ok := domain.ParseShipmentStatus(req.Status)
	if !ok {
		return badRequest(c, "unknown shipment status")
	}
	shipment, err := h.svc.UpdateShipmentStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toShipmentResponse(shipment))
}

func (h *Handler) listOffers(c echo.Context) error {
	offers, err := h.svc.ListOffers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOfferResponses(offers))
}

func (h *Handler) submitOffer(c echo.Context) error {
	var req submitOfferRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	offer, err := h.svc.SubmitOffer(c.Request().Context(), domain.NewOfferInput{
		ShipmentID:  c.Param("id"),
		ForwarderID: req.ForwarderID,
		Price:       req.Price,
		Message:     req.Message,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toOfferResponse(offer))
}

func (h *Handler) acceptOffer(c echo.Context) error {
	result, err := h.svc.AcceptOffer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, acceptOfferResponse{
		Accepted: toOfferResponse(result.Accepted),
		Rejected: toOfferResponses(result.Rejected),
		Shipment: toShipmentResponse(result.Shipment),
	})
}

func (h *Handler) openListing(c echo.Context) error {
	var req openListingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	listing, err := h.svc.OpenListing(c.Request().Context(), domain.NewListingInput{
		ShipmentID:  req.ShipmentID,
		ForwarderID: req.ForwarderID,
		MinPrice:    req.MinPrice,
		Notes:       req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toListingResponse(listing))
}

func (h *Handler) cancelListing(c echo.Context) error {
	var req cancelListingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	listing, err := h.svc.CancelListing(c.Request().Context(), c.Param("id"), req.ForwarderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *Handler) listBids(c echo.Context) error {
	bids, err := h.svc.ListBids(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toBidResponses(bids))
}

func (h *Handler) placeBid(c echo.Context) error {
	var req placeBidRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	bid, err := h.svc.PlaceBid(c.Request().Context(), domain.NewBidInput{
		ListingID: c.Param("id"),
		CarrierID: req.CarrierID,
		Price:     req.Price,
		EtaHours:  req.EtaHours,
		Note:      req.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toBidResponse(bid))
}

func (h *Handler) acceptBid(c echo.Context) error {
	result, err := h.svc.AcceptBid(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, acceptBidResponse{
		Accepted:   toBidResponse(result.Accepted),
		Rejected:   toBidResponses(result.Rejected),
		Listing:    toListingResponse(result.Listing),
		Shipment:   toShipmentResponse(result.Shipment),
		Commission: toCommissionResponse(result.Commission),
	})
}

func (h *Handler) listMyListings(c echo.Context) error {
	listings, err := h.svc.ListMyListings(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toListingResponses(listings))
}

func (h *Handler) listCommissions(c echo.Context) error {
	commissions, err := h.svc.ListCommissions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCommissionResponses(commissions))
}

func (h *Handler) listActiveForCarrier(c echo.Context) error {
	shipments, err := h.svc.ListActiveForCarrier(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toShipmentResponses(shipments))
}

func (h *Handler) listMyShipments(c echo.Context) error {
	shipments, err := h.svc.ListMyShipments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toShipmentResponses(shipments))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
}

// writeError maps structured error codes to HTTP statuses. Conflicts carry a
// retriable hint when the underlying cause was exhausted lock contention.
func writeError(c echo.Context, err error) error {
	code := apperrors.GetCode(err)
	status := code.HTTPStatus()
	if status == http.StatusInternalServerError {
		log.Printf("rest: internal error: %v", err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	body := echo.Map{
		"error": err.Error(),
		"code":  string(code),
	}
	if apperrors.KindOf(err) == apperrors.KindConflict {
		body["retriable"] = true
	}
	return c.JSON(status, body)
}
