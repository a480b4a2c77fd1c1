package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/EmreGurenekli/yolnext/internal/services/freight/matching"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/storage"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/storage/memory"
	"github.com/EmreGurenekli/yolnext/internal/services/notify"
)

func TestFullMatchingWorkflowOverHTTP(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, memory.New())

	// Owner posts a shipment.
	var shipment shipmentResponse
	doJSON(t, e, http.MethodPost, "/shipments", `{
		"owner_id": "owner-1",
		"owner_role": "corporate",
		"origin_city": "Istanbul",
		"destination_city": "Berlin",
		"cargo_description": "machine parts",
		"weight_kg": 1200,
		"requested_price": 1000
	}`, http.StatusCreated, &shipment)
	if shipment.Status != "pending" {
		t.Fatalf("shipment status = %q, want pending", shipment.Status)
	}

	// Two forwarders submit offers.
	var offer1, offer2 offerResponse
	doJSON(t, e, http.MethodPost, "/shipments/"+shipment.ID+"/offers",
		`{"forwarder_id": "fwd-1", "price": 900}`, http.StatusCreated, &offer1)
	doJSON(t, e, http.MethodPost, "/shipments/"+shipment.ID+"/offers",
		`{"forwarder_id": "fwd-2", "price": 850}`, http.StatusCreated, &offer2)

	// Owner accepts the first offer; the second is rejected.
	var acceptOffer acceptOfferResponse
	doJSON(t, e, http.MethodPost, "/offers/"+offer1.ID+"/accept", "", http.StatusOK, &acceptOffer)
	if acceptOffer.Shipment.Status != "accepted" {
		t.Fatalf("shipment status = %q, want accepted", acceptOffer.Shipment.Status)
	}
	if len(acceptOffer.Rejected) != 1 || acceptOffer.Rejected[0].ID != offer2.ID {
		t.Fatalf("rejected = %+v, want exactly %s", acceptOffer.Rejected, offer2.ID)
	}

	// The winning forwarder opens a carrier-market listing.
	var listing listingResponse
	doJSON(t, e, http.MethodPost, "/listings", fmt.Sprintf(
		`{"shipment_id": %q, "forwarder_id": "fwd-1", "min_price": 500}`, shipment.ID),
		http.StatusCreated, &listing)

	// A carrier bids and the forwarder accepts.
	var bid bidResponse
	doJSON(t, e, http.MethodPost, "/listings/"+listing.ID+"/bids",
		`{"carrier_id": "car-1", "price": 650, "eta_hours": 48}`, http.StatusCreated, &bid)

	var acceptBid acceptBidResponse
	doJSON(t, e, http.MethodPost, "/bids/"+bid.ID+"/accept", "", http.StatusOK, &acceptBid)
	if acceptBid.Shipment.Status != "carrier_assigned" {
		t.Fatalf("shipment status = %q, want carrier_assigned", acceptBid.Shipment.Status)
	}
	if acceptBid.Shipment.AssignedCarrierID != "car-1" {
		t.Fatalf("assigned carrier = %q, want car-1", acceptBid.Shipment.AssignedCarrierID)
	}
	if acceptBid.Commission.Margin != 250 {
		t.Fatalf("commission margin = %v, want 250", acceptBid.Commission.Margin)
	}

	// The carrier sees the shipment as active work.
	var active []shipmentResponse
	doJSON(t, e, http.MethodGet, "/carriers/car-1/shipments", "", http.StatusOK, &active)
	if len(active) != 1 || active[0].ID != shipment.ID {
		t.Fatalf("active = %+v, want exactly %s", active, shipment.ID)
	}

	// The forwarder sees the recorded commission.
	var commissions []commissionResponse
	doJSON(t, e, http.MethodGet, "/forwarders/fwd-1/commissions", "", http.StatusOK, &commissions)
	if len(commissions) != 1 {
		t.Fatalf("commissions len = %d, want 1", len(commissions))
	}
}

func TestCreateShipmentValidationMapsTo400(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, memory.New())
	rec := do(t, e, http.MethodPost, "/shipments", `{
		"owner_id": "owner-1",
		"owner_role": "corporate",
		"origin_city": "Istanbul",
		"destination_city": "Berlin",
		"weight_kg": 0,
		"requested_price": 1000
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "SHIPMENT_WEIGHT_INVALID")
}

func TestUnknownOwnerRoleMapsTo400(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, memory.New())
	rec := do(t, e, http.MethodPost, "/shipments", `{"owner_id": "o", "owner_role": "alien"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestGetMissingShipmentMapsTo404(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, memory.New())
	rec := do(t, e, http.MethodGet, "/shipments/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "NOT_FOUND")
}

func TestListChildrenOfUnknownParentMapsTo404(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, memory.New())

	rec := do(t, e, http.MethodGet, "/shipments/missing/offers", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("list offers status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "NOT_FOUND")

	rec = do(t, e, http.MethodGet, "/listings/missing/bids", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("list bids status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "NOT_FOUND")
}

func TestDoubleAcceptMapsTo409(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, memory.New())
	var shipment shipmentResponse
	doJSON(t, e, http.MethodPost, "/shipments", `{
		"owner_id": "owner-1",
		"owner_role": "individual",
		"origin_city": "Izmir",
		"destination_city": "Ankara",
		"weight_kg": 100,
		"requested_price": 500
	}`, http.StatusCreated, &shipment)
	var offer1, offer2 offerResponse
	doJSON(t, e, http.MethodPost, "/shipments/"+shipment.ID+"/offers",
		`{"forwarder_id": "fwd-1", "price": 450}`, http.StatusCreated, &offer1)
	doJSON(t, e, http.MethodPost, "/shipments/"+shipment.ID+"/offers",
		`{"forwarder_id": "fwd-2", "price": 440}`, http.StatusCreated, &offer2)

	if rec := do(t, e, http.MethodPost, "/offers/"+offer1.ID+"/accept", ""); rec.Code != http.StatusOK {
		t.Fatalf("first accept status = %d: %s", rec.Code, rec.Body.String())
	}
	rec := do(t, e, http.MethodPost, "/offers/"+offer2.ID+"/accept", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second accept status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "OFFER_NOT_PENDING")
}

func TestExhaustedContentionMapsTo409WithRetriableHint(t *testing.T) {
	t.Parallel()

	store := &alwaysContendedStore{Store: memory.New()}
	e := newTestServer(t, store)
	var shipment shipmentResponse
	doJSON(t, e, http.MethodPost, "/shipments", `{
		"owner_id": "owner-1",
		"owner_role": "individual",
		"origin_city": "Izmir",
		"destination_city": "Ankara",
		"weight_kg": 100,
		"requested_price": 500
	}`, http.StatusCreated, &shipment)
	var offer offerResponse
	doJSON(t, e, http.MethodPost, "/shipments/"+shipment.ID+"/offers",
		`{"forwarder_id": "fwd-1", "price": 450}`, http.StatusCreated, &offer)

	rec := do(t, e, http.MethodPost, "/offers/"+offer.ID+"/accept", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if retriable, _ := body["retriable"].(bool); !retriable {
		t.Fatalf("body = %v, want retriable hint", body)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, memory.New())
	rec := do(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// alwaysContendedStore forces AcceptOffer to fail with retriable contention
// until the retry budget is exhausted.
type alwaysContendedStore struct {
	storage.Store
}

func (s *alwaysContendedStore) AcceptOffer(ctx context.Context, offerID string, now time.Time) (storage.AcceptOfferResult, error) {
	return storage.AcceptOfferResult{}, storage.ErrContention
}

func newTestServer(t *testing.T, store storage.Store) *echo.Echo {
	t.Helper()
	svc := matching.NewService(store, notify.LogDispatcher{}, nil, nil)
	e := echo.New()
	NewHandler(svc).Register(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string, wantStatus int, out any) {
	t.Helper()
	rec := do(t, e, method, path, body)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s status = %d, want %d: %s", method, path, rec.Code, wantStatus, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, wantCode string) {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != wantCode {
		t.Fatalf("code = %q, want %q", body.Code, wantCode)
	}
}
