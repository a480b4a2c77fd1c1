package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	base := New(CodeOfferNotPending, "offer is not pending")
	other := New(CodeOfferNotPending, "different message, same code")
	if !stderrors.Is(other, base) {
		t.Fatal("expected errors with the same code to match")
	}

	mismatch := New(CodeBidNotPending, "bid is not pending")
	if stderrors.Is(mismatch, base) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCauseChain(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk full")
	wrapped := Wrap(CodeUnknown, "persist offer", cause)
	if !stderrors.Is(wrapped, cause) {
		t.Fatal("expected wrapped cause to remain in the chain")
	}

	rewrapped := fmt.Errorf("accept offer: %w", wrapped)
	if GetCode(rewrapped) != CodeUnknown {
		t.Fatalf("expected code to survive fmt wrapping, got %q", GetCode(rewrapped))
	}
}

func TestGetCodeOnForeignError(t *testing.T) {
	t.Parallel()

	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown for foreign error, got %q", got)
	}
	if got := GetCode(nil); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown for nil error, got %q", got)
	}
}

func TestCodeKindClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want Kind
	}{
		{CodeShipmentOriginRequired, KindValidation},
		{CodeBidEtaInvalid, KindValidation},
		{CodeNotFound, KindNotFound},
		{CodeOfferNotPending, KindInvalidState},
		{CodeListingAlreadyOpen, KindInvalidState},
		{CodeShipmentInvalidTransition, KindInvalidState},
		{CodeConcurrencyConflict, KindConflict},
		{CodeUnknown, KindUnknown},
		{Code("SOMETHING_ELSE"), KindUnknown},
	}
	for _, tc := range cases {
		if got := tc.code.Kind(); got != tc.want {
			t.Errorf("Kind(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestCodeHTTPStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want int
	}{
		{CodeShipmentWeightInvalid, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeListingNotOpen, http.StatusConflict},
		{CodeConcurrencyConflict, http.StatusConflict},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Errorf("HTTPStatus(%q) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
