package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{TooManyRequests("slow"), http.StatusTooManyRequests},
		{Upstream("provider"), http.StatusBadGateway},
		{Unavailable("off"), http.StatusServiceUnavailable},
		{Timeout("late"), http.StatusGatewayTimeout},
		{Internal("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Fatalf("expected %d for %q, got %d", tc.want, tc.err.Message, got)
		}
	}
}

func TestGetKindFollowsWrappedErrors(t *testing.T) {
	base := Upstream("provider failed")
	wrapped := fmt.Errorf("lookup: %w", base)

	if GetKind(wrapped) != KindUpstream {
		t.Fatalf("expected KindUpstream, got %v", GetKind(wrapped))
	}
	if !Is(wrapped, KindUpstream) {
		t.Fatal("expected Is to match wrapped kind")
	}
	if StatusOf(wrapped) != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", StatusOf(wrapped))
	}
}

func TestStatusOfUntypedErrorIsInternal(t *testing.T) {
	if got := StatusOf(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}

func TestErrorIncludesOp(t *testing.T) {
	err := Validation("postcode invalid").WithOp("lookup")
	if err.Error() != "lookup: postcode invalid" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
