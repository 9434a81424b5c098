package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{BadRequest("bad"), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{InvalidState("terminal"), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v): got %d, want %d", c.err, got, c.want)
		}
	}
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	inner := NotFound("request not found")
	wrapped := fmt.Errorf("loading request: %w", inner)

	if KindOf(wrapped) != KindNotFound {
		t.Errorf("KindOf(wrapped): got %v, want KindNotFound", KindOf(wrapped))
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Error("IsKind(wrapped, KindNotFound) = false")
	}
	if IsKind(wrapped, KindConflict) {
		t.Error("IsKind(wrapped, KindConflict) = true")
	}
}

func TestErrorMessageFormatting(t *testing.T) {
	err := InvalidState("request is already %s", "accepted")
	if err.Error() != "request is already accepted" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := &Error{Kind: KindBadRequest, Message: "decode failed", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if err.Error() != "decode failed: socket closed" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
