package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

func TestOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, http.StatusCreated, map[string]any{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type: got %q", ct)
	}
	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if !body.Success || body.Data["id"] != "abc" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestFailMapsKinds(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{apperr.NotFound("request not found"), http.StatusNotFound, "request not found"},
		{apperr.Conflict("Request already sent and pending"), http.StatusConflict, "Request already sent and pending"},
		{apperr.InvalidState("request is already accepted"), http.StatusUnprocessableEntity, "request is already accepted"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		Fail(rec, zap.NewNop(), c.err)
		if rec.Code != c.wantStatus {
			t.Errorf("%v: status got %d, want %d", c.err, rec.Code, c.wantStatus)
		}
		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("parse body: %v", err)
		}
		if body.Success || body.Message != c.wantMsg {
			t.Errorf("%v: unexpected body %s", c.err, rec.Body.String())
		}
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	ExposeInternalErrors(false)
	rec := httptest.NewRecorder()
	Fail(rec, zap.NewNop(), errors.New("mongo: connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("raw error leaked: %s", rec.Body.String())
	}

	ExposeInternalErrors(true)
	defer ExposeInternalErrors(false)
	rec = httptest.NewRecorder()
	Fail(rec, zap.NewNop(), errors.New("mongo: connection reset"))
	if !strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("expected raw error outside prod, got %s", rec.Body.String())
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","bogus":1}`))
	err := Decode(req, &dst)
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected BadRequest, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	if err := Decode(req, &dst); err != nil {
		t.Fatalf("valid body: %v", err)
	}
	if dst.Name != "x" {
		t.Fatalf("decoded name: %q", dst.Name)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	var dst struct{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	err := Decode(req, &dst)
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}
