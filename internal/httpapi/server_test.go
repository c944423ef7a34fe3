package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kiranavoice/kirana/internal/catalog"
	"github.com/kiranavoice/kirana/internal/health"
	"github.com/kiranavoice/kirana/internal/httpapi"
	"github.com/kiranavoice/kirana/internal/understand"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	snap := catalog.Snapshot{Entries: []catalog.Entry{
		{Name: "rice", Unit: "kg"},
		{Name: "lentils", Unit: "kg"},
		{Name: "oil", Unit: "ltr"},
	}}
	s := httpapi.New(httpapi.Config{
		Interpreter: understand.New(),
		Snapshot:    snap,
	})
	return s.Handler()
}

func postInterpret(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/interpret", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestInterpretEndpoint(t *testing.T) {
	t.Parallel()

	h := testHandler(t)
	rec := postInterpret(t, h, `{"text": "add 5 kg rice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body)
	}

	type item struct {
		Name string `json:"name"`
	}
	var resp struct {
		Intent             string  `json:"intent"`
		Item               *item   `json:"item"`
		Quantity           float64 `json:"quantity"`
		Unit               string  `json:"unit"`
		QuantityDisplay    string  `json:"quantity_display"`
		NeedsClarification bool    `json:"needs_clarification"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Intent != "ADD" {
		t.Errorf("intent = %q, want ADD", resp.Intent)
	}
	if resp.Item == nil || resp.Item.Name != "rice" {
		t.Errorf("item = %+v, want rice", resp.Item)
	}
	if resp.Quantity != 5 || resp.Unit != "kg" {
		t.Errorf("quantity/unit = %v/%q, want 5/kg", resp.Quantity, resp.Unit)
	}
	if resp.QuantityDisplay != "५" {
		t.Errorf("quantity_display = %q, want %q", resp.QuantityDisplay, "५")
	}
	if resp.NeedsClarification {
		t.Error("needs_clarification = true for a fully resolved command")
	}
}

func TestInterpretEndpoint_FractionalQuantityDisplay(t *testing.T) {
	t.Parallel()

	rec := postInterpret(t, testHandler(t), `{"text": "half kg oil add"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Quantity        float64 `json:"quantity"`
		QuantityDisplay string  `json:"quantity_display"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Quantity != 0.5 || resp.QuantityDisplay != "०.५" {
		t.Errorf("quantity/display = %v/%q, want 0.5/०.५", resp.Quantity, resp.QuantityDisplay)
	}
}

func TestInterpretEndpoint_BadRequests(t *testing.T) {
	t.Parallel()

	h := testHandler(t)
	tests := []struct {
		name string
		body string
	}{
		{"empty text", `{"text": "   "}`},
		{"missing text", `{}`},
		{"unknown field", `{"text": "add rice", "audio": "zzz"}`},
		{"not json", `add rice`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := postInterpret(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestInterpretEndpoint_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interpret", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statusz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		ClassifierReady bool   `json:"classifier_ready"`
		Mode            string `json:"mode"`
		CatalogItems    int    `json:"catalog_items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ClassifierReady {
		t.Error("classifier_ready = true without a model")
	}
	if resp.Mode != "rules-only" {
		t.Errorf("mode = %q, want %q", resp.Mode, "rules-only")
	}
	if resp.CatalogItems != 3 {
		t.Errorf("catalog_items = %d, want 3", resp.CatalogItems)
	}
}

func TestProbeEndpoints(t *testing.T) {
	t.Parallel()

	failing := health.New(health.Checker{
		Name:  "catalog",
		Check: func(context.Context) error { return errors.New("empty") },
	})
	s := httpapi.New(httpapi.Config{
		Interpreter: understand.New(),
		Health:      failing,
	})
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/healthz status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/readyz status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
}
