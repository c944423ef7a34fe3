package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranavoice/kirana/internal/health"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := health.New()
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("status field = %q, want %q", body.Status, "ok")
	}
}

func TestReadyz_AllChecksPass(t *testing.T) {
	t.Parallel()

	h := health.New(
		health.Checker{Name: "catalog", Check: func(context.Context) error { return nil }},
		health.Checker{Name: "model", Check: func(context.Context) error { return nil }},
	)
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Checks["catalog"] != "ok" || body.Checks["model"] != "ok" {
		t.Errorf("checks = %v, want all ok", body.Checks)
	}
}

func TestReadyz_FailingCheck(t *testing.T) {
	t.Parallel()

	h := health.New(
		health.Checker{Name: "catalog", Check: func(context.Context) error { return nil }},
		health.Checker{Name: "broken", Check: func(context.Context) error { return errors.New("boom") }},
	)
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "fail" {
		t.Errorf("status field = %q, want %q", body.Status, "fail")
	}
	if body.Checks["broken"] != "boom" {
		t.Errorf("checks[broken] = %q, want the check error", body.Checks["broken"])
	}
	if body.Checks["catalog"] != "ok" {
		t.Errorf("checks[catalog] = %q, passing checks must still report ok", body.Checks["catalog"])
	}
}
