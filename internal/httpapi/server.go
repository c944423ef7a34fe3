// Package httpapi exposes the understanding pipeline over a small HTTP
// surface.
//
// This is deliberately a thin demo-grade host: the pipeline owns no wire
// contract, and the real inventory backend is expected to call
// [understand.Interpreter] directly. The endpoints exist so the pipeline is
// runnable and observable on its own:
//
//	POST /interpret — interpret one utterance, returns the ResolvedCommand
//	GET  /statusz   — classifier mode and catalog size
//	GET  /healthz, /readyz, /metrics — probes and Prometheus scrape
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiranavoice/kirana/internal/catalog"
	"github.com/kiranavoice/kirana/internal/health"
	"github.com/kiranavoice/kirana/internal/observe"
	"github.com/kiranavoice/kirana/internal/understand"
	"github.com/kiranavoice/kirana/internal/understand/norm"
)

// maxBodyBytes caps the /interpret request body. Utterances are short; a
// larger body is a client bug.
const maxBodyBytes = 64 << 10

// Config wires the server's collaborators.
type Config struct {
	// Interpreter runs the pipeline. Required.
	Interpreter *understand.Interpreter

	// Snapshot is the catalog served to every interpretation.
	Snapshot catalog.Snapshot

	// Metrics receives HTTP instrumentation. Optional.
	Metrics *observe.Metrics

	// Health serves the probe endpoints. Optional; a checker-less handler
	// is used when nil.
	Health *health.Handler
}

// Server is the HTTP front for the pipeline. Safe for concurrent use.
type Server struct {
	interp  *understand.Interpreter
	snap    catalog.Snapshot
	metrics *observe.Metrics
	health  *health.Handler
}

// New constructs a [Server] from cfg.
func New(cfg Config) *Server {
	h := cfg.Health
	if h == nil {
		h = health.New()
	}
	return &Server{
		interp:  cfg.Interpreter,
		snap:    cfg.Snapshot,
		metrics: cfg.Metrics,
		health:  h,
	}
}

// Handler returns the fully wired route table, wrapped in the observability
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /interpret", s.handleInterpret)
	mux.HandleFunc("GET /statusz", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.health.Healthz)
	mux.HandleFunc("GET /readyz", s.health.Readyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(mux)
}

// interpretRequest is the /interpret request body.
type interpretRequest struct {
	// Text is the raw utterance, straight from the transcription service
	// or typed input. Treated as untrusted.
	Text string `json:"text"`
}

// interpretResponse wraps the pipeline result with display helpers.
type interpretResponse struct {
	understand.ResolvedCommand

	// QuantityDisplay is the quantity rendered in Devanagari digits for
	// user-facing responses ("१.५").
	QuantityDisplay string `json:"quantity_display"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text must not be empty"})
		return
	}

	ctx, span := observe.StartSpan(r.Context(), "understand.Interpret")
	cmd, err := s.interp.Interpret(ctx, req.Text, s.snap)
	span.End()
	if err != nil {
		// Only a malformed catalog snapshot reaches here — a server-side
		// wiring bug, not a bad request.
		slog.Error("interpretation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, interpretResponse{
		ResolvedCommand: *cmd,
		QuantityDisplay: norm.ToNativeDigits(formatQuantity(cmd.Quantity)),
	})
}

// statusResponse is the /statusz body.
type statusResponse struct {
	// ClassifierReady is false while running in rule-only mode.
	ClassifierReady bool `json:"classifier_ready"`

	// Mode is "hybrid" or "rules-only", mirroring ClassifierReady.
	Mode string `json:"mode"`

	// CatalogItems is the number of entries in the loaded snapshot.
	CatalogItems int `json:"catalog_items"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	mode := "hybrid"
	if !s.interp.Ready() {
		mode = "rules-only"
	}
	writeJSON(w, http.StatusOK, statusResponse{
		ClassifierReady: s.interp.Ready(),
		Mode:            mode,
		CatalogItems:    len(s.snap.Entries),
	})
}

// formatQuantity renders q without a trailing ".0" for whole numbers.
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		slog.Warn("response encode failed", "error", err)
	}
}
