// Package relay exposes the relay service over HTTP.
package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/relay"
)

const (
	// RequestIDHeader carries the id assigned to every request.
	RequestIDHeader = "X-Request-Id"

	// CacheHeader reports whether a response was served from the cache.
	CacheHeader = "X-Relay-Cache"
)

type envelope struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
}

type handler struct {
	svc         relay.Service
	maxBodySize int64
}

// NewHandler returns the relay HTTP surface: /relay forwards GET and POST
// requests to the url query parameter and /health reports liveness. Every
// response carries permissive CORS headers and preflights answer 204.
func NewHandler(svc relay.Service) http.Handler {
	h := &handler{svc: svc, maxBodySize: relay.DefaultMaxBodySize}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/relay", h.forward).Methods(http.MethodGet, http.MethodPost)

	return withRequestID(withCORS(r))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodOptions)
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)

		ctx := logger.Derive(r.Context(), "request_id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Info(ctx, "relay request",
			"method", r.Method,
			"target", r.URL.Query().Get("url"),
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) forward(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	req := relay.Request{
		Method:      r.Method,
		Target:      target,
		ContentType: r.Header.Get("Content-Type"),
	}
	if r.Method == http.MethodPost {
		req.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	resp, err := h.svc.Forward(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	cache := "MISS"
	if resp.Cached {
		cache = "HIT"
	}
	w.Header().Set(CacheHeader, cache)
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		upErr    *relay.UpstreamError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.As(err, &upErr):
		writeJSON(w, upErr.Status, envelope{Error: "upstream request failed", Status: upErr.Status, Body: upErr.Body})
	case errors.Is(err, relay.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, relay.ErrHostNotAllowed):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, relay.ErrUpstreamUnavailable):
		logger.Warn(r.Context(), "relay upstream unavailable", "error", err)
		writeJSON(w, http.StatusBadGateway, envelope{Error: "upstream request failed", Status: http.StatusBadGateway, Body: err.Error()})
	default:
		logger.Error(r.Context(), "relay request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg})
}
