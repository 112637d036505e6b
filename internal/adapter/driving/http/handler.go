// Package httphandler is the HTTP driving adapter serving the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dkindler/talerpanel/internal/application"
	"github.com/dkindler/talerpanel/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	settingsStore driven.SettingsStore
	saveSvc       *application.SaveService
	orderSvc      *application.OrderService
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	settingsStore driven.SettingsStore,
	saveSvc *application.SaveService,
	orderSvc *application.OrderService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		settingsStore: settingsStore,
		saveSvc:       saveSvc,
		orderSvc:      orderSvc,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with token, logging, and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/settings", h.GetSettings)
	mux.HandleFunc("POST /api/v1/settings/{group}", h.SaveSettings)
	mux.HandleFunc("POST /api/v1/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = tokenMiddleware(wrapped)

	return wrapped
}

// GetSettings returns the configured-state view of the settings record.
// Encrypted secrets are reported as booleans; nothing decrypted ever leaves
// this endpoint.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// SaveSettings processes one settings form group. The request body is a
// flat JSON object of submitted form fields; a field absent from the body
// counts as not provided, which matters for the password field.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub := application.RouteSubmission(group, fields)

	outcome, err := h.saveSvc.Save(r.Context(), sub)
	if err != nil {
		h.logger.Error("failed to save settings", "group", group, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusOK
	if outcome.Denied {
		status = http.StatusForbidden
	}

	writeJSON(w, status, SaveResponse{
		Saved:    outcome.Committed,
		Settings: toSettingsResponse(outcome.Settings),
		Notices:  toNoticeResponses(outcome.Notices),
	})
}

// CreateOrder creates an order on the merchant backend and returns its pay
// URI.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount == "" || req.Summary == "" {
		writeError(w, http.StatusBadRequest, "amount and summary are required")
		return
	}

	payURI, err := h.orderSvc.CreatePayURI(r.Context(), req.Amount, req.Summary)
	switch {
	case errors.Is(err, application.ErrBackendNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "merchant backend is not configured")
		return
	case errors.Is(err, application.ErrNoPayURI):
		writeError(w, http.StatusBadGateway, "order created but no pay URI available")
		return
	case err != nil:
		h.logger.Error("failed to create order", "error", err)
		writeError(w, http.StatusBadGateway, "merchant backend error")
		return
	}

	writeJSON(w, http.StatusOK, CreateOrderResponse{PayURI: payURI})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
