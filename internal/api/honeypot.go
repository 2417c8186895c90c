package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/engine"
)

// maxMessageBytes caps the inbound request body. Scam messages are
// short; anything larger is abuse.
const maxMessageBytes = 64 * 1024

// HoneypotHandler handles conversation endpoints.
type HoneypotHandler struct {
	eng    *engine.Engine
	health func(ctx context.Context) error
}

// NewHoneypotHandler creates a handler around the turn engine. The
// health func checks the session backend and may be nil.
func NewHoneypotHandler(eng *engine.Engine, health func(ctx context.Context) error) *HoneypotHandler {
	return &HoneypotHandler{eng: eng, health: health}
}

// RegisterRoutes registers conversation routes.
func (h *HoneypotHandler) RegisterRoutes(r chi.Router) {
	r.Post("/honeypot", h.Turn)
	r.Get("/reports/{sessionID}", h.Report)
}

// Turn processes one scammer message and returns the agent's reply.
func (h *HoneypotHandler) Turn(w http.ResponseWriter, r *http.Request) {
	var req engine.TurnRequest
	body := http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		turnError(w, http.StatusBadRequest, req.SessionID, "message is required")
		return
	}

	resp, err := h.eng.ProcessTurn(r.Context(), req)
	if err != nil {
		slog.Error("Turn processing failed", "error", err, "session_id", resp.SessionID)
		// The engine resolves the session id before anything can fail,
		// so the caller still learns which session the error belongs to.
		turnError(w, http.StatusInternalServerError, resp.SessionID, "failed to process message")
		return
	}

	JSON(w, http.StatusOK, resp)
}

// turnError writes a partial turn response so failures still identify
// the session they belong to.
func turnError(w http.ResponseWriter, status int, sessionID, message string) {
	JSON(w, status, engine.TurnResponse{
		SessionID: sessionID,
		Status:    engine.StatusError,
		Error:     message,
	})
}

// Report returns the intelligence report for a session, live or
// archived.
func (h *HoneypotHandler) Report(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	rep, err := h.eng.Report(r.Context(), sessionID)
	if err != nil {
		slog.Error("Report lookup failed", "error", err, "session_id", sessionID)
		Error(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if rep == nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	JSON(w, http.StatusOK, rep)
}

// Health returns the health status of the API and its dependencies.
func (h *HoneypotHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]interface{}{
		"status": "healthy",
		"checks": map[string]string{"api": "ok"},
	}
	statusCode := http.StatusOK

	if h.health != nil {
		if err := h.health(ctx); err != nil {
			slog.Error("Health check failed", "error", err)
			status["status"] = "degraded"
			status["checks"].(map[string]string)["sessions"] = "unreachable"
			statusCode = http.StatusServiceUnavailable
		} else {
			status["checks"].(map[string]string)["sessions"] = "ok"
		}
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HoneypotHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
