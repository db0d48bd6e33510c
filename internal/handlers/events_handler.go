package handlers

import (
	"net/http"
	"strings"

	"github.com/we-ne/sentinel/internal/httputil"
	"github.com/we-ne/sentinel/internal/logging"
	"github.com/we-ne/sentinel/internal/middleware"
	"github.com/we-ne/sentinel/internal/models"
	"github.com/we-ne/sentinel/internal/service"
)

// OverrideHeader carries the explicit acknowledgement that the caller wants
// to proceed against an active security warning.
const OverrideHeader = "X-Admin-Security-Override"

// EventsHandler serves the /events surface.
type EventsHandler struct {
	engine *service.Engine
	logger *logging.Logger
}

func NewEventsHandler(engine *service.Engine, logger *logging.Logger) *EventsHandler {
	return &EventsHandler{engine: engine, logger: logger}
}

// Create handles POST /events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	var req models.CreateEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	override := strings.EqualFold(strings.TrimSpace(r.Header.Get(OverrideHeader)), "continue")
	event, err := h.engine.CreateEvent(r.Context(), actor, &req, r.UserAgent(), override)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, event)
}

// Claim handles POST /events/claim.
func (h *EventsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req models.ClaimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.engine.ClaimEvent(r.Context(), &req)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Pause handles POST /events/pause.
func (h *EventsHandler) Pause(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	var req models.PauseEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	event, err := h.engine.PauseEvent(r.Context(), actor, &req)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}
