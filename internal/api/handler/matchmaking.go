package handler

import (
	"net/http"

	"github.com/mcoot/matchqueue/internal/api/middleware"
	"github.com/mcoot/matchqueue/internal/api/request"
	"github.com/mcoot/matchqueue/internal/api/response"
	"github.com/mcoot/matchqueue/internal/services/matchmaking"
	"github.com/mcoot/matchqueue/internal/sse"
)

// MatchmakingHandler handles matchmaking queue endpoints
type MatchmakingHandler struct {
	engine *matchmaking.Engine
	events *sse.Hub
}

// NewMatchmakingHandler creates a new matchmaking handler
func NewMatchmakingHandler(engine *matchmaking.Engine, events *sse.Hub) *MatchmakingHandler {
	return &MatchmakingHandler{
		engine: engine,
		events: events,
	}
}

// Enqueue handles POST /api/v1/matchmaking/queue
func (h *MatchmakingHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req request.EnqueueRequest
	if err := request.Decode(r.Body, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	token := middleware.MustGetToken(r.Context())

	entry, err := h.engine.EnqueueForMatch(r.Context(), token, req.Kind)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, response.QueueEntryFromModel(entry))
}

// Cancel handles DELETE /api/v1/matchmaking/queue
func (h *MatchmakingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	token := middleware.MustGetToken(r.Context())

	if err := h.engine.CancelMatch(r.Context(), token); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Status handles GET /api/v1/matchmaking/status
func (h *MatchmakingHandler) Status(w http.ResponseWriter, r *http.Request) {
	token := middleware.MustGetToken(r.Context())

	status, err := h.engine.MatchStatus(r.Context(), token)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchStatusFromModel(status))
}

// Events handles GET /api/v1/matchmaking/events
func (h *MatchmakingHandler) Events(w http.ResponseWriter, r *http.Request) {
	sse.ServeSSE(w, r, h.events, middleware.GetUsername(r.Context()))
}
