package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/ytvault/archive-server-go/internal/errors"
	"github.com/ytvault/archive-server-go/internal/model"
	"github.com/ytvault/archive-server-go/internal/service"
)

type RecoveryHandler struct {
	recoveryService *service.RecoveryService
}

func NewRecoveryHandler(recoveryService *service.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recoveryService: recoveryService}
}

func (h *RecoveryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/videos/{entityID}/recover", h.recoverEntity(model.EntityTypeVideo))
	r.Post("/channels/{entityID}/recover", h.recoverEntity(model.EntityTypeChannel))

	r.Get("/recoveries", h.ListActive)
	r.Get("/recoveries/entity/{entityID}", h.GetSession)
	r.Post("/recoveries/{sessionID}/cancel", h.Cancel)
	r.Delete("/recoveries/{sessionID}", h.Cleanup)

	return r
}

type recoverRequest struct {
	Title     string `json:"title"`
	StartYear *int   `json:"startYear"`
	EndYear   *int   `json:"endYear"`
}

// POST /v1/videos/{entityID}/recover
// POST /v1/channels/{entityID}/recover
func (h *RecoveryHandler) recoverEntity(entityType model.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID := chi.URLParam(r, "entityID")
		if entityID == "" {
			writeError(w, apperrors.MissingRequired("entity id"))
			return
		}

		var req recoverRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
				return
			}
		}

		var filter *model.RecoveryFilter
		if req.StartYear != nil || req.EndYear != nil {
			filter = &model.RecoveryFilter{StartYear: req.StartYear, EndYear: req.EndYear}
		}

		sessionID, err := h.recoveryService.StartRecovery(r.Context(), entityType, entityID, req.Title, filter)
		if err != nil {
			log.Warn().Err(err).Str("entityId", entityID).Msg("failed to start recovery")
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{"sessionId": sessionID})
	}
}

// GET /v1/recoveries
func (h *RecoveryHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	active := h.recoveryService.ActiveSessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"active":    active,
		"hasActive": len(active) > 0,
	})
}

// GET /v1/recoveries/entity/{entityID}
func (h *RecoveryHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")

	session, ok := h.recoveryService.Session(entityID)
	if !ok {
		writeError(w, apperrors.NotFound("recovery session"))
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// POST /v1/recoveries/{sessionID}/cancel
//
// Cancellation is best effort: unknown or already settled sessions are
// no-ops, so this always reports success.
func (h *RecoveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h.recoveryService.Cancel(sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// DELETE /v1/recoveries/{sessionID}
func (h *RecoveryHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h.recoveryService.Cleanup(sessionID)
	w.WriteHeader(http.StatusNoContent)
}
