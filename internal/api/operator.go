package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sales-ai-brain/internal/ingest"
)

type botToggleRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) StopBot(w http.ResponseWriter, r *http.Request)  { h.toggleBot(w, r, true) }
func (h *Handler) StartBot(w http.ResponseWriter, r *http.Request) { h.toggleBot(w, r, false) }

func (h *Handler) toggleBot(w http.ResponseWriter, r *http.Request, stopped bool) {
	var req botToggleRequest
	if !h.decode(w, r, &req) {
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		h.Error(w, http.StatusBadRequest, "invalid user_id: required")
		return
	}
	h.store.SetBotStopped(userID, stopped, h.engine.Now())
	h.log.Info().Str("user_id", userID).Bool("bot_stopped", stopped).Msg("automation toggled")
	h.JSON(w, http.StatusOK, envelope{"success": true, "user_id": userID, "bot_stopped": stopped, "timestamp": h.timestamp()})
}

type interventionRequest struct {
	Active bool `json:"active"`
}

// SetIntervention marks that an operator has taken over the conversation, or released it.
func (h *Handler) SetIntervention(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req interventionRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.store.SetIntervention(userID, req.Active, h.engine.Now())
	h.log.Info().Str("user_id", userID).Bool("active", req.Active).Msg("intervention toggled")
	h.JSON(w, http.StatusOK, envelope{"success": true, "user_id": userID, "intervention_mode": req.Active, "timestamp": h.timestamp()})
}

type adminMessageRequest struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	AdminName string `json:"admin_name"`
}

// AdminSendMessage records the operator's message in the log and relays it to the user when a bot is attached.
func (h *Handler) AdminSendMessage(w http.ResponseWriter, r *http.Request) {
	var req adminMessageRequest
	if !h.decode(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.AdminName)
	if name == "" {
		name = "Admin"
	}
	stored, err := h.ingest.Ingest(r.Context(), ingest.Request{
		UserID:   req.UserID,
		Username: name,
		Body:     req.Message,
		IsAdmin:  true,
	})
	if err != nil {
		h.ingestError(w, err)
		return
	}

	resp := envelope{"success": true, "data": stored, "relayed": false}
	if h.relay != nil {
		if err := h.relay.SendText(r.Context(), stored.UserID, stored.Body); err != nil {
			h.log.Warn().Err(err).Str("user_id", stored.UserID).Msg("relay to chat failed")
			resp["relay_error"] = err.Error()
		} else {
			resp["relayed"] = true
		}
	}
	h.JSON(w, http.StatusOK, resp)
}
