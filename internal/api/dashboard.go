package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, envelope{"success": true, "data": h.engine.Stats(), "timestamp": h.timestamp()})
}

func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.engine.Alerts()
	h.JSON(w, http.StatusOK, envelope{"success": true, "count": len(alerts), "alerts": alerts, "timestamp": h.timestamp()})
}

func (h *Handler) ActiveChats(w http.ResponseWriter, r *http.Request) {
	chats := h.engine.ActiveChats()
	h.JSON(w, http.StatusOK, envelope{"success": true, "count": len(chats), "chats": chats, "timestamp": h.timestamp()})
}

func (h *Handler) BotStatus(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, envelope{"success": true, "data": h.engine.BotStatus(), "timestamp": h.timestamp()})
}

func (h *Handler) Interventions(w http.ResponseWriter, r *http.Request) {
	list := h.engine.Interventions()
	h.JSON(w, http.StatusOK, envelope{"success": true, "count": len(list), "interventions": list, "timestamp": h.timestamp()})
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, envelope{"success": true, "data": h.engine.Overview(), "timestamp": h.timestamp()})
}

// RecentUsers lists users seen within the last hour, read straight from the index.
func (h *Handler) RecentUsers(w http.ResponseWriter, r *http.Request) {
	users := h.engine.RecentUsers()
	h.JSON(w, http.StatusOK, envelope{"success": true, "count": len(users), "chats": users, "timestamp": h.timestamp()})
}

// FullHistory answers 200 with success=false for unknown users; that is an expected outcome.
func (h *Handler) FullHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	hist, ok := h.engine.History(userID)
	if !ok {
		h.JSON(w, http.StatusOK, envelope{"success": false, "error": "no messages for user " + userID})
		return
	}
	h.JSON(w, http.StatusOK, envelope{
		"success":  true,
		"user_id":  hist.UserID,
		"username": hist.Username,
		"messages": hist.Messages,
		"stats":    hist.Stats,
	})
}
