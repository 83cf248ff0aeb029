package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"sales-ai-brain/internal/analytics"
	"sales-ai-brain/internal/conversation"
	"sales-ai-brain/internal/ingest"
	"sales-ai-brain/internal/memory"
	"sales-ai-brain/internal/realtime"
)

const version = "1.0.0"

// Relay delivers an operator's message to the user on the chat channel.
type Relay interface {
	SendText(ctx context.Context, userID, text string) error
}

// Pinger is an optional backend health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type envelope map[string]any

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store  *conversation.Store
	engine *analytics.Engine
	ingest *ingest.Service
	hub    *realtime.Hub
	memory *memory.Cache
	relay  Relay
	pinger Pinger
	log    zerolog.Logger
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		h.log.Warn().Err(err).Msg("failed to write response")
	}
}

// Error sends the failure envelope with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, envelope{"success": false, "error": message})
}

func (h *Handler) timestamp() string {
	return h.engine.Now().UTC().Format(time.RFC3339)
}

// decode reads a JSON body and answers 400 itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// ingestError maps ingestion failures onto status codes.
func (h *Handler) ingestError(w http.ResponseWriter, err error) {
	var ve *ingest.ValidationError
	if errors.As(err, &ve) {
		h.Error(w, http.StatusBadRequest, ve.Error())
		return
	}
	h.log.Error().Err(err).Msg("ingest failed")
	h.Error(w, http.StatusInternalServerError, "failed to store message")
}
