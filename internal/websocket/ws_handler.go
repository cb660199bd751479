package websocket

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vntrieu/avalon-engine/internal/auth"
	"github.com/vntrieu/avalon-engine/internal/store"
)

// WSHandler upgrades GET /ws/games/{id} to a websocket for one player.
type WSHandler struct {
	hub      *Hub
	service  GameService
	verifier auth.Verifier
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *Hub, service GameService, verifier auth.Verifier) *WSHandler {
	return &WSHandler{hub: hub, service: service, verifier: verifier}
}

// HandleWebSocket authenticates the player, upgrades the connection and sends
// the player's current view before any update.
// Browsers cannot set headers on websocket requests, so the token may come
// from the query string as well as the Authorization header.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	if gameID == "" {
		http.Error(w, "game id is required", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		const prefix = "Bearer "
		if v := r.Header.Get("Authorization"); strings.HasPrefix(v, prefix) {
			token = strings.TrimSpace(v[len(prefix):])
		}
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.verifier.Verify(token)
	if err != nil {
		log.Debug().Err(err).Str("game", gameID).Msg("websocket auth failed")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.service.View(r.Context(), gameID, claims.PlayerID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("game", gameID).Msg("websocket initial view failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("game", gameID).Msg("websocket upgrade error")
		return
	}

	client := newClient(h.hub, conn, gameID, claims.PlayerID)
	client.send <- stateEnvelope(view)

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}
