package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/vntrieu/avalon-engine/internal/auth"
	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/lobby"
	"github.com/vntrieu/avalon-engine/internal/store"
)

// contextKey type for request context keys (avoids collisions with other packages).
type contextKey string

// PlayerContextKey is the context key for the authenticated player's claims
// (set by the RequirePlayer middleware).
const PlayerContextKey contextKey = "player"

// WithPlayer returns ctx carrying claims.
func WithPlayer(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, PlayerContextKey, claims)
}

// PlayerFromRequest returns the authenticated player, if any.
func PlayerFromRequest(r *http.Request) (games.Player, bool) {
	claims, ok := r.Context().Value(PlayerContextKey).(*auth.Claims)
	if !ok || claims == nil || claims.PlayerID == "" {
		return games.Player{}, false
	}
	return games.Player{ID: claims.PlayerID, DisplayName: claims.DisplayName}, true
}

// requestID returns the request ID from chi's context for logging.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Str("request_id", requestID(r)).Msg("encode response error")
	}
}

// writeError maps service errors onto status codes. Rule violations are
// returned verbatim; anything unexpected is logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *games.ProcessError
	switch {
	case errors.As(err, &pe) && pe.Kind == games.ErrorKindClient:
		http.Error(w, pe.Reason, http.StatusBadRequest)
	case errors.Is(err, lobby.ErrEmptyMessage), errors.Is(err, lobby.ErrMessageTooLong):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, lobby.ErrIncorrectPassword):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, lobby.ErrNotInGame):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "game not found", http.StatusNotFound)
	case errors.Is(err, store.ErrVersionConflict):
		http.Error(w, "game changed while acting; try again", http.StatusConflict)
	case errors.Is(err, lobby.ErrGameInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Error().Err(err).Str("request_id", requestID(r)).Str("path", r.URL.Path).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
