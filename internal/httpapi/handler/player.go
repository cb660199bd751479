package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/avalon-engine/internal/store"
)

// Validation limits for player endpoints.
const (
	DisplayNameMinLen = 1
	DisplayNameMaxLen = 64
)

// PlayerStore creates anonymous players. *store.PlayerStore implements it.
type PlayerStore interface {
	CreatePlayer(ctx context.Context, displayName string) (*store.Player, error)
	GetPlayer(ctx context.Context, playerID string) (*store.Player, error)
}

// TokenIssuer signs player session tokens. *auth.Signer implements it.
type TokenIssuer interface {
	Issue(playerID, displayName string) (string, time.Time, error)
}

// CreatePlayerRequest is the body for POST /api/players.
type CreatePlayerRequest struct {
	DisplayName string `json:"displayName"`
}

// PlayerResponse is the response for POST /api/players (player + token).
type PlayerResponse struct {
	Player    *store.Player `json:"player"`
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expiresAt"`
}

// PlayerHandler handles player identity endpoints.
type PlayerHandler struct {
	players PlayerStore
	tokens  TokenIssuer
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(players PlayerStore, tokens TokenIssuer) *PlayerHandler {
	return &PlayerHandler{players: players, tokens: tokens}
}

func validateDisplayName(displayName string) string {
	n := utf8.RuneCountInString(strings.TrimSpace(displayName))
	if n < DisplayNameMinLen {
		return "displayName is required"
	}
	if n > DisplayNameMaxLen {
		return fmt.Sprintf("displayName must be at most %d characters", DisplayNameMaxLen)
	}
	return ""
}

// CreatePlayer handles POST /api/players
//
// @Summary      Create player
// @Description  Create an anonymous player with a display name. Returns the player and a session token.
// @Tags         players
// @Accept       json
// @Produce      json
// @Param        body  body      CreatePlayerRequest  true  "Request body"
// @Success      201   {object}  PlayerResponse
// @Failure      400   {string}  string  "Bad request (validation)"
// @Failure      429   {string}  string  "Rate limit exceeded"
// @Failure      500   {string}  string  "Server error"
// @Router       /api/players [post]
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := validateDisplayName(req.DisplayName); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	player, err := h.players.CreatePlayer(r.Context(), strings.TrimSpace(req.DisplayName))
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(r)).Msg("create player error")
		http.Error(w, "failed to create player", http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := h.tokens.Issue(player.ID, player.DisplayName)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(r)).Msg("issue token error")
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusCreated, PlayerResponse{
		Player:    player,
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// GetMe handles GET /api/me
//
// @Summary      Get current player
// @Description  Return the authenticated player's profile. Requires Bearer token.
// @Tags         players
// @Produce      json
// @Success      200   {object}  store.Player
// @Failure      401   {string}  string  "Unauthorized"
// @Router       /api/me [get]
// @Security     BearerAuth
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	me, ok := PlayerFromRequest(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	player, err := h.players.GetPlayer(r.Context(), me.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Str("request_id", requestID(r)).Msg("get player error")
		http.Error(w, "failed to get player", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, player)
}
