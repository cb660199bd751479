package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/lobby"
	"github.com/vntrieu/avalon-engine/internal/store"
)

// GameService is the lobby as seen by the HTTP layer. *lobby.Manager
// implements it.
type GameService interface {
	CreateGame(ctx context.Context, gm games.Player, ruleset []games.Rule, maxPlayers int, password string) (*games.GameState, error)
	JoinGame(ctx context.Context, gameID string, player games.Player, password string) (*games.GameState, error)
	Act(ctx context.Context, gameID, actorID string, action games.Action) (*games.GameState, error)
	View(ctx context.Context, gameID, playerID string) (lobby.PlayerView, error)
	Info(ctx context.Context, gameID string) (games.GameInfo, error)
	ListOpen(ctx context.Context) ([]games.GameInfo, error)
	ListJoined(ctx context.Context, playerID string) ([]games.GameInfo, error)
	Chat(ctx context.Context, gameID, playerID, text string) (*store.ChatMessage, error)
	ChatHistory(ctx context.Context, gameID, playerID string) ([]store.ChatMessage, error)
	History(ctx context.Context, gameID string) ([]store.ActionRecord, error)
}

// CreateGameRequest is the body for POST /api/games.
type CreateGameRequest struct {
	Ruleset    []string `json:"ruleset"`
	MaxPlayers int      `json:"maxPlayers"`
	Password   string   `json:"password,omitempty"`
}

// JoinGameRequest is the body for POST /api/games/{id}/join.
type JoinGameRequest struct {
	Password string `json:"password,omitempty"`
}

// ChatRequest is the body for POST /api/games/{id}/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// PasswordMaxLen is the longest password bcrypt accepts.
const PasswordMaxLen = 72

// GameHandler handles game-related HTTP requests.
type GameHandler struct {
	service GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(service GameService) *GameHandler {
	return &GameHandler{service: service}
}

// ListOpen handles GET /api/games
//
// @Summary      List open games
// @Description  Games still waiting for players.
// @Tags         games
// @Produce      json
// @Success      200  {array}   games.GameInfo
// @Failure      500  {string}  string  "Server error"
// @Router       /api/games [get]
func (h *GameHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.ListOpen(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, infos)
}

// ListMine handles GET /api/me/games
//
// @Summary      List my games
// @Description  Every game the authenticated player has a seat in.
// @Tags         games
// @Produce      json
// @Success      200  {array}   games.GameInfo
// @Failure      401  {string}  string  "Unauthorized"
// @Security     BearerAuth
// @Router       /api/me/games [get]
func (h *GameHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	me, ok := PlayerFromRequest(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	infos, err := h.service.ListJoined(r.Context(), me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, infos)
}

// CreateGame handles POST /api/games
//
// @Summary      Create game
// @Description  Open a new game. The caller becomes game master and takes the first seat.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        body  body      CreateGameRequest  true  "Request body"
// @Success      201   {object}  games.GameInfo
// @Failure      400   {string}  string  "Invalid ruleset or player count"
// @Failure      401   {string}  string  "Unauthorized"
// @Security     BearerAuth
// @Router       /api/games [post]
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	me, ok := PlayerFromRequest(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Password) > PasswordMaxLen {
		http.Error(w, "password is too long", http.StatusBadRequest)
		return
	}
	ruleset := make([]games.Rule, 0, len(req.Ruleset))
	for _, name := range req.Ruleset {
		rule, err := games.ParseRule(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ruleset = append(ruleset, rule)
	}

	state, err := h.service.CreateGame(r.Context(), me, ruleset, req.MaxPlayers, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, games.Info(state))
}

// GetGame handles GET /api/games/{id}
//
// @Summary      Get game
// @Description  Listing information for one game.
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game ID"
// @Success      200  {object}  games.GameInfo
// @Failure      404  {string}  string  "Game not found"
// @Router       /api/games/{id} [get]
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, info)
}

// JoinGame handles POST /api/games/{id}/join
//
// @Summary      Join game
// @Description  Take a seat in a waiting game. Returns the joiner's view.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id    path      string           true   "Game ID"
// @Param        body  body      JoinGameRequest  false  "Password, if the game has one"
// @Success      200   {object}  lobby.PlayerView
// @Failure      400   {string}  string  "Game started, full or already joined"
// @Failure      401   {string}  string  "Unauthorized or incorrect password"
// @Failure      404   {string}  string  "Game not found"
// @Security     BearerAuth
// @Router       /api/games/{id}/join [post]
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	me, ok := PlayerFromRequest(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	state, err := h.service.JoinGame(r.Context(), chi.URLParam(r, "id"), me, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, lobby.ViewFor(state, me.ID))
}

// GetState handles GET /api/games/{id}/state
//
// @Summary      Get game state
// @Description  The caller's view of the game: state with secrets hidden, their knowledge and the next expected action.
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game ID"
// @Success      200  {object}  lobby.PlayerView
// @Failure      401  {string}  string  "Unauthorized"
// @Failure      404  {string}  string  "Game not found"
// @Security     BearerAuth
// @Router       /api/games/{id}/state [get]
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	me, ok := PlayerFromRequest(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	view, err := h.service.View(r.Context(), chi.URLParam(r, "id"), me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// Act handles POST /api/games/{id}/act
//
// @Summary      Perform action
// @Description  Submit one action, e.g. {"kind":"vote","vote":"Approve"}. Rule violations return 400 with the reason.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id    path      string  true  "Game ID"
// @Param        body  body      object  true  "Action with a kind field"
// @Success      200   {object}  lobby.PlayerView
// @Failure      400   {string}  string  "Malformed or illegal action"
// @Failure      401   {string}  string  "Unauthorized"
// @Failure      404   {string}  string  "Game not found"
// @Failure      409   {string}  string  "Concurrent update"
// @Security     BearerAuth
// @Router       /api/games/{id}/act [post]
func (h *GameHandler) Act(w http.ResponseWriter, r *http.Request) {
	me, ok := PlayerFromRequest(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	action, err := games.DecodeAction(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.service.Act(r.Context(), chi.URLParam(r, "id"), me.ID, action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, lobby.ViewFor(state, me.ID))
}

// GetChat handles GET /api/games/{id}/chat
//
// @Summary      Chat history
// @Description  The latest chat messages of a game, newest first. Players only.
// @Tags         chat
// @Produce      json
// @Param        id   path      string  true  "Game ID"
// @Success      200  {array}   store.ChatMessage
// @Failure      403  {string}  string  "Not a player in this game"
// @Failure      404  {string}  string  "Game not found"
// @Security     BearerAuth
// @Router       /api/games/{id}/chat [get]
func (h *GameHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	me, ok := PlayerFromRequest(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	msgs, err := h.service.ChatHistory(r.Context(), chi.URLParam(r, "id"), me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, msgs)
}

// PostChat handles POST /api/games/{id}/chat
//
// @Summary      Send chat message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Game ID"
// @Param        body  body      ChatRequest  true  "Message"
// @Success      201   {object}  store.ChatMessage
// @Failure      400   {string}  string  "Empty or too long"
// @Failure      403   {string}  string  "Not a player in this game"
// @Security     BearerAuth
// @Router       /api/games/{id}/chat [post]
func (h *GameHandler) PostChat(w http.ResponseWriter, r *http.Request) {
	me, ok := PlayerFromRequest(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	msg, err := h.service.Chat(r.Context(), chi.URLParam(r, "id"), me.ID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, msg)
}

// GetHistory handles GET /api/games/{id}/history
//
// @Summary      Action history
// @Description  Every action applied to a finished game, in order.
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game ID"
// @Success      200  {array}   store.ActionRecord
// @Failure      404  {string}  string  "Game not found"
// @Failure      409  {string}  string  "Game has not finished"
// @Router       /api/games/{id}/history [get]
func (h *GameHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}
