package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vntrieu/avalon-engine/internal/auth"
	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/httpapi/handler"
	"github.com/vntrieu/avalon-engine/internal/lobby"
	"github.com/vntrieu/avalon-engine/internal/lobby/lobbytest"
	"github.com/vntrieu/avalon-engine/internal/ratelimit"
	"github.com/vntrieu/avalon-engine/internal/store"
)

type memPlayers struct {
	mu      sync.Mutex
	players map[string]*store.Player
}

func (m *memPlayers) CreatePlayer(_ context.Context, displayName string) (*store.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.players == nil {
		m.players = map[string]*store.Player{}
	}
	p := &store.Player{ID: fmt.Sprintf("player-%d", len(m.players)+1), DisplayName: displayName}
	m.players[p.ID] = p
	return p, nil
}

func (m *memPlayers) GetPlayer(_ context.Context, id string) (*store.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

type apiFixture struct {
	router  http.Handler
	manager *lobby.Manager
}

func newAPIFixture(t *testing.T, limiter ratelimit.Limiter) *apiFixture {
	t.Helper()
	signer, err := auth.NewSigner([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	manager := lobby.NewManager(lobbytest.NewMemStore(), lobby.WithRand(games.NewSeededRand(9)))
	router := NewRouter(Options{
		Games:   manager,
		Players: &memPlayers{},
		Signer:  signer,
		Limiter: limiter,
	})
	return &apiFixture{router: router, manager: manager}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// signup creates a player and returns their id and token.
func (f *apiFixture) signup(t *testing.T, name string) (string, string) {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/players", "", handler.CreatePlayerRequest{DisplayName: name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp handler.PlayerResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Player.ID, resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out), w.Body.String())
	return out
}

func TestRouter_Healthz(t *testing.T) {
	f := newAPIFixture(t, nil)
	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestRouter_Readyz(t *testing.T) {
	f := newAPIFixture(t, nil)
	w := f.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	signer, err := auth.NewSigner([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	router := NewRouter(Options{
		Games:   lobby.NewManager(lobbytest.NewMemStore()),
		Players: &memPlayers{},
		Signer:  signer,
		DB:      failingPinger{},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestRouter_Rules(t *testing.T) {
	f := newAPIFixture(t, nil)
	w := f.do(t, http.MethodGet, "/api/rules", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rules := decode[[]handler.RuleResponse](t, w)
	assert.Len(t, rules, len(games.AllRules()))
	for _, r := range rules {
		assert.NotEmpty(t, r.Description, r.Name)
	}
}

func TestRouter_Players(t *testing.T) {
	f := newAPIFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/players", "", handler.CreatePlayerRequest{DisplayName: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id, token := f.signup(t, "  Arthur ")
	w = f.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[store.Player](t, w)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "Arthur", me.DisplayName)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/me", "not-a-token", nil).Code)
}

func TestRouter_GameLifecycle(t *testing.T) {
	f := newAPIFixture(t, nil)

	ids := make([]string, 5)
	tokens := make([]string, 5)
	for i := range ids {
		ids[i], tokens[i] = f.signup(t, fmt.Sprintf("Knight %d", i+1))
	}

	w := f.do(t, http.MethodPost, "/api/games", tokens[0], handler.CreateGameRequest{
		Ruleset:    []string{"Lady of the Lake"},
		MaxPlayers: 5,
		Password:   "grail",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	info := decode[games.GameInfo](t, w)
	assert.True(t, info.RequiresPassword)
	assert.Equal(t, ids[0], info.GameMaster)
	gamePath := "/api/games/" + info.ID

	open := decode[[]games.GameInfo](t, f.do(t, http.MethodGet, "/api/games", "", nil))
	require.Len(t, open, 1)

	w = f.do(t, http.MethodPost, gamePath+"/join", tokens[1], handler.JoinGameRequest{Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for i := 1; i < 5; i++ {
		w = f.do(t, http.MethodPost, gamePath+"/join", tokens[i], handler.JoinGameRequest{Password: "grail"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = f.do(t, http.MethodPost, gamePath+"/join", tokens[1], handler.JoinGameRequest{Password: "grail"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, gamePath+"/act", tokens[1], map[string]any{"kind": "start"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "game master")

	w = f.do(t, http.MethodPost, gamePath+"/act", tokens[0], map[string]any{"kind": "start"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[lobby.PlayerView](t, w)
	assert.Equal(t, games.StatusInProgress, view.State.Status)
	assert.Empty(t, view.State.HiddenRoles)
	assert.Empty(t, view.State.Password)
	assert.NotNil(t, view.Knowledge)
	assert.Equal(t, games.IntendedNominate, view.IntendedAction)

	w = f.do(t, http.MethodGet, gamePath+"/state", tokens[2], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, games.StatusInProgress, decode[lobby.PlayerView](t, w).State.Status)

	w = f.do(t, http.MethodPost, gamePath+"/act", tokens[0], map[string]any{"kind": "timeout"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mine := decode[[]games.GameInfo](t, f.do(t, http.MethodGet, "/api/me/games", tokens[3], nil))
	require.Len(t, mine, 1)
	assert.Equal(t, info.ID, mine[0].ID)

	w = f.do(t, http.MethodGet, gamePath+"/history", "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/api/games/00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CreateGameValidation(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.signup(t, "Merlin")

	w := f.do(t, http.MethodPost, "/api/games", token, handler.CreateGameRequest{Ruleset: []string{"Dragons"}, MaxPlayers: 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/games", token, handler.CreateGameRequest{MaxPlayers: 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/games", "", handler.CreateGameRequest{MaxPlayers: 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Chat(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, gmToken := f.signup(t, "Arthur")
	_, outsiderToken := f.signup(t, "Mordred")

	info := decode[games.GameInfo](t, f.do(t, http.MethodPost, "/api/games", gmToken, handler.CreateGameRequest{MaxPlayers: 5}))
	chatPath := "/api/games/" + info.ID + "/chat"

	w := f.do(t, http.MethodPost, chatPath, gmToken, handler.ChatRequest{Message: "welcome"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, chatPath, gmToken, handler.ChatRequest{Message: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, chatPath, outsiderToken, handler.ChatRequest{Message: "let me in"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, chatPath, gmToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode[[]store.ChatMessage](t, w)
	require.Len(t, msgs, 1)
	assert.Equal(t, "welcome", msgs[0].Content)
}

func TestRouter_History(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, gmToken := f.signup(t, "Arthur")
	info := decode[games.GameInfo](t, f.do(t, http.MethodPost, "/api/games", gmToken, handler.CreateGameRequest{MaxPlayers: 5}))
	gamePath := "/api/games/" + info.ID

	w := f.do(t, http.MethodPost, gamePath+"/act", gmToken, map[string]any{"kind": "abort"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, gamePath+"/history", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode[[]store.ActionRecord](t, w)
	require.Len(t, records, 1)
	assert.Equal(t, "abort", records[0].Kind)
}

func TestRouter_RateLimitsPlayerCreation(t *testing.T) {
	f := newAPIFixture(t, ratelimit.NewInMemory(2, time.Minute))
	f.signup(t, "one")
	f.signup(t, "two")

	w := f.do(t, http.MethodPost, "/api/players", "", handler.CreatePlayerRequest{DisplayName: "three"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRouter_CORS(t *testing.T) {
	f := newAPIFixture(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/games", nil)
	req.Header.Set("Origin", "https://avalon.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
