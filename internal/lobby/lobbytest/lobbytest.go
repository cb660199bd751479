// Package lobbytest provides in-memory collaborators for tests of the lobby
// and the layers above it.
package lobbytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/store"
)

// MemStore is an in-memory lobby.Store.
type MemStore struct {
	mu      sync.Mutex
	games   map[string]*store.Game
	actions []store.ActionRecord
	chat    []store.ChatMessage
	// SaveErr, when set, is returned by every SaveGame.
	SaveErr error
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{games: map[string]*store.Game{}}
}

func (s *MemStore) CreateGame(_ context.Context, state *games.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[state.ID] = &store.Game{State: state.Clone(), Version: 1}
	return nil
}

func (s *MemStore) GetGame(_ context.Context, id string) (*store.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.Game{State: g.State.Clone(), Version: g.Version}, nil
}

func (s *MemStore) SaveGame(_ context.Context, state *games.GameState, expected int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return 0, s.SaveErr
	}
	g, ok := s.games[state.ID]
	if !ok || g.Version != expected {
		return 0, store.ErrVersionConflict
	}
	g.State = state.Clone()
	g.Version++
	return g.Version, nil
}

func (s *MemStore) list(keep func(*games.GameState) bool) []*games.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*games.GameState
	for _, g := range s.games {
		if keep(g.State) {
			out = append(out, g.State.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) ListOpenGames(context.Context) ([]*games.GameState, error) {
	return s.list(func(g *games.GameState) bool { return g.Status == games.StatusWaiting }), nil
}

func (s *MemStore) ListPlayerGames(_ context.Context, playerID string) ([]*games.GameState, error) {
	return s.list(func(g *games.GameState) bool { return g.HasPlayer(playerID) }), nil
}

func (s *MemStore) ListExpiredGames(_ context.Context, now time.Time) ([]string, error) {
	states := s.list(func(g *games.GameState) bool {
		return g.Status != games.StatusFinished && g.TimeoutTime != nil && !g.TimeoutTime.After(now)
	})
	ids := make([]string, len(states))
	for i, st := range states {
		ids[i] = st.ID
	}
	return ids, nil
}

func (s *MemStore) AppendAction(_ context.Context, rec store.ActionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = int64(len(s.actions) + 1)
	s.actions = append(s.actions, rec)
	return nil
}

func (s *MemStore) ListActions(_ context.Context, gameID string) ([]store.ActionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.ActionRecord
	for _, a := range s.actions {
		if a.GameID == gameID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemStore) AddChat(_ context.Context, gameID, playerID, content string) (*store.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := store.ChatMessage{
		ID:      fmt.Sprintf("msg-%d", len(s.chat)+1),
		GameID:  gameID,
		UserID:  playerID,
		Content: content,
		Sent:    time.Date(2026, 1, 1, 0, 0, len(s.chat), 0, time.UTC),
	}
	s.chat = append(s.chat, msg)
	return &msg, nil
}

func (s *MemStore) ListChat(_ context.Context, gameID string, limit int) ([]store.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.ChatMessage
	for i := len(s.chat) - 1; i >= 0 && len(out) < limit; i-- {
		if s.chat[i].GameID == gameID {
			out = append(out, s.chat[i])
		}
	}
	return out, nil
}

// Publisher records everything published to it.
type Publisher struct {
	mu     sync.Mutex
	states []*games.GameState
	chats  []store.ChatMessage
}

// PublishState records a copy of state.
func (p *Publisher) PublishState(state *games.GameState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

// PublishChat records msg.
func (p *Publisher) PublishChat(_ string, msg store.ChatMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chats = append(p.chats, msg)
}

// States returns the published states in order.
func (p *Publisher) States() []*games.GameState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*games.GameState(nil), p.states...)
}

// Chats returns the published chat messages in order.
func (p *Publisher) Chats() []store.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]store.ChatMessage(nil), p.chats...)
}
