package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/lobby"
	"github.com/vntrieu/avalon-engine/internal/store"
)

// Hub maintains the set of active clients per game and fans game updates out
// to them. It implements lobby.Publisher.
type Hub struct {
	// Registered clients by game id
	games map[string]map[*Client]bool

	// Updates waiting to be fanned out
	broadcast chan *broadcastMessage

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Handler for messages read from clients
	handler *EventHandler

	// Closed once Run has returned
	done chan struct{}

	mu sync.RWMutex
}

// broadcastMessage is one update for every client of a game. Exactly one of
// State or Envelope is set; State is projected per client before sending.
type broadcastMessage struct {
	GameID   string
	State    *games.GameState
	Envelope *ServerEnvelope
}

var _ lobby.Publisher = (*Hub)(nil)

// NewHub creates a new Hub.
func NewHub(handler *EventHandler) *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *broadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		handler:    handler,
		done:       make(chan struct{}),
	}
}

// SetEventHandler sets the event handler for the hub.
func (h *Hub) SetEventHandler(handler *EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

func (h *Hub) eventHandler() *EventHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handler
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.games[client.GameID] == nil {
				h.games[client.GameID] = make(map[*Client]bool)
			}
			h.games[client.GameID][client] = true
			total := len(h.games[client.GameID])
			h.mu.Unlock()
			log.Debug().Str("game", client.GameID).Str("player", client.PlayerID).Int("total", total).Msg("ws client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			log.Debug().Str("game", client.GameID).Str("player", client.PlayerID).Msg("ws client unregistered")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.games[message.GameID] {
				out := message.Envelope
				if message.State != nil {
					out = stateEnvelope(lobby.ViewFor(message.State, client.PlayerID))
				}
				select {
				case client.send <- out:
				default:
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops client and closes its send channel. Callers hold h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.games[client.GameID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.games, client.GameID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.games {
		for client := range clients {
			h.remove(client)
		}
	}
}

// PublishState sends every client of the game its own view of state.
func (h *Hub) PublishState(state *games.GameState) {
	h.send(&broadcastMessage{GameID: state.ID, State: state})
}

// PublishChat sends a chat message to every client of the game.
func (h *Hub) PublishChat(gameID string, msg store.ChatMessage) {
	h.send(&broadcastMessage{GameID: gameID, Envelope: chatEnvelope(msg)})
}

func (h *Hub) send(message *broadcastMessage) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// GetGameClientCount returns the number of clients connected to a game.
func (h *Hub) GetGameClientCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
