package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/lobby"
	"github.com/vntrieu/avalon-engine/internal/ratelimit"
	"github.com/vntrieu/avalon-engine/internal/store"
)

// GameService is the part of the lobby the websocket layer drives.
// *lobby.Manager implements it.
type GameService interface {
	Act(ctx context.Context, gameID, actorID string, action games.Action) (*games.GameState, error)
	Chat(ctx context.Context, gameID, playerID, text string) (*store.ChatMessage, error)
	View(ctx context.Context, gameID, playerID string) (lobby.PlayerView, error)
}

// EventHandler handles messages read from clients. Successful actions and
// chat reach every client through the lobby's publisher, so nothing is
// echoed here.
type EventHandler struct {
	service     GameService
	rateLimiter ratelimit.Limiter
}

// NewEventHandler creates a new EventHandler. rateLimiter may be nil.
func NewEventHandler(service GameService, rateLimiter ratelimit.Limiter) *EventHandler {
	if rateLimiter == nil {
		rateLimiter = ratelimit.Noop{}
	}
	return &EventHandler{service: service, rateLimiter: rateLimiter}
}

// HandleMessage processes one incoming client message.
// Rejects unknown or invalid message types with an error envelope.
func (h *EventHandler) HandleMessage(ctx context.Context, client *Client, msg *ClientInMessage) {
	if msg == nil {
		client.sendEnvelope(errorEnvelope("invalid message", ""))
		return
	}
	if len(msg.Type) > MaxClientMessageTypeLength {
		client.sendEnvelope(errorEnvelope("invalid message type", ""))
		return
	}
	if !ValidClientMessageTypes[msg.Type] {
		client.sendEnvelope(errorEnvelope("unsupported message type", msg.CorrelationID))
		return
	}

	switch msg.Type {
	case ClientMessageTypeAction:
		if !h.allow(client, msg) {
			return
		}
		h.handleAction(ctx, client, msg)
	case ClientMessageTypeChat:
		if !h.allow(client, msg) {
			return
		}
		h.handleChat(ctx, client, msg)
	case ClientMessageTypeSyncState:
		h.handleSyncState(ctx, client, msg)
	}
}

func (h *EventHandler) allow(client *Client, msg *ClientInMessage) bool {
	allowed, _ := h.rateLimiter.Allow(client.RateLimitKey)
	if !allowed {
		client.sendEnvelope(errorEnvelope("rate limit exceeded; try again later", msg.CorrelationID))
	}
	return allowed
}

func (h *EventHandler) handleAction(ctx context.Context, client *Client, msg *ClientInMessage) {
	action, err := games.DecodeAction(msg.Payload)
	if err != nil {
		client.sendEnvelope(errorEnvelope(err.Error(), msg.CorrelationID))
		return
	}
	if _, err := h.service.Act(ctx, client.GameID, client.PlayerID, action); err != nil {
		client.sendEnvelope(errorEnvelope(clientMessage(err), msg.CorrelationID))
	}
}

func (h *EventHandler) handleChat(ctx context.Context, client *Client, msg *ClientInMessage) {
	var payload chatPayload
	if len(msg.Payload) == 0 || json.Unmarshal(msg.Payload, &payload) != nil {
		client.sendEnvelope(errorEnvelope("invalid chat payload", msg.CorrelationID))
		return
	}
	if _, err := h.service.Chat(ctx, client.GameID, client.PlayerID, payload.Message); err != nil {
		client.sendEnvelope(errorEnvelope(clientMessage(err), msg.CorrelationID))
	}
}

// handleSyncState sends the client its current view of the game.
func (h *EventHandler) handleSyncState(ctx context.Context, client *Client, msg *ClientInMessage) {
	view, err := h.service.View(ctx, client.GameID, client.PlayerID)
	if err != nil {
		client.sendEnvelope(errorEnvelope(clientMessage(err), msg.CorrelationID))
		return
	}
	client.sendEnvelope(stateEnvelope(view))
}

// clientMessage is the text a client is shown for err. Server-side failures
// are logged and reported generically.
func clientMessage(err error) string {
	var pe *games.ProcessError
	switch {
	case errors.As(err, &pe) && pe.Kind == games.ErrorKindClient:
		return pe.Reason
	case errors.Is(err, lobby.ErrNotInGame),
		errors.Is(err, lobby.ErrEmptyMessage),
		errors.Is(err, lobby.ErrMessageTooLong):
		return err.Error()
	case errors.Is(err, store.ErrNotFound):
		return "game not found"
	case errors.Is(err, store.ErrVersionConflict):
		return "game changed while acting; try again"
	default:
		log.Error().Err(err).Msg("websocket request failed")
		return "internal error"
	}
}
