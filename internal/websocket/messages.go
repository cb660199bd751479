package websocket

import (
	"encoding/json"

	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/lobby"
	"github.com/vntrieu/avalon-engine/internal/store"
)

// ClientInMessage is the envelope for messages from client to server.
// Types: "action" | "chat" | "sync_state"
type ClientInMessage struct {
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// chatPayload is the payload of a "chat" message.
type chatPayload struct {
	Message string `json:"message"`
}

// ServerEnvelope is the envelope for messages from server to client.
// Type: "state" | "chat" | "error"
type ServerEnvelope struct {
	Type           string               `json:"type"`
	State          *games.GameState     `json:"state,omitempty"`
	Knowledge      []games.Knowledge    `json:"knowledge,omitempty"`
	IntendedAction games.IntendedAction `json:"intendedAction,omitempty"`
	Message        *store.ChatMessage   `json:"message,omitempty"`
	Payload        map[string]any       `json:"payload,omitempty"`
}

// Client message types.
const (
	ClientMessageTypeAction    = "action"
	ClientMessageTypeChat      = "chat"
	ClientMessageTypeSyncState = "sync_state"
)

// Server envelope types.
const (
	ServerTypeState = "state"
	ServerTypeChat  = "chat"
	ServerTypeError = "error"
)

// MaxClientMessageTypeLength limits the "type" field to prevent abuse.
const MaxClientMessageTypeLength = 64

// ValidClientMessageTypes are the only allowed values for ClientInMessage.Type.
var ValidClientMessageTypes = map[string]bool{
	ClientMessageTypeAction:    true,
	ClientMessageTypeChat:      true,
	ClientMessageTypeSyncState: true,
}

func stateEnvelope(view lobby.PlayerView) *ServerEnvelope {
	return &ServerEnvelope{
		Type:           ServerTypeState,
		State:          view.State,
		Knowledge:      view.Knowledge,
		IntendedAction: view.IntendedAction,
	}
}

func chatEnvelope(msg store.ChatMessage) *ServerEnvelope {
	return &ServerEnvelope{Type: ServerTypeChat, Message: &msg}
}

func errorEnvelope(message, correlationID string) *ServerEnvelope {
	payload := map[string]any{"message": message}
	if correlationID != "" {
		payload["correlation_id"] = correlationID
	}
	return &ServerEnvelope{Type: ServerTypeError, Payload: payload}
}
