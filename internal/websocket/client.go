package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer; the token is the credential.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound envelopes
	send chan *ServerEnvelope

	// Game this client is watching
	GameID string

	// Authenticated player behind the connection
	PlayerID string

	// RateLimitKey is set at connection time for rate limiting chat and actions.
	RateLimitKey string

	ctx context.Context
}

func newClient(hub *Hub, conn *websocket.Conn, gameID, playerID string) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan *ServerEnvelope, 256),
		GameID:       gameID,
		PlayerID:     playerID,
		RateLimitKey: "player:" + playerID,
		ctx:          context.Background(),
	}
}

// readPump pumps messages from the websocket connection to the event handler.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("game", c.GameID).Str("player", c.PlayerID).Msg("websocket error")
			}
			break
		}

		var msg ClientInMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendEnvelope(errorEnvelope("invalid message", ""))
			continue
		}
		if handler := c.hub.eventHandler(); handler != nil {
			handler.HandleMessage(c.ctx, c, &msg)
		}
	}
}

// writePump pumps envelopes from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case out, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(out); err != nil {
				log.Debug().Err(err).Str("game", c.GameID).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendEnvelope queues a message for this client only. It never blocks; a
// client that cannot keep up misses the message.
func (c *Client) sendEnvelope(envelope *ServerEnvelope) {
	defer func() {
		// send is closed once the hub has dropped the client.
		_ = recover()
	}()
	select {
	case c.send <- envelope:
	default:
		log.Warn().Str("game", c.GameID).Str("player", c.PlayerID).Msg("could not send envelope to client (channel full)")
	}
}
