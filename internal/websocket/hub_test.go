package websocket

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/store"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func testClient(hub *Hub, gameID, playerID string) *Client {
	return &Client{
		hub:          hub,
		send:         make(chan *ServerEnvelope, 256),
		GameID:       gameID,
		PlayerID:     playerID,
		RateLimitKey: "player:" + playerID,
		ctx:          context.Background(),
	}
}

func receive(t *testing.T, c *Client) *ServerEnvelope {
	t.Helper()
	select {
	case out := <-c.send:
		require.NotNil(t, out)
		return out
	case <-time.After(time.Second):
		t.Fatalf("%s did not receive a message", c.PlayerID)
		return nil
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case out := <-c.send:
		t.Errorf("%s should not have received %+v", c.PlayerID, out)
	case <-time.After(50 * time.Millisecond):
	}
}

// startedState returns an in-progress five player game.
func startedState(t *testing.T) *games.GameState {
	t.Helper()
	s := games.NewGame("game-1", "p1", nil, 5, "hash")
	for i := 1; i <= 5; i++ {
		games.InsertPlayer(s, games.Player{ID: fmt.Sprintf("p%d", i)})
	}
	next, err := games.ProcessAction(games.ProcessInputs{
		State:   s,
		Action:  games.StartAction{},
		ActorID: "p1",
		Rand:    games.NewSeededRand(3),
	})
	require.NoError(t, err)
	return next
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := runHub(t)
	client := testClient(hub, "game-1", "p1")

	hub.register <- client
	assert.Eventually(t, func() bool { return hub.GetGameClientCount("game-1") == 1 }, time.Second, 5*time.Millisecond)

	hub.unregister <- client
	assert.Eventually(t, func() bool { return hub.GetGameClientCount("game-1") == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open, "send channel should be closed")
}

func TestHub_MultipleGames(t *testing.T) {
	hub := runHub(t)
	for i := 0; i < 2; i++ {
		hub.register <- testClient(hub, "game-1", fmt.Sprintf("p%d", i))
		hub.register <- testClient(hub, "game-2", fmt.Sprintf("p%d", i))
	}
	hub.register <- testClient(hub, "game-2", "p9")

	assert.Eventually(t, func() bool {
		return hub.GetGameClientCount("game-1") == 2 && hub.GetGameClientCount("game-2") == 3
	}, time.Second, 5*time.Millisecond)
}

func TestHub_PublishStateProjectsPerPlayer(t *testing.T) {
	hub := runHub(t)
	state := startedState(t)

	members := []*Client{testClient(hub, state.ID, "p1"), testClient(hub, state.ID, "p2")}
	spectator := testClient(hub, state.ID, "watcher")
	other := testClient(hub, "game-2", "p1")
	for _, c := range append(members, spectator, other) {
		hub.register <- c
	}

	hub.PublishState(state)

	for _, c := range members {
		out := receive(t, c)
		assert.Equal(t, ServerTypeState, out.Type)
		assert.Empty(t, out.State.HiddenRoles)
		assert.Empty(t, out.State.Password)
		assert.NotEmpty(t, out.Knowledge, "%s should know their role", c.PlayerID)
		assert.Equal(t, games.IntendedNominate, out.IntendedAction)
	}
	out := receive(t, spectator)
	assert.Empty(t, out.Knowledge)
	assertNothing(t, other)
}

func TestHub_PublishChat(t *testing.T) {
	hub := runHub(t)
	a := testClient(hub, "game-1", "p1")
	b := testClient(hub, "game-1", "p2")
	hub.register <- a
	hub.register <- b

	hub.PublishChat("game-1", store.ChatMessage{ID: "m1", GameID: "game-1", UserID: "p1", Content: "hi"})

	for _, c := range []*Client{a, b} {
		out := receive(t, c)
		assert.Equal(t, ServerTypeChat, out.Type)
		require.NotNil(t, out.Message)
		assert.Equal(t, "hi", out.Message.Content)
	}
}

func TestHub_EmptyGameBroadcast(t *testing.T) {
	hub := runHub(t)
	hub.PublishChat("nobody-here", store.ChatMessage{Content: "hello?"})
	assert.Zero(t, hub.GetGameClientCount("nobody-here"))
}

func TestHub_DropsSlowClients(t *testing.T) {
	hub := runHub(t)
	slow := &Client{hub: hub, send: make(chan *ServerEnvelope), GameID: "game-1", PlayerID: "slow"}
	hub.register <- slow

	hub.PublishChat("game-1", store.ChatMessage{Content: "hi"})
	assert.Eventually(t, func() bool { return hub.GetGameClientCount("game-1") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_ConcurrentRegistration(t *testing.T) {
	hub := runHub(t)
	for i := 0; i < 10; i++ {
		go func(c *Client) {
			hub.register <- c
		}(testClient(hub, "game-1", fmt.Sprintf("p%d", i)))
	}
	assert.Eventually(t, func() bool { return hub.GetGameClientCount("game-1") == 10 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesClientsAndPublishers(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := testClient(hub, "game-1", "p1")
	hub.register <- client
	cancel()
	<-stopped

	_, open := <-client.send
	assert.False(t, open)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			hub.PublishChat("game-1", store.ChatMessage{})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishing to a stopped hub blocked")
	}
}
