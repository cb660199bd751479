package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vntrieu/avalon-engine/internal/games"
)

func newWaitingGame(gm string, ruleset ...games.Rule) *games.GameState {
	s := games.NewGame(uuid.NewString(), gm, ruleset, 5, "")
	games.InsertPlayer(s, games.Player{ID: gm, DisplayName: "GM"})
	return s
}

func TestGameStore_CreateGetSave(t *testing.T) {
	pool := SetupTestDB(t)
	gs := NewGameStore(pool)
	ctx := context.Background()

	state := newWaitingGame("gm", games.RuleClock)
	require.NoError(t, gs.CreateGame(ctx, state))

	got, err := gs.GetGame(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, state.ID, got.State.ID)
	assert.Equal(t, state.Ruleset, got.State.Ruleset)
	assert.Equal(t, state.Timeset, got.State.Timeset)
	assert.False(t, got.CreatedAt.IsZero())

	games.InsertPlayer(got.State, games.Player{ID: "p2"})
	version, err := gs.SaveGame(ctx, got.State, got.Version)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	t.Run("stale version conflicts", func(t *testing.T) {
		_, err := gs.SaveGame(ctx, got.State, 1)
		assert.True(t, errors.Is(err, ErrVersionConflict))
	})

	t.Run("missing and malformed ids", func(t *testing.T) {
		_, err := gs.GetGame(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = gs.GetGame(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("membership follows the snapshot", func(t *testing.T) {
		joined, err := gs.ListPlayerGames(ctx, "p2")
		require.NoError(t, err)
		require.Len(t, joined, 1)
		assert.Equal(t, state.ID, joined[0].ID)

		latest, err := gs.GetGame(ctx, state.ID)
		require.NoError(t, err)
		latest.State.Players = latest.State.Players[:1]
		_, err = gs.SaveGame(ctx, latest.State, latest.Version)
		require.NoError(t, err)

		joined, err = gs.ListPlayerGames(ctx, "p2")
		require.NoError(t, err)
		assert.Empty(t, joined)
	})
}

func TestGameStore_ListOpenAndExpired(t *testing.T) {
	pool := SetupTestDB(t)
	gs := NewGameStore(pool)
	ctx := context.Background()

	open := newWaitingGame("gm")
	require.NoError(t, gs.CreateGame(ctx, open))

	deadline := time.Now().Add(-time.Minute).UTC()
	finished := newWaitingGame("gm")
	finished.Status = games.StatusFinished
	finished.Result = games.ResultAborted
	finished.TimeoutTime = &deadline
	require.NoError(t, gs.CreateGame(ctx, finished))

	clocked := newWaitingGame("gm", games.RuleClock)
	clocked.TimeoutTime = &deadline
	require.NoError(t, gs.CreateGame(ctx, clocked))

	listed, err := gs.ListOpenGames(ctx)
	require.NoError(t, err)
	var ids []string
	for _, s := range listed {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{open.ID, clocked.ID}, ids)

	expired, err := gs.ListExpiredGames(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{clocked.ID}, expired)

	expired, err = gs.ListExpiredGames(ctx, deadline.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestGameStore_ActionsAndChat(t *testing.T) {
	pool := SetupTestDB(t)
	gs := NewGameStore(pool)
	ctx := context.Background()

	state := newWaitingGame("gm")
	require.NoError(t, gs.CreateGame(ctx, state))

	payload, err := games.EncodeAction(games.VoteAction{Vote: games.VoteApprove})
	require.NoError(t, err)
	require.NoError(t, gs.AppendAction(ctx, ActionRecord{GameID: state.ID, ActorID: "gm", Kind: "vote", Payload: payload, Version: 2}))
	require.NoError(t, gs.AppendAction(ctx, ActionRecord{GameID: state.ID, ActorID: "gm", Kind: "abort", Version: 3}))

	actions, err := gs.ListActions(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "vote", actions[0].Kind)
	assert.JSONEq(t, string(payload), string(actions[0].Payload))
	assert.Equal(t, int64(3), actions[1].Version)
	assert.True(t, json.Valid(actions[1].Payload))

	first, err := gs.AddChat(ctx, state.ID, "gm", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Sent.IsZero())
	_, err = gs.AddChat(ctx, state.ID, "gm", "anyone?")
	require.NoError(t, err)

	msgs, err := gs.ListChat(ctx, state.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "anyone?", msgs[0].Content)

	msgs, err = gs.ListChat(ctx, state.ID, 1)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestPlayerStore(t *testing.T) {
	pool := SetupTestDB(t)
	ps := NewPlayerStore(pool)
	ctx := context.Background()

	p, err := ps.CreatePlayer(ctx, "Morgan")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	got, err := ps.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morgan", got.DisplayName)

	_, err = ps.GetPlayer(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
