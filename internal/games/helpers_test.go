package games

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

// waitingGame returns a full lobby of n players; p1 is the game master.
func waitingGame(t *testing.T, n int, ruleset ...Rule) *GameState {
	t.Helper()
	s := NewGame("game-1", "p1", ruleset, n, "")
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		InsertPlayer(s, Player{ID: id, DisplayName: "Player " + id})
	}
	return s
}

func apply(t *testing.T, s *GameState, actor string, a Action) *GameState {
	t.Helper()
	next, err := ProcessAction(ProcessInputs{
		State:   s,
		Action:  a,
		ActorID: actor,
		Rand:    NewSeededRand(7),
		Now:     testNow,
	})
	require.NoError(t, err, "%s by %s", a.Kind(), actor)
	return next
}

func applyErr(t *testing.T, s *GameState, actor string, a Action) *ProcessError {
	t.Helper()
	next, err := ProcessAction(ProcessInputs{
		State:   s,
		Action:  a,
		ActorID: actor,
		Rand:    NewSeededRand(7),
		Now:     testNow,
	})
	require.Error(t, err, "%s by %s", a.Kind(), actor)
	require.Nil(t, next)
	var pe *ProcessError
	require.ErrorAs(t, err, &pe)
	return pe
}

func startedGame(t *testing.T, n int, ruleset ...Rule) *GameState {
	t.Helper()
	return apply(t, waitingGame(t, n, ruleset...), "p1", StartAction{})
}

func playerWithRole(t *testing.T, s *GameState, role Role) string {
	t.Helper()
	for id, r := range s.HiddenRoles {
		if r == role {
			return id
		}
	}
	t.Fatalf("no player has role %s", role)
	return ""
}

func requiredForQuest(t *testing.T, s *GameState) int {
	t.Helper()
	quests, err := QuestInformation(len(s.Players))
	require.NoError(t, err)
	return quests[s.CurrentRound().QuestNumber-1].PlayersRequired
}

// nominateFirst has the monarch nominate the first seats of the table.
func nominateFirst(t *testing.T, s *GameState) *GameState {
	t.Helper()
	n := requiredForQuest(t, s)
	return apply(t, s, s.CurrentRound().Monarch, NominateAction{PlayerIDs: append([]string(nil), s.TableOrder[:n]...)})
}

func voteAll(t *testing.T, s *GameState, v Vote) *GameState {
	t.Helper()
	for _, id := range s.TableOrder {
		s = apply(t, s, id, VoteAction{Vote: v})
	}
	return s
}

func questAll(t *testing.T, s *GameState, card QuestCard) *GameState {
	t.Helper()
	for _, id := range s.CurrentRound().NominatedPlayers {
		s = apply(t, s, id, QuestAction{Card: card})
	}
	return s
}

// playQuest runs one approved nominate/vote/quest cycle.
func playQuest(t *testing.T, s *GameState, card QuestCard) *GameState {
	t.Helper()
	s = nominateFirst(t, s)
	s = voteAll(t, s, VoteApprove)
	return questAll(t, s, card)
}

func intended(t *testing.T, s *GameState) IntendedAction {
	t.Helper()
	next, err := NextIntendedAction(s)
	require.NoError(t, err)
	return next
}
