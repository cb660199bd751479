package lobby

import (
	"hash/fnv"

	"github.com/vntrieu/avalon-engine/internal/games"
)

// PlayerView is everything one player is allowed to see of a game.
type PlayerView struct {
	State          *games.GameState     `json:"state"`
	Knowledge      []games.Knowledge    `json:"knowledge"`
	IntendedAction games.IntendedAction `json:"intendedAction"`
}

// ViewFor projects state for playerID. The password hash never leaves the
// server, and knowledge is only given to seated players.
func ViewFor(state *games.GameState, playerID string) PlayerView {
	view := PlayerView{
		State:     games.ViewStateAs(state, playerID),
		Knowledge: []games.Knowledge{},
	}
	view.State.Password = ""

	if next, err := games.NextIntendedAction(state); err == nil {
		view.IntendedAction = next
	}
	if playerID == "" || !state.HasPlayer(playerID) {
		return view
	}
	if known := games.GenerateKnowledgeMap(state, knowledgeRand(state.ID))[playerID]; known != nil {
		view.Knowledge = known
	}
	return view
}

// knowledgeRand seeds the knowledge shuffle from the game id so a player sees
// their facts in the same order on every refresh.
func knowledgeRand(gameID string) games.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(gameID))
	return games.NewSeededRand(h.Sum64())
}
