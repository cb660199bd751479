package games

// ViewStateAs returns a copy of s fit to send to viewerID. While a game is in
// progress the role map is emptied, other players' votes stay hidden until
// everyone has voted, and quest cards stay hidden until the quest completes.
// Waiting and finished games have nothing left to hide.
func ViewStateAs(s *GameState, viewerID string) *GameState {
	view := s.Clone()
	if view.Status != StatusInProgress {
		return view
	}

	if round := view.CurrentRound(); round != nil {
		if len(round.Votes) != len(view.Players) {
			votes := map[string]Vote{}
			if v, ok := round.Votes[viewerID]; ok {
				votes[viewerID] = v
			}
			round.Votes = votes
		}

		if round.Quest != nil && !round.Quest.Completed {
			quested := []string{}
			if containsString(round.Quest.QuestedPlayers, viewerID) {
				quested = append(quested, viewerID)
			}
			round.Quest.QuestedPlayers = quested
			round.Quest.FailCards = 0
			round.Quest.SuccessCards = 0
		}
	}

	view.HiddenRoles = map[string]Role{}
	return view
}
