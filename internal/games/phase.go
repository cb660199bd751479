package games

// IntendedAction is the single action type the state machine expects next.
type IntendedAction string

// Intended actions.
const (
	IntendedStart       IntendedAction = "start"
	IntendedNominate    IntendedAction = "nominate"
	IntendedVote        IntendedAction = "vote"
	IntendedQuest       IntendedAction = "quest"
	IntendedLady        IntendedAction = "lady"
	IntendedAssassinate IntendedAction = "assassinate"
	IntendedComplete    IntendedAction = "complete"
	IntendedNone        IntendedAction = "none"
)

// NextIntendedAction derives the next legal action type from s. It has no
// side effects. A state from which no action can follow is reported as a
// server error.
func NextIntendedAction(s *GameState) (IntendedAction, error) {
	switch s.Status {
	case StatusWaiting:
		return IntendedStart, nil
	case StatusFinished:
		return IntendedNone, nil
	case StatusInProgress:
	default:
		return "", serverError("Unknown game status %q", s.Status)
	}

	round := s.CurrentRound()
	if round == nil {
		return "", serverError("In situation where there should be a round but isn't")
	}

	if round.NominatedPlayers == nil {
		return IntendedNominate, nil
	}
	if len(round.Votes) < len(s.Players) {
		return IntendedVote, nil
	}
	if round.Quest == nil || !round.Quest.Completed {
		return IntendedQuest, nil
	}

	score, err := ScoreOf(s)
	if err != nil {
		return "", serverError("%v", err)
	}
	if score.Passes >= 3 {
		return endOfQuestsAction(s), nil
	}

	if ladyOwed(s, round) {
		return IntendedLady, nil
	}

	if round.QuestNumber == QuestsPerGame {
		return endOfQuestsAction(s), nil
	}

	return "", serverError("Game state is such that no action can be taken")
}

// endOfQuestsAction is what follows once good has its three quests. Under
// Quickshot Assassin the assassin already had their chance mid-game.
func endOfQuestsAction(s *GameState) IntendedAction {
	if s.HasRule(RuleQuickshotAssassin) {
		return IntendedComplete
	}
	return IntendedAssassinate
}

// ladyOwed reports whether the Lady of the Lake must be used after round.
func ladyOwed(s *GameState, round *Round) bool {
	return s.HasRule(RuleLadyOfTheLake) &&
		round.QuestNumber >= 2 &&
		round.QuestNumber <= 4 &&
		round.LadyTarget == ""
}
