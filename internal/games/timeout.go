package games

// performTimeout auto-resolves the pending phase once the Clock deadline has
// passed. Everything goes through the regular mutators so their checks still
// apply; the acting player is whoever the phase was waiting on.
func performTimeout(m *mutation) error {
	s := m.state
	if !s.HasRule(RuleClock) {
		return clientError("This game is not played with the clock")
	}
	if s.TimeoutTime == nil {
		return clientError("This game has no running timer")
	}
	if m.now.Before(*s.TimeoutTime) {
		return clientError("The timer has not expired yet")
	}

	next, err := NextIntendedAction(s)
	if err != nil {
		return err
	}

	switch next {
	case IntendedStart:
		return m.as(s.GameMaster, func() error { return performAbort(m) })

	case IntendedNominate:
		round := s.CurrentRound()
		quests, err := QuestInformation(len(s.Players))
		if err != nil {
			return serverError("%v", err)
		}
		candidates := cloneStrings(s.TableOrder)
		shuffleStrings(m.rng, candidates)
		picked := candidates[:quests[round.QuestNumber-1].PlayersRequired]
		return m.as(round.Monarch, func() error {
			return performNominate(m, NominateAction{PlayerIDs: picked})
		})

	case IntendedVote:
		round := s.CurrentRound()
		var pending []string
		for _, id := range s.TableOrder {
			if _, ok := round.Votes[id]; !ok {
				pending = append(pending, id)
			}
		}
		for _, id := range pending {
			if err := m.as(id, func() error {
				return performVote(m, VoteAction{Vote: VoteApprove})
			}); err != nil {
				return err
			}
		}
		return nil

	case IntendedQuest:
		round := s.CurrentRound()
		if round.Quest == nil {
			return serverError("Trying to time out undefined quest")
		}
		var pending []string
		for _, id := range round.NominatedPlayers {
			if !containsString(round.Quest.QuestedPlayers, id) {
				pending = append(pending, id)
			}
		}
		for _, id := range pending {
			card := QuestCardSucceed
			if TeamOf(s.HiddenRoles[id]) == TeamMordredic {
				card = QuestCardFail
			}
			if err := m.as(id, func() error {
				return performQuest(m, QuestAction{Card: card})
			}); err != nil {
				return err
			}
		}
		return nil

	case IntendedLady:
		holder := s.LadyHolder
		var targets []string
		for _, id := range s.TableOrder {
			if id != holder {
				targets = append(targets, id)
			}
		}
		if len(targets) == 0 {
			return serverError("No lady of the lake target available")
		}
		target := targets[m.rng.IntN(len(targets))]
		return m.as(holder, func() error {
			return performLady(m, LadyAction{PlayerID: target})
		})

	case IntendedAssassinate:
		// The assassin forfeits by not acting.
		finish(s, ResultArthurianVictory)
		return nil
	}

	return clientError("Nothing to time out while the game is waiting on %s", next)
}

// as runs fn with actorID temporarily set as the acting player.
func (m *mutation) as(actorID string, fn func() error) error {
	prev := m.actorID
	m.actorID = actorID
	defer func() { m.actorID = prev }()
	return fn()
}
