package games

import "time"

// mutation is what every mutator works on: a state the dispatcher already
// cloned, the actor, and the RNG/clock seams. Mutators never clone.
//
// Each mutator follows the same shape: check the actor's permissions, check
// the ruleset allows it, check the current phase, then mutate.
type mutation struct {
	state   *GameState
	actorID string
	rng     Rand
	now     time.Time
}

func performStart(m *mutation) error {
	s := m.state
	if s.GameMaster != m.actorID {
		return clientError("The game master must start the game")
	}
	if err := ValidateRuleset(s.Ruleset, s.ExpectedPlayers); err != nil {
		return serverError("%v", err)
	}
	if s.Status != StatusWaiting {
		return clientError("Tried to start game that was already %s", s.Status)
	}
	if len(s.Players) != s.ExpectedPlayers {
		return clientError("Need %d players, but only have %d", s.ExpectedPlayers, len(s.Players))
	}

	roles, err := allocateRoles(s.Ruleset, s.Players, m.rng)
	if err != nil {
		return serverError("%v", err)
	}
	s.HiddenRoles = roles
	s.Status = StatusInProgress
	shuffleStrings(m.rng, s.TableOrder)

	if s.HasRule(RuleLadyOfTheLake) {
		s.LadyHolder = s.TableOrder[len(s.TableOrder)-1]
	}

	newRound(s)
	s.TimeoutTime = nil
	m.setClock(s.Timeset.Nominate)
	return nil
}

func performNominate(m *mutation, a NominateAction) error {
	s := m.state
	if err := m.expect(IntendedNominate, "Should have monarch nominating right now"); err != nil {
		return err
	}
	round := s.CurrentRound()
	if round.Monarch != m.actorID {
		return clientError("Only monarch can nominate players")
	}

	quests, err := QuestInformation(len(s.Players))
	if err != nil {
		return serverError("%v", err)
	}
	required := quests[round.QuestNumber-1].PlayersRequired
	if len(a.PlayerIDs) != required {
		return clientError("Need to nominate %d players to this quest", required)
	}
	seen := make(map[string]bool, len(a.PlayerIDs))
	for _, id := range a.PlayerIDs {
		if !s.HasPlayer(id) {
			return clientError("Player %s is not in this game", id)
		}
		if seen[id] {
			return clientError("Player %s was nominated twice", id)
		}
		seen[id] = true
	}

	round.NominatedPlayers = cloneStrings(a.PlayerIDs)
	m.setClock(s.Timeset.Vote)
	return nil
}

func performVote(m *mutation, a VoteAction) error {
	s := m.state
	if err := m.expect(IntendedVote, ""); err != nil {
		return err
	}
	if !s.HasPlayer(m.actorID) {
		return clientError("You must be in this game to vote")
	}
	round := s.CurrentRound()
	if _, ok := round.Votes[m.actorID]; ok {
		return clientError("You have already voted for this quest")
	}
	if round.Votes == nil {
		round.Votes = map[string]Vote{}
	}
	round.Votes[m.actorID] = a.Vote

	if len(round.Votes) < len(s.Players) {
		return nil
	}

	if countApprovals(round.Votes) >= requiredApprovals(len(s.Players)) {
		round.Quest = &QuestProgress{QuestedPlayers: []string{}}
		m.setClock(s.Timeset.Quest)
		return nil
	}

	if FailedVotes(s) < 5 {
		newRound(s)
		m.setClock(s.Timeset.Nominate)
		return nil
	}
	finish(s, ResultDeadlock)
	return nil
}

func performQuest(m *mutation, a QuestAction) error {
	s := m.state
	if err := m.expect(IntendedQuest, "Tried to perform incorrect quest"); err != nil {
		return err
	}
	round := s.CurrentRound()
	if round.Quest == nil || round.NominatedPlayers == nil {
		return serverError("Trying to perform undefined quest")
	}
	if !containsString(round.NominatedPlayers, m.actorID) {
		return clientError("Not nominated for the quest")
	}
	if containsString(round.Quest.QuestedPlayers, m.actorID) {
		return clientError("Already performed this quest")
	}

	round.Quest.QuestedPlayers = append(round.Quest.QuestedPlayers, m.actorID)
	if a.Card == QuestCardFail {
		round.Quest.FailCards++
	} else {
		round.Quest.SuccessCards++
	}

	if round.Quest.FailCards+round.Quest.SuccessCards < len(round.NominatedPlayers) {
		return nil
	}
	round.Quest.Completed = true

	score, err := ScoreOf(s)
	if err != nil {
		return serverError("%v", err)
	}
	switch {
	case score.Fails >= 3:
		finish(s, ResultMordredicVictory)
	case score.Passes >= 3:
		if s.HasRule(RuleQuickshotAssassin) {
			finish(s, ResultArthurianVictory)
		} else {
			m.setClock(s.Timeset.Assassinate)
		}
	case ladyOwed(s, round):
		m.setClock(s.Timeset.Lady)
	default:
		newRound(s)
		m.setClock(s.Timeset.Nominate)
	}
	return nil
}

func performLady(m *mutation, a LadyAction) error {
	s := m.state
	if err := m.expect(IntendedLady, "Lady is not a valid action"); err != nil {
		return err
	}
	if m.actorID != s.LadyHolder {
		return clientError("You do not have the lady of the lake")
	}
	if a.PlayerID == m.actorID {
		return clientError("You cannot use the lady of the lake on yourself")
	}
	if !s.HasPlayer(a.PlayerID) {
		return clientError("Player %s is not in this game", a.PlayerID)
	}

	round := s.CurrentRound()
	round.LadyUser = m.actorID
	round.LadyTarget = a.PlayerID
	s.LadyHolder = a.PlayerID

	newRound(s)
	m.setClock(s.Timeset.Nominate)
	return nil
}

func performAssassinate(m *mutation, a AssassinateAction) error {
	s := m.state
	if s.HiddenRoles[m.actorID] != RoleAssassin {
		return clientError("You are not the assassin")
	}

	var allowed bool
	if s.HasRule(RuleQuickshotAssassin) {
		allowed = s.Status == StatusInProgress
	} else {
		next, err := NextIntendedAction(s)
		if err != nil {
			return err
		}
		allowed = next == IntendedAssassinate
	}
	if !allowed {
		return clientError("Cannot assassinate at this time")
	}
	if !s.HasPlayer(a.PlayerID) {
		return clientError("Player %s is not in this game", a.PlayerID)
	}

	s.AssassinationTarget = a.PlayerID
	if s.HiddenRoles[a.PlayerID] == RoleMerlin {
		finish(s, ResultAssassination)
	} else {
		finish(s, ResultArthurianVictory)
	}
	return nil
}

func performRuleset(m *mutation, a RulesetAction) error {
	s := m.state
	if m.actorID != s.GameMaster {
		return clientError("You must be the game master to do this")
	}
	if s.Status != StatusWaiting {
		return clientError("Game has already started. You can't modify the ruleset")
	}
	if err := ValidateRuleset(a.Ruleset, a.MaxPlayers); err != nil {
		return clientError("Invalid ruleset for %d players: %v", a.MaxPlayers, err)
	}
	if a.MaxPlayers < len(s.Players) {
		return clientError("%d players have already joined; cannot shrink the game to %d", len(s.Players), a.MaxPlayers)
	}

	s.Ruleset = append([]Rule{}, a.Ruleset...)
	s.ExpectedPlayers = a.MaxPlayers
	switch {
	case !s.HasRule(RuleClock):
		s.TimeoutTime = nil
	case s.TimeoutTime == nil:
		m.setClock(StartTimeout)
	}
	return nil
}

func performAbort(m *mutation) error {
	s := m.state
	if m.actorID != s.GameMaster {
		return clientError("Only the game master can abort the game")
	}
	if s.Status != StatusWaiting {
		return clientError("Cannot abort a game that is %s", s.Status)
	}
	finish(s, ResultAborted)
	return nil
}

func performLeave(m *mutation) error {
	s := m.state
	if s.Status != StatusWaiting {
		return clientError("Cannot leave a game that is %s", s.Status)
	}
	if !s.HasPlayer(m.actorID) {
		return clientError("You are not in this game")
	}
	if m.actorID == s.GameMaster {
		return clientError("The game master cannot leave; abort the game instead")
	}

	players := s.Players[:0]
	for _, p := range s.Players {
		if p.ID != m.actorID {
			players = append(players, p)
		}
	}
	s.Players = players

	order := s.TableOrder[:0]
	for _, id := range s.TableOrder {
		if id != m.actorID {
			order = append(order, id)
		}
	}
	s.TableOrder = order
	return nil
}

// expect fails with a client error unless the state machine is waiting on want.
func (m *mutation) expect(want IntendedAction, reason string) error {
	next, err := NextIntendedAction(m.state)
	if err != nil {
		return err
	}
	if next == want {
		return nil
	}
	if reason == "" {
		return clientError("You should be performing action %s", next)
	}
	return clientError("%s", reason)
}

// setClock arms the Clock deadline for the next pending action.
func (m *mutation) setClock(budget time.Duration) {
	if !m.state.HasRule(RuleClock) {
		return
	}
	deadline := m.now.Add(budget)
	m.state.TimeoutTime = &deadline
}

func finish(s *GameState, result Result) {
	s.Status = StatusFinished
	s.Result = result
	s.TimeoutTime = nil
}

// newRound appends the next round. The monarch rotates by seat; the quest
// number only advances when the previous round completed its quest.
func newRound(s *GameState) {
	if len(s.Rounds) == 0 {
		s.Rounds = append(s.Rounds, Round{
			Monarch:     s.TableOrder[0],
			QuestNumber: 1,
			Votes:       map[string]Vote{},
		})
		return
	}

	last := s.Rounds[len(s.Rounds)-1]
	questNumber := last.QuestNumber
	if last.Quest != nil && last.Quest.Completed {
		questNumber++
	}
	s.Rounds = append(s.Rounds, Round{
		Monarch:     s.TableOrder[len(s.Rounds)%len(s.Players)],
		QuestNumber: questNumber,
		Votes:       map[string]Vote{},
	})
}
