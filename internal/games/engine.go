package games

import (
	"fmt"
	"time"
)

// ProcessInputs is one request to apply an action to a game.
type ProcessInputs struct {
	State   *GameState
	Action  Action
	ActorID string
	// Rand defaults to DefaultRand.
	Rand Rand
	// Now defaults to time.Now(). Only the Clock rule reads it.
	Now time.Time
}

// ProcessAction applies in.Action to a deep copy of in.State and returns the
// copy. The caller's state is never touched. Any failure comes back as a
// *ProcessError; panics inside mutators are reported as server errors.
func ProcessAction(in ProcessInputs) (next *GameState, err error) {
	if in.State == nil {
		return nil, serverError("no state to process")
	}
	if in.Action == nil {
		return nil, serverError("no action to process")
	}

	m := &mutation{
		state:   in.State.Clone(),
		actorID: in.ActorID,
		rng:     in.Rand,
		now:     in.Now,
	}
	if m.rng == nil {
		m.rng = DefaultRand
	}
	if m.now.IsZero() {
		m.now = time.Now()
	}

	defer func() {
		if r := recover(); r != nil {
			next = nil
			err = serverError("panic applying %s: %v", in.Action.Kind(), r)
		}
	}()

	if err := dispatch(m, in.Action); err != nil {
		return nil, asProcessError(err)
	}
	return m.state, nil
}

func dispatch(m *mutation, action Action) error {
	switch a := action.(type) {
	case StartAction:
		return performStart(m)
	case NominateAction:
		return performNominate(m, a)
	case VoteAction:
		return performVote(m, a)
	case QuestAction:
		return performQuest(m, a)
	case LadyAction:
		return performLady(m, a)
	case AssassinateAction:
		return performAssassinate(m, a)
	case RulesetAction:
		return performRuleset(m, a)
	case AbortAction:
		return performAbort(m)
	case LeaveAction:
		return performLeave(m)
	case TimeoutAction:
		return performTimeout(m)
	default:
		return fmt.Errorf("bad action: %T", action)
	}
}
