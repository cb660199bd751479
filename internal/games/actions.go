package games

import (
	"encoding/json"
	"fmt"
)

// ActionKind tags an Action variant.
type ActionKind string

// Action kinds.
const (
	ActionStart       ActionKind = "start"
	ActionNominate    ActionKind = "nominate"
	ActionVote        ActionKind = "vote"
	ActionQuest       ActionKind = "quest"
	ActionLady        ActionKind = "lady"
	ActionAssassinate ActionKind = "assassinate"
	ActionRuleset     ActionKind = "ruleset"
	ActionAbort       ActionKind = "abort"
	ActionLeave       ActionKind = "leave"
	ActionTimeout     ActionKind = "timeout"
)

// Action is the closed set of things that can happen to a game. New kinds
// get a variant here and a mutator in mutators.go.
type Action interface {
	Kind() ActionKind
	isAction()
}

// StartAction deals roles and opens the first round.
type StartAction struct{}

// NominateAction is the monarch's pick for the quest.
type NominateAction struct {
	PlayerIDs []string `json:"playerIds"`
}

// VoteAction is one ballot on the current nomination.
type VoteAction struct {
	Vote Vote `json:"vote"`
}

// QuestAction plays a card on the current quest.
type QuestAction struct {
	Card QuestCard `json:"action"`
}

// LadyAction investigates PlayerID with the Lady of the Lake.
type LadyAction struct {
	PlayerID string `json:"playerId"`
}

// AssassinateAction is the assassin's guess at Merlin.
type AssassinateAction struct {
	PlayerID string `json:"playerId"`
}

// RulesetAction replaces the ruleset and table size before the game starts.
type RulesetAction struct {
	Ruleset    []Rule `json:"ruleset"`
	MaxPlayers int    `json:"maxPlayers"`
}

// AbortAction cancels a game that has not started.
type AbortAction struct{}

// LeaveAction gives up a seat before the game starts.
type LeaveAction struct{}

// TimeoutAction resolves whatever is pending once the Clock deadline passes.
// Only the server issues it.
type TimeoutAction struct{}

func (StartAction) Kind() ActionKind       { return ActionStart }
func (NominateAction) Kind() ActionKind    { return ActionNominate }
func (VoteAction) Kind() ActionKind        { return ActionVote }
func (QuestAction) Kind() ActionKind       { return ActionQuest }
func (LadyAction) Kind() ActionKind        { return ActionLady }
func (AssassinateAction) Kind() ActionKind { return ActionAssassinate }
func (RulesetAction) Kind() ActionKind     { return ActionRuleset }
func (AbortAction) Kind() ActionKind       { return ActionAbort }
func (LeaveAction) Kind() ActionKind       { return ActionLeave }
func (TimeoutAction) Kind() ActionKind     { return ActionTimeout }

func (StartAction) isAction()       {}
func (NominateAction) isAction()    {}
func (VoteAction) isAction()        {}
func (QuestAction) isAction()       {}
func (LadyAction) isAction()        {}
func (AssassinateAction) isAction() {}
func (RulesetAction) isAction()     {}
func (AbortAction) isAction()       {}
func (LeaveAction) isAction()       {}
func (TimeoutAction) isAction()     {}

// DecodeAction parses a client payload of the form {"kind": ..., ...} into
// its Action variant. It checks structure only; game-rule legality is left
// to ProcessAction. Timeouts cannot be submitted by clients.
func DecodeAction(raw []byte) (Action, error) {
	var envelope struct {
		Kind ActionKind `json:"kind"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	switch envelope.Kind {
	case ActionStart:
		return StartAction{}, nil
	case ActionAbort:
		return AbortAction{}, nil
	case ActionLeave:
		return LeaveAction{}, nil
	case ActionNominate:
		var a NominateAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode nominate: %w", err)
		}
		if a.PlayerIDs == nil {
			return nil, fmt.Errorf("nominate requires playerIds")
		}
		return a, nil
	case ActionVote:
		var a VoteAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode vote: %w", err)
		}
		if a.Vote != VoteApprove && a.Vote != VoteReject {
			return nil, fmt.Errorf("vote must be %q or %q", VoteApprove, VoteReject)
		}
		return a, nil
	case ActionQuest:
		var a QuestAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode quest: %w", err)
		}
		if a.Card != QuestCardFail && a.Card != QuestCardSucceed {
			return nil, fmt.Errorf("quest action must be %q or %q", QuestCardFail, QuestCardSucceed)
		}
		return a, nil
	case ActionLady:
		var a LadyAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode lady: %w", err)
		}
		if a.PlayerID == "" {
			return nil, fmt.Errorf("lady requires playerId")
		}
		return a, nil
	case ActionAssassinate:
		var a AssassinateAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode assassinate: %w", err)
		}
		if a.PlayerID == "" {
			return nil, fmt.Errorf("assassinate requires playerId")
		}
		return a, nil
	case ActionRuleset:
		var a RulesetAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode ruleset: %w", err)
		}
		if a.Ruleset == nil {
			a.Ruleset = []Rule{}
		}
		for _, r := range a.Ruleset {
			if _, err := ParseRule(string(r)); err != nil {
				return nil, err
			}
		}
		if a.MaxPlayers <= 0 {
			return nil, fmt.Errorf("ruleset requires maxPlayers")
		}
		return a, nil
	case ActionTimeout:
		return nil, fmt.Errorf("timeout is not a client action")
	case "":
		return nil, fmt.Errorf("action requires kind")
	default:
		return nil, fmt.Errorf("unknown action kind %q", envelope.Kind)
	}
}

// EncodeAction renders a as {"kind": ..., ...fields}, the inverse of
// DecodeAction. Used for the action log.
func EncodeAction(a Action) ([]byte, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s action: %w", a.Kind(), err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode %s action: %w", a.Kind(), err)
	}
	kind, _ := json.Marshal(a.Kind())
	fields["kind"] = kind
	return json.Marshal(fields)
}
