package games

import (
	"errors"
	"fmt"
	"strings"
)

// Rule is an optional modifier a game master can add to the ruleset.
type Rule string

// Rules.
const (
	RuleLadyOfTheLake        Rule = "Lady of the Lake"
	RuleOberon               Rule = "Oberon"
	RuleMorgause             Rule = "Morgause"
	RuleMordred              Rule = "Mordred"
	RulePercivalAndMorgana   Rule = "Percival and Morgana"
	RuleExcalibur            Rule = "Excalibur"
	RuleQuickshotAssassin    Rule = "Quickshot Assassin"
	RuleVisibleTeammateRoles Rule = "Visible Teammate Roles"
	RuleLancelot             Rule = "Lancelot"
	RuleTargeting            Rule = "Targeting"
	RuleClock                Rule = "Clock"
)

// allRules is the complete catalog in display order.
var allRules = []Rule{
	RuleLadyOfTheLake,
	RuleOberon,
	RuleMorgause,
	RuleMordred,
	RulePercivalAndMorgana,
	RuleExcalibur,
	RuleQuickshotAssassin,
	RuleVisibleTeammateRoles,
	RuleLancelot,
	RuleTargeting,
	RuleClock,
}

// AllRules returns every recognized rule.
func AllRules() []Rule {
	out := make([]Rule, len(allRules))
	copy(out, allRules)
	return out
}

// ParseRule returns the Rule named s, or an error if s is not in the catalog.
func ParseRule(s string) (Rule, error) {
	for _, r := range allRules {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown rule %q", s)
}

// RuleDescription returns the player-facing explanation of a rule.
func RuleDescription(rule Rule) string {
	switch rule {
	case RuleClock:
		return "Adds a timer to the game to avoid infinite filibusters"
	case RuleOberon:
		return "Adds Oberon. Oberon acts as a nerfed evil player who is unknown to and doesn't know his own teammates"
	case RuleMordred:
		return "Adds Mordred. Mordred is an evil player unknown to Merlin"
	case RuleLancelot:
		return "Not implemented"
	case RuleMorgause:
		return "Morgause is used at the beginning of the game by Assassin to rearrange the table"
	case RuleExcalibur:
		return "Excalibur is used to flip a specific quest result"
	case RuleTargeting:
		return "Quests can be done in any order"
	case RuleLadyOfTheLake:
		return "The lady of the lake allows someone to see the true team of another player"
	case RuleQuickshotAssassin:
		return "The assassin can attack Merlin at any point, and must do so before the conclusion of the final round. Recommended for experienced players"
	case RulePercivalAndMorgana:
		return "Adds Percival, who must distinguish between Merlin and Morgana to discover the truth"
	case RuleVisibleTeammateRoles:
		return "Evil players know the exact roles of their teammates"
	}
	return ""
}

// RulesetHas reports whether rule is part of ruleset.
func RulesetHas(ruleset []Rule, rule Rule) bool {
	for _, r := range ruleset {
		if r == rule {
			return true
		}
	}
	return false
}

// Quest is one row of the quest table.
type Quest struct {
	PlayersRequired int `json:"playersRequired"`
	FailsRequired   int `json:"failsRequired"`
}

// QuestsPerGame is the number of quests in every game.
const QuestsPerGame = 5

// Player count bounds.
const (
	MinPlayers = 5
	MaxPlayers = 10
)

var questTable = map[int][QuestsPerGame]Quest{
	5:  {{2, 1}, {3, 1}, {2, 1}, {3, 1}, {3, 1}},
	6:  {{2, 1}, {3, 1}, {4, 1}, {3, 1}, {4, 1}},
	7:  {{2, 1}, {3, 1}, {3, 1}, {4, 2}, {4, 1}},
	8:  {{3, 1}, {4, 1}, {4, 1}, {5, 2}, {5, 1}},
	9:  {{3, 1}, {4, 1}, {4, 1}, {5, 2}, {5, 1}},
	10: {{3, 1}, {4, 1}, {4, 1}, {5, 2}, {5, 1}},
}

// TeamCounts is the good/evil headcount for a player count.
type TeamCounts struct {
	Good int `json:"good"`
	Evil int `json:"evil"`
}

var teamCounts = map[int]TeamCounts{
	5:  {Good: 3, Evil: 2},
	6:  {Good: 4, Evil: 2},
	7:  {Good: 4, Evil: 3},
	8:  {Good: 5, Evil: 3},
	9:  {Good: 5, Evil: 4},
	10: {Good: 6, Evil: 4},
}

// QuestInformation returns the five quests for playerCount.
// Counts outside [MinPlayers, MaxPlayers] are a caller bug and return an error.
func QuestInformation(playerCount int) ([QuestsPerGame]Quest, error) {
	quests, ok := questTable[playerCount]
	if !ok {
		return [QuestsPerGame]Quest{}, fmt.Errorf("no quest information for %d players", playerCount)
	}
	return quests, nil
}

// GoodEvilNumber returns the team headcounts for playerCount.
func GoodEvilNumber(playerCount int) (TeamCounts, error) {
	counts, ok := teamCounts[playerCount]
	if !ok {
		return TeamCounts{}, fmt.Errorf("no good/evil split for %d players", playerCount)
	}
	return counts, nil
}

// ValidateRuleset checks ruleset against playerCount and returns a
// human-readable violation, or nil when the combination is playable.
// It gates both game creation and ruleset edits.
func ValidateRuleset(ruleset []Rule, playerCount int) error {
	seen := make(map[Rule]bool, len(ruleset))
	for _, r := range ruleset {
		if seen[r] {
			return errors.New("ruleset has duplicate rules; all rules should be unique")
		}
		seen[r] = true
		if _, err := ParseRule(string(r)); err != nil {
			return fmt.Errorf("ruleset contains unrecognized rule %q", r)
		}
	}

	counts, err := GoodEvilNumber(playerCount)
	if err != nil {
		return fmt.Errorf("need a player amount between %d and %d (inclusive), got %d", MinPlayers, MaxPlayers, playerCount)
	}

	// Merlin and the Assassin are always in play.
	requiredGood, requiredEvil := 1, 1
	for _, r := range ruleset {
		switch r {
		case RuleOberon, RuleMordred:
			requiredEvil++
		case RulePercivalAndMorgana:
			requiredEvil++
			requiredGood++
		}
	}

	if requiredEvil > counts.Evil {
		return fmt.Errorf("%d evil players needed for this ruleset, but only %d available", requiredEvil, counts.Evil)
	}
	if requiredGood > counts.Good {
		return fmt.Errorf("%d good players needed for this ruleset, but only %d available", requiredGood, counts.Good)
	}
	return nil
}

// formatRuleset renders a ruleset for error messages.
func formatRuleset(ruleset []Rule) string {
	names := make([]string, len(ruleset))
	for i, r := range ruleset {
		names[i] = string(r)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
