package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dealtGame is an in-progress game with a fixed role assignment.
func dealtGame(t *testing.T, roles map[string]Role, ruleset ...Rule) *GameState {
	t.Helper()
	s := waitingGame(t, len(roles), ruleset...)
	s.Status = StatusInProgress
	s.HiddenRoles = roles
	return s
}

func factsAbout(known []Knowledge) map[string]KnowledgeInfo {
	out := map[string]KnowledgeInfo{}
	for _, k := range known {
		out[k.PlayerID] = k.Info
	}
	return out
}

var sevenRoles = map[string]Role{
	"p1": RoleMerlin,
	"p2": RolePercival,
	"p3": RoleArthurianServant,
	"p4": RoleAssassin,
	"p5": RoleMordred,
	"p6": RoleMorgana,
	"p7": RoleOberon,
}

func TestKnowledge_Merlin(t *testing.T) {
	s := dealtGame(t, sevenRoles, RuleMordred, RuleOberon, RulePercivalAndMorgana)
	facts := factsAbout(GenerateKnowledgeMap(s, NewSeededRand(3))["p1"])

	assert.Len(t, facts, 4)
	for _, id := range []string{"p4", "p6", "p7"} {
		assert.Equal(t, KnowledgeInfo{Type: InfoTeam, Team: TeamMordredic}, facts[id], id)
	}
	assert.NotContains(t, facts, "p5", "mordred is hidden from merlin")
	assert.Equal(t, KnowledgeInfo{Type: InfoRole, Role: RoleMerlin}, facts["p1"])
}

func TestKnowledge_Percival(t *testing.T) {
	s := dealtGame(t, sevenRoles, RuleMordred, RuleOberon, RulePercivalAndMorgana)
	known := GenerateKnowledgeMap(s, NewSeededRand(3))["p2"]

	var sight []string
	for _, k := range known {
		if k.Info.Type == InfoPercivalicSight {
			sight = append(sight, k.PlayerID)
		}
	}
	assert.ElementsMatch(t, []string{"p1", "p6"}, sight)
	assert.Len(t, known, 3)
}

func TestKnowledge_EvilTeam(t *testing.T) {
	s := dealtGame(t, sevenRoles, RuleMordred, RuleOberon, RulePercivalAndMorgana)
	all := GenerateKnowledgeMap(s, NewSeededRand(3))

	assassin := factsAbout(all["p4"])
	assert.Len(t, assassin, 3)
	assert.Equal(t, TeamMordredic, assassin["p5"].Team)
	assert.Equal(t, TeamMordredic, assassin["p6"].Team)
	assert.NotContains(t, assassin, "p7", "oberon is unseen")

	oberon := factsAbout(all["p7"])
	assert.Len(t, oberon, 1)

	servant := all["p3"]
	require.Len(t, servant, 1)
	assert.Equal(t, roleFact("p3", RoleArthurianServant), servant[0])
}

func TestKnowledge_VisibleTeammateRoles(t *testing.T) {
	s := dealtGame(t, sevenRoles, RuleMordred, RuleOberon, RulePercivalAndMorgana, RuleVisibleTeammateRoles)
	facts := factsAbout(GenerateKnowledgeMap(s, NewSeededRand(3))["p5"])

	assert.Equal(t, KnowledgeInfo{Type: InfoRole, Role: RoleAssassin}, facts["p4"])
	assert.Equal(t, KnowledgeInfo{Type: InfoRole, Role: RoleMorgana}, facts["p6"])

	merlin := factsAbout(GenerateKnowledgeMap(s, NewSeededRand(3))["p1"])
	assert.Equal(t, InfoTeam, merlin["p4"].Type, "merlin still sees teams only")
}

func TestKnowledge_LadyRevealsAppended(t *testing.T) {
	s := dealtGame(t, sevenRoles, RuleLadyOfTheLake)
	s.Rounds = []Round{
		{Monarch: "p1", QuestNumber: 2, LadyUser: "p3", LadyTarget: "p5"},
		{Monarch: "p2", QuestNumber: 3, LadyUser: "p5", LadyTarget: "p2"},
	}
	all := GenerateKnowledgeMap(s, NewSeededRand(3))

	servant := all["p3"]
	require.Len(t, servant, 2)
	assert.Equal(t, Knowledge{
		PlayerID: "p5",
		Source:   SourceLady,
		Info:     KnowledgeInfo{Type: InfoTeam, Team: TeamMordredic},
	}, servant[1])

	mordred := all["p5"]
	last := mordred[len(mordred)-1]
	assert.Equal(t, SourceLady, last.Source)
	assert.Equal(t, TeamArthurian, last.Info.Team)
}

func TestKnowledge_Deterministic(t *testing.T) {
	s := dealtGame(t, sevenRoles, RuleMordred, RuleOberon, RulePercivalAndMorgana)
	assert.Equal(t,
		GenerateKnowledgeMap(s, NewSeededRand(11)),
		GenerateKnowledgeMap(s, NewSeededRand(11)))
}
