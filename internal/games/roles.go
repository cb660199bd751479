package games

import "fmt"

// Role is a secret character assigned at game start.
type Role string

// Roles.
const (
	RoleMerlin           Role = "Merlin"
	RolePercival         Role = "Percival"
	RoleArthurianServant Role = "Arthurian Servant"
	RoleMordred          Role = "Mordred"
	RoleAssassin         Role = "Assassin"
	RoleMorgana          Role = "Morgana"
	RoleOberon           Role = "Oberon"
	RoleLancelot         Role = "Lancelot"
	RoleMordredicServant Role = "Mordredic Servant"
)

// Team is the win-condition grouping of a role.
type Team string

// Teams.
const (
	TeamArthurian Team = "Arthurian"
	TeamMordredic Team = "Mordredic"
)

// TeamOf returns the team a role plays for.
func TeamOf(role Role) Team {
	switch role {
	case RoleOberon, RoleMordred, RoleMordredicServant, RoleAssassin, RoleMorgana:
		return TeamMordredic
	default:
		return TeamArthurian
	}
}

// RolesForRuleset returns the exact multiset of roles a game with ruleset
// and playerCount needs. Merlin and the Assassin are always present; rule
// roles consume their side's budget and servants fill what is left.
func RolesForRuleset(ruleset []Rule, playerCount int) ([]Role, error) {
	counts, err := GoodEvilNumber(playerCount)
	if err != nil {
		return nil, err
	}
	goodRemaining, evilRemaining := counts.Good, counts.Evil

	roles := make([]Role, 0, playerCount)
	roles = append(roles, RoleMerlin, RoleAssassin)
	goodRemaining--
	evilRemaining--

	for _, rule := range ruleset {
		switch rule {
		case RuleOberon:
			roles = append(roles, RoleOberon)
			evilRemaining--
		case RuleMordred:
			roles = append(roles, RoleMordred)
			evilRemaining--
		case RulePercivalAndMorgana:
			roles = append(roles, RolePercival, RoleMorgana)
			goodRemaining--
			evilRemaining--
		}
	}

	for ; goodRemaining > 0; goodRemaining-- {
		roles = append(roles, RoleArthurianServant)
	}
	for ; evilRemaining > 0; evilRemaining-- {
		roles = append(roles, RoleMordredicServant)
	}

	if len(roles) != playerCount {
		return nil, fmt.Errorf("allocated %d roles for a %d player game with ruleset %s", len(roles), playerCount, formatRuleset(ruleset))
	}
	return roles, nil
}

// allocateRoles shuffles the prescribed roles and deals one to each player.
func allocateRoles(ruleset []Rule, players []Player, rng Rand) (map[string]Role, error) {
	roles, err := RolesForRuleset(ruleset, len(players))
	if err != nil {
		return nil, err
	}
	rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	out := make(map[string]Role, len(players))
	for _, p := range players {
		last := len(roles) - 1
		out[p.ID] = roles[last]
		roles = roles[:last]
	}
	return out, nil
}
