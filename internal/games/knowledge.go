package games

import "sort"

// KnowledgeSource says where a fact came from.
type KnowledgeSource string

// Knowledge sources.
const (
	SourceInitial KnowledgeSource = "initial"
	SourceLady    KnowledgeSource = "lady"
)

// InfoType discriminates KnowledgeInfo.
type InfoType string

// Info types.
const (
	InfoTeam            InfoType = "team"
	InfoRole            InfoType = "role"
	InfoPercivalicSight InfoType = "percivalic sight"
)

// KnowledgeInfo is one of {team}, {role} or percivalic sight.
type KnowledgeInfo struct {
	Type InfoType `json:"type"`
	Team Team     `json:"team,omitempty"`
	Role Role     `json:"role,omitempty"`
}

// Knowledge is a fact a player is allowed to know about PlayerID.
type Knowledge struct {
	PlayerID string          `json:"playerId"`
	Source   KnowledgeSource `json:"source"`
	Info     KnowledgeInfo   `json:"info"`
}

// seesTeammates are the evil roles that know each other.
func seesTeammates(r Role) bool {
	switch r {
	case RoleMordredicServant, RoleAssassin, RoleMordred, RoleMorgana:
		return true
	}
	return false
}

// merlinSees is everything evil except Mordred.
func merlinSees(r Role) bool {
	switch r {
	case RoleMorgana, RoleAssassin, RoleOberon, RoleMordredicServant:
		return true
	}
	return false
}

// GenerateKnowledgeMap derives what each player may know from the role
// assignment, keyed by player id. Initial facts are shuffled so their order
// leaks nothing; Lady of the Lake reveals recorded in the rounds are appended
// after, one per use, even when they repeat something already known.
func GenerateKnowledgeMap(s *GameState, rng Rand) map[string][]Knowledge {
	if rng == nil {
		rng = DefaultRand
	}
	showRoles := s.HasRule(RuleVisibleTeammateRoles)

	ids := make([]string, 0, len(s.HiddenRoles))
	for id := range s.HiddenRoles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string][]Knowledge, len(ids))
	for _, player := range ids {
		role := s.HiddenRoles[player]
		var known []Knowledge

		for _, other := range ids {
			if other == player {
				continue
			}
			otherRole := s.HiddenRoles[other]
			switch {
			case seesTeammates(role) && seesTeammates(otherRole):
				if showRoles {
					known = append(known, roleFact(other, otherRole))
				} else {
					known = append(known, teamFact(other, TeamMordredic, SourceInitial))
				}
			case role == RolePercival && (otherRole == RoleMerlin || otherRole == RoleMorgana):
				known = append(known, Knowledge{
					PlayerID: other,
					Source:   SourceInitial,
					Info:     KnowledgeInfo{Type: InfoPercivalicSight},
				})
			case role == RoleMerlin && merlinSees(otherRole):
				known = append(known, teamFact(other, TeamMordredic, SourceInitial))
			}
		}

		known = append(known, roleFact(player, role))
		rng.Shuffle(len(known), func(i, j int) { known[i], known[j] = known[j], known[i] })
		out[player] = known
	}

	for _, r := range s.Rounds {
		if r.LadyUser == "" || r.LadyTarget == "" {
			continue
		}
		targetRole, ok := s.HiddenRoles[r.LadyTarget]
		if !ok {
			continue
		}
		if _, ok := out[r.LadyUser]; !ok {
			continue
		}
		out[r.LadyUser] = append(out[r.LadyUser], teamFact(r.LadyTarget, TeamOf(targetRole), SourceLady))
	}
	return out
}

func roleFact(playerID string, role Role) Knowledge {
	return Knowledge{
		PlayerID: playerID,
		Source:   SourceInitial,
		Info:     KnowledgeInfo{Type: InfoRole, Role: role},
	}
}

func teamFact(playerID string, team Team, source KnowledgeSource) Knowledge {
	return Knowledge{
		PlayerID: playerID,
		Source:   source,
		Info:     KnowledgeInfo{Type: InfoTeam, Team: team},
	}
}
