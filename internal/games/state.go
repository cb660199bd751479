package games

import (
	"math"
	"time"
)

// Status is the lifecycle stage of a game. It only moves forward:
// waiting -> in-progress -> finished.
type Status string

// Statuses.
const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in-progress"
	StatusFinished   Status = "finished"
)

// Result is how a finished game ended.
type Result string

// Results.
const (
	ResultArthurianVictory Result = "Arthurian Victory"
	ResultMordredicVictory Result = "Mordredic Victory"
	ResultAssassination    Result = "Assassination"
	ResultDeadlock         Result = "Deadlock"
	ResultAborted          Result = "Aborted"
)

// Vote is a ballot on a nomination.
type Vote string

// Votes.
const (
	VoteApprove Vote = "Approve"
	VoteReject  Vote = "Reject"
)

// QuestCard is the card a quester plays.
type QuestCard string

// Quest cards.
const (
	QuestCardFail    QuestCard = "Fail"
	QuestCardSucceed QuestCard = "Succeed"
)

// Player is a seat at the table. ID doubles as the username.
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// QuestProgress tracks the cards played on an approved nomination.
type QuestProgress struct {
	FailCards      int      `json:"failCards"`
	SuccessCards   int      `json:"successCards"`
	QuestedPlayers []string `json:"questedPlayers"`
	Completed      bool     `json:"completed"`
}

// Round is one nominate -> vote -> (quest) -> (lady) cycle.
type Round struct {
	Monarch          string          `json:"monarch"`
	QuestNumber      int             `json:"questNumber"`
	LadyTarget       string          `json:"ladyTarget,omitempty"`
	LadyUser         string          `json:"ladyUser,omitempty"`
	NominatedPlayers []string        `json:"nominatedPlayers,omitempty"`
	Votes            map[string]Vote `json:"votes"`
	Quest            *QuestProgress  `json:"quest,omitempty"`
}

// Timeset holds the per-phase budgets used by the Clock rule.
type Timeset struct {
	Nominate    time.Duration `json:"nominate"`
	Lady        time.Duration `json:"lady"`
	Quest       time.Duration `json:"quest"`
	Vote        time.Duration `json:"vote"`
	Assassinate time.Duration `json:"assassinate"`
}

// StartTimeout is how long a Clock game may wait for its game master to
// start before a timeout aborts it.
const StartTimeout = 30 * time.Minute

// DefaultTimeset scales the nomination, lady and assassination budgets with
// the table size.
func DefaultTimeset(maxPlayers int) Timeset {
	return Timeset{
		Nominate:    time.Duration(maxPlayers) * time.Minute,
		Assassinate: time.Duration(math.Ceil(float64(maxPlayers-3)/2)) * time.Minute,
		Vote:        2 * time.Minute,
		Lady:        time.Duration(maxPlayers) * time.Minute,
		Quest:       2 * time.Minute,
	}
}

// GameState is the authoritative state of one match.
type GameState struct {
	ID              string   `json:"id"`
	Status          Status   `json:"status"`
	Players         []Player `json:"players"`
	ExpectedPlayers int      `json:"expectedPlayers"`
	// Password is opaque to the engine; the server stores a hash here.
	Password   string   `json:"password,omitempty"`
	TableOrder []string `json:"tableOrder"` // first entry is the starting monarch
	LadyHolder string   `json:"ladyHolder,omitempty"`
	GameMaster string   `json:"gameMaster"`
	Ruleset    []Rule   `json:"ruleset"`
	Timeset    Timeset  `json:"timeset"`
	// TimeoutTime is the Clock deadline for the pending action.
	TimeoutTime         *time.Time      `json:"timeoutTime,omitempty"`
	Rounds              []Round         `json:"rounds"`
	Result              Result          `json:"result,omitempty"`
	HiddenRoles         map[string]Role `json:"hiddenRoles"`
	AssassinationTarget string          `json:"assassinationTarget,omitempty"`
}

// NewGame returns a blank waiting game. The game master still has to join.
func NewGame(id, gameMaster string, ruleset []Rule, maxPlayers int, password string) *GameState {
	rules := make([]Rule, len(ruleset))
	copy(rules, ruleset)
	return &GameState{
		ID:              id,
		Status:          StatusWaiting,
		Players:         []Player{},
		ExpectedPlayers: maxPlayers,
		Password:        password,
		TableOrder:      []string{},
		GameMaster:      gameMaster,
		Ruleset:         rules,
		Timeset:         DefaultTimeset(maxPlayers),
		Rounds:          []Round{},
		HiddenRoles:     map[string]Role{},
	}
}

// InsertPlayer seats player at the end of the table.
func InsertPlayer(s *GameState, player Player) {
	s.Players = append(s.Players, player)
	s.TableOrder = append(s.TableOrder, player.ID)
}

// CanJoin reports whether playerID may take a seat in s.
func CanJoin(s *GameState, playerID string) error {
	if s.Status != StatusWaiting {
		return clientError("Game has already started")
	}
	if s.HasPlayer(playerID) {
		return clientError("You are already in this game!")
	}
	if len(s.Players) >= s.ExpectedPlayers {
		return clientError("Game is already full")
	}
	return nil
}

// HasPlayer reports whether id is seated in the game.
func (s *GameState) HasPlayer(id string) bool {
	for _, p := range s.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// CurrentRound returns the last round, or nil before the game starts.
func (s *GameState) CurrentRound() *Round {
	if len(s.Rounds) == 0 {
		return nil
	}
	return &s.Rounds[len(s.Rounds)-1]
}

// HasRule reports whether the game's ruleset includes rule.
func (s *GameState) HasRule(rule Rule) bool {
	return RulesetHas(s.Ruleset, rule)
}

// Clone returns a deep copy; mutating the copy never touches s.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Players != nil {
		out.Players = make([]Player, len(s.Players))
		copy(out.Players, s.Players)
	}
	out.TableOrder = cloneStrings(s.TableOrder)
	if s.Ruleset != nil {
		out.Ruleset = make([]Rule, len(s.Ruleset))
		copy(out.Ruleset, s.Ruleset)
	}
	if s.TimeoutTime != nil {
		t := *s.TimeoutTime
		out.TimeoutTime = &t
	}
	if s.Rounds != nil {
		out.Rounds = make([]Round, len(s.Rounds))
		for i, r := range s.Rounds {
			out.Rounds[i] = r.clone()
		}
	}
	if s.HiddenRoles != nil {
		out.HiddenRoles = make(map[string]Role, len(s.HiddenRoles))
		for k, v := range s.HiddenRoles {
			out.HiddenRoles[k] = v
		}
	}
	return &out
}

func (r Round) clone() Round {
	out := r
	out.NominatedPlayers = cloneStrings(r.NominatedPlayers)
	if r.Votes != nil {
		out.Votes = make(map[string]Vote, len(r.Votes))
		for k, v := range r.Votes {
			out.Votes[k] = v
		}
	}
	if r.Quest != nil {
		q := *r.Quest
		q.QuestedPlayers = cloneStrings(r.Quest.QuestedPlayers)
		out.Quest = &q
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// GameInfo is the public listing entry for a game.
type GameInfo struct {
	ID               string `json:"id"`
	RequiresPassword bool   `json:"requiresPassword"`
	CurrentPlayers   int    `json:"currentPlayers"`
	MaxPlayers       int    `json:"maxPlayers"`
	Ruleset          []Rule `json:"ruleset"`
	GameMaster       string `json:"gameMaster"`
	Status           Status `json:"status"`
}

// Info summarizes s for game listings.
func Info(s *GameState) GameInfo {
	return GameInfo{
		ID:               s.ID,
		RequiresPassword: s.Password != "",
		CurrentPlayers:   len(s.Players),
		MaxPlayers:       s.ExpectedPlayers,
		Ruleset:          append([]Rule(nil), s.Ruleset...),
		GameMaster:       s.GameMaster,
		Status:           s.Status,
	}
}

// Score is the running quest tally.
type Score struct {
	Fails  int `json:"fails"`
	Passes int `json:"passes"`
}

// ScoreOf counts completed quests. A quest fails when its fail cards reach
// the threshold for its position.
func ScoreOf(s *GameState) (Score, error) {
	var score Score
	quests, err := QuestInformation(len(s.Players))
	if err != nil {
		return score, err
	}
	for _, r := range s.Rounds {
		if r.Quest == nil || !r.Quest.Completed {
			continue
		}
		if r.QuestNumber < 1 || r.QuestNumber > QuestsPerGame {
			continue
		}
		if r.Quest.FailCards >= quests[r.QuestNumber-1].FailsRequired {
			score.Fails++
		} else {
			score.Passes++
		}
	}
	return score, nil
}

// requiredApprovals is the approval count that passes a nomination.
func requiredApprovals(playerCount int) int {
	return (playerCount + 1) / 2
}

// FailedVotes counts every fully-voted round whose nomination was rejected.
func FailedVotes(s *GameState) int {
	failed := 0
	required := requiredApprovals(len(s.Players))
	for _, r := range s.Rounds {
		if len(r.Votes) != len(s.Players) {
			continue
		}
		if countApprovals(r.Votes) < required {
			failed++
		}
	}
	return failed
}

func countApprovals(votes map[string]Vote) int {
	n := 0
	for _, v := range votes {
		if v == VoteApprove {
			n++
		}
	}
	return n
}
