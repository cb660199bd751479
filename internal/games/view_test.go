package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewStateAs_HidesRolesAndPendingVotes(t *testing.T) {
	s := nominateFirst(t, startedGame(t, 5))
	s = apply(t, s, "p1", VoteAction{Vote: VoteApprove})
	s = apply(t, s, "p2", VoteAction{Vote: VoteReject})

	view := ViewStateAs(s, "p2")
	assert.Empty(t, view.HiddenRoles)
	assert.Equal(t, map[string]Vote{"p2": VoteReject}, view.CurrentRound().Votes)

	outsider := ViewStateAs(s, "p5")
	assert.Empty(t, outsider.CurrentRound().Votes)

	assert.Len(t, s.HiddenRoles, 5, "source state untouched")
	assert.Len(t, s.CurrentRound().Votes, 2)
}

func TestViewStateAs_RevealsCompletedVote(t *testing.T) {
	s := voteAll(t, nominateFirst(t, startedGame(t, 5)), VoteApprove)
	view := ViewStateAs(s, "p3")
	assert.Len(t, view.CurrentRound().Votes, 5)
}

func TestViewStateAs_HidesCardsUntilQuestCompletes(t *testing.T) {
	s := voteAll(t, nominateFirst(t, startedGame(t, 5)), VoteApprove)
	first := s.CurrentRound().NominatedPlayers[0]
	s = apply(t, s, first, QuestAction{Card: QuestCardFail})

	view := ViewStateAs(s, first)
	quest := view.CurrentRound().Quest
	require.NotNil(t, quest)
	assert.Equal(t, []string{first}, quest.QuestedPlayers)
	assert.Zero(t, quest.FailCards)
	assert.Zero(t, quest.SuccessCards)

	other := ViewStateAs(s, s.CurrentRound().NominatedPlayers[1])
	assert.Empty(t, other.CurrentRound().Quest.QuestedPlayers)

	s = apply(t, s, s.CurrentRound().NominatedPlayers[1], QuestAction{Card: QuestCardSucceed})
	done := ViewStateAs(s, "p5").Rounds[0].Quest
	assert.Equal(t, 1, done.FailCards)
	assert.Equal(t, 1, done.SuccessCards)
}

func TestViewStateAs_FinishedGameIsOpen(t *testing.T) {
	s := startedGame(t, 5)
	for i := 0; i < 3; i++ {
		s = playQuest(t, s, QuestCardFail)
	}
	require.Equal(t, StatusFinished, s.Status)
	view := ViewStateAs(s, "p1")
	assert.Equal(t, s.HiddenRoles, view.HiddenRoles)
}
