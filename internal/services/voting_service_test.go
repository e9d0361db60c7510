package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

func choose(ids ...uuid.UUID) SubmitBallotRequest {
	req := SubmitBallotRequest{}
	for _, id := range ids {
		req.Votes = append(req.Votes, BallotEntry{VotedID: id})
	}
	return req
}

func TestSubmitBallot(t *testing.T) {
	f := newFixture(t, party.StageInterimVoting, "m1", "m2", "f1", "f2")
	ctx := context.Background()
	svc := f.svc.Voting
	m1, m2, f1, f2 := f.people["m1"], f.people["m2"], f.people["f1"], f.people["f2"]

	votes, err := svc.SubmitBallot(ctx, f.party.ID, m1.ID, vote.RoundInterim, choose(f2.ID, f1.ID))
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, 1, votes[0].Rank)
	assert.Equal(t, 2, votes[1].Rank)

	// a new ballot replaces the previous one
	_, err = svc.SubmitBallot(ctx, f.party.ID, m1.ID, vote.RoundInterim, SubmitBallotRequest{
		Votes: []BallotEntry{{VotedID: f1.ID, Rank: 2}, {VotedID: f2.ID, Rank: 1}},
	})
	require.NoError(t, err)

	mine, err := svc.Ballot(ctx, f.party.ID, m1.ID, vote.RoundInterim)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, f2.ID, mine[0].VotedID)
	assert.Equal(t, f1.ID, mine[1].VotedID)

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name  string
			voter uuid.UUID
			round vote.RoundType
			req   SubmitBallotRequest
			want  error
		}{
			{"same gender", m1.ID, vote.RoundInterim, choose(m2.ID), ErrValidation},
			{"stranger", m1.ID, vote.RoundInterim, choose(uuid.New()), ErrValidation},
			{"empty", m1.ID, vote.RoundInterim, SubmitBallotRequest{}, ErrValidation},
			{"duplicate", f1.ID, vote.RoundInterim, choose(m1.ID, m1.ID), ErrValidation},
			{"unknown voter", uuid.New(), vote.RoundInterim, choose(f1.ID), ErrNotFound},
			{"final not open", m1.ID, vote.RoundFinal, choose(f1.ID), ErrInvalidStage},
			{"bad round", m1.ID, vote.RoundType("lunch"), choose(f1.ID), ErrValidation},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.SubmitBallot(ctx, f.party.ID, tt.voter, tt.round, tt.req)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("too many", func(t *testing.T) {
		g := newFixture(t, party.StageInterimVoting, "m1", "f1", "f2", "f3", "f4")
		_, err := g.svc.Voting.SubmitBallot(ctx, g.party.ID, g.people["m1"].ID, vote.RoundInterim,
			choose(g.people["f1"].ID, g.people["f2"].ID, g.people["f3"].ID, g.people["f4"].ID))
		assert.ErrorIs(t, err, ErrValidation)
	})

	all, err := f.store.Votes().ListByRound(ctx, f.party.ID, vote.RoundInterim)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSameGenderVotesWhenMixingNotRequired(t *testing.T) {
	f := newFixture(t, party.StageCreation, "m1", "m2")
	ctx := context.Background()

	_, err := f.svc.Parties.UpdateSettings(ctx, f.party.ID, UpdateSettingsRequest{
		SeatingLayout: party.SeatingLayout{TableCount: 1, SeatsPerTable: 4},
		MatchingRule:  party.DefaultMatchingRule(),
	})
	require.NoError(t, err)
	f.advance(t, party.StageInterimVoting)

	_, err = f.svc.Voting.SubmitBallot(ctx, f.party.ID, f.people["m1"].ID, vote.RoundInterim, choose(f.people["m2"].ID))
	assert.NoError(t, err)

	// still no self votes
	_, err = f.svc.Voting.SubmitBallot(ctx, f.party.ID, f.people["m1"].ID, vote.RoundInterim, choose(f.people["m1"].ID))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCandidates(t *testing.T) {
	f := newFixture(t, party.StageInterimVoting, "m1", "m2", "f1", "f2")
	ctx := context.Background()

	got, err := f.svc.Voting.Candidates(ctx, f.party.ID, f.people["f1"].ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, f.people["m1"].ID, got[0].ID)
	assert.Equal(t, f.people["m2"].ID, got[1].ID)

	_, err = f.svc.Voting.Candidates(ctx, f.party.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
