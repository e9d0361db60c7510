package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/konkatsu-api/internal/domain/matching"
	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/storage/postgres"
)

func seed(t *testing.T, s *Store) (*party.Party, *participant.Participant, *participant.Participant) {
	t.Helper()
	ctx := context.Background()

	p := party.NewParty("Memory party", "", "", time.Now().Add(time.Hour))
	require.NoError(t, s.Parties().Create(ctx, p))

	m, err := participant.NewParticipant(p.ID, "Taro", participant.GenderMale)
	require.NoError(t, err)
	require.NoError(t, s.Participants().Create(ctx, m))

	f, err := participant.NewParticipant(p.ID, "Hanako", participant.GenderFemale)
	require.NoError(t, err)
	require.NoError(t, s.Participants().Create(ctx, f))

	return p, m, f
}

func TestParticipants(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p, m, f := seed(t, s)

	assert.Equal(t, 1, m.Number)
	assert.Equal(t, 2, f.Number)

	dup := *p
	dup.ID = uuid.New()
	assert.ErrorIs(t, s.Parties().Create(ctx, &dup), postgres.ErrConflict)

	men, err := s.Participants().ListByParty(ctx, p.ID, postgres.ParticipantFilter{Gender: participant.GenderMale})
	require.NoError(t, err)
	require.Len(t, men, 1)

	// returned values are copies
	men[0].Name = "changed"
	again, err := s.Participants().GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Taro", again.Name)
}

func TestDeleteParticipantDropsVotes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p, m, f := seed(t, s)

	require.NoError(t, s.Votes().ReplaceBallot(ctx, p.ID, m.ID, vote.RoundInterim,
		[]*vote.Vote{vote.NewVote(p.ID, m.ID, f.ID, vote.RoundInterim, 1)}))

	require.NoError(t, s.Participants().Delete(ctx, p.ID, f.ID))
	votes, err := s.Votes().ListByRound(ctx, p.ID, vote.RoundInterim)
	require.NoError(t, err)
	assert.Empty(t, votes)

	assert.ErrorIs(t, s.Participants().Delete(ctx, p.ID, f.ID), postgres.ErrNotFound)
}

func TestReplaceRoundChecksRecords(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p, m, f := seed(t, s)

	rec := &matching.Record{PartyID: p.ID, RoundType: vote.RoundFinal, MaleID: m.ID, FemaleID: f.ID, Kind: matching.KindMutual, Position: 1}
	assert.Error(t, s.Matches().ReplaceRound(ctx, p.ID, vote.RoundInterim, []*matching.Record{rec}))

	require.NoError(t, s.Matches().ReplaceRound(ctx, p.ID, vote.RoundFinal, []*matching.Record{rec}))
	got, err := s.Matches().ListByRound(ctx, p.ID, vote.RoundFinal)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = s.Seating().GetByRound(ctx, p.ID, vote.RoundFinal)
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}
