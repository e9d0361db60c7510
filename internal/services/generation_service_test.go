package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gravadigital/konkatsu-api/internal/domain/matching"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/export"
	"github.com/gravadigital/konkatsu-api/internal/lock"
	"github.com/gravadigital/konkatsu-api/internal/publish"
)

type recordingPublisher struct {
	mu    sync.Mutex
	snaps []publish.Snapshot
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, snap publish.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, snap)
	return p.err
}

func (f *fixture) vote(t *testing.T, round vote.RoundType, voter string, targets ...string) {
	t.Helper()
	ids := make([]uuid.UUID, len(targets))
	for i, name := range targets {
		ids[i] = f.people[name].ID
	}
	_, err := f.svc.Voting.SubmitBallot(context.Background(), f.party.ID, f.people[voter].ID, round, choose(ids...))
	require.NoError(t, err)
}

func (f *fixture) generation(locker lock.PartyLocker, pub publish.Publisher) *GenerationService {
	return NewGenerationService(f.store, locker, pub, export.NewExporter())
}

func TestGenerateMatchesInterim(t *testing.T) {
	f := newFixture(t, party.StageInterimVoting, "m1", "m2", "f1", "f2")
	ctx := context.Background()
	pub := &recordingPublisher{}
	gen := f.generation(lock.NewMemoryLocker(), pub)

	f.vote(t, vote.RoundInterim, "m1", "f1")
	f.vote(t, vote.RoundInterim, "f1", "m1")
	f.vote(t, vote.RoundInterim, "m2", "f1")

	out, err := gen.GenerateMatches(ctx, f.party.ID, vote.RoundInterim)
	require.NoError(t, err)

	m1, m2, f1, f2 := f.people["m1"], f.people["m2"], f.people["f1"], f.people["f2"]
	assert.Equal(t, []matching.Pair{
		{MaleID: m1.ID, FemaleID: f1.ID, Kind: matching.KindMutual},
		{MaleID: m2.ID, FemaleID: f2.ID, Kind: matching.KindGreedy},
	}, out.Pairs)
	assert.Empty(t, out.Unmatched)
	assert.Empty(t, out.Warnings)

	require.NotNil(t, out.Seating)
	seats := out.Seating.Tables[0].Seats
	assert.Equal(t, m1.ID, seats[0].Occupant.ParticipantID)
	assert.Equal(t, f1.ID, seats[1].Occupant.ParticipantID)
	assert.Equal(t, 4, out.Seating.Stats.Assigned)

	stored, err := gen.GetMatches(ctx, f.party.ID, vote.RoundInterim)
	require.NoError(t, err)
	require.Len(t, stored.Matches, 2)
	assert.Equal(t, 1, stored.Matches[0].Position)

	chart, err := gen.GetSeating(ctx, f.party.ID, vote.RoundInterim)
	require.NoError(t, err)
	assert.Equal(t, out.Seating.Stats, chart.Stats)

	require.Len(t, pub.snaps, 1)
	assert.Equal(t, f.party.Slug, pub.snaps[0].Party)
	assert.Equal(t, vote.RoundInterim, pub.snaps[0].Round)

	// regenerating replaces the batch instead of appending
	_, err = gen.GenerateMatches(ctx, f.party.ID, vote.RoundInterim)
	require.NoError(t, err)
	stored, err = gen.GetMatches(ctx, f.party.ID, vote.RoundInterim)
	require.NoError(t, err)
	assert.Len(t, stored.Matches, 2)
}

func TestGenerateMatchesFinal(t *testing.T) {
	f := newFixture(t, party.StageFinalVoting, "m1", "m2", "m3", "f1")
	ctx := context.Background()
	gen := f.generation(nil, nil)

	f.vote(t, vote.RoundFinal, "m3", "f1")

	out, err := gen.GenerateMatches(ctx, f.party.ID, vote.RoundFinal)
	require.NoError(t, err)
	assert.Nil(t, out.Seating)
	require.Len(t, out.Pairs, 1)
	// m3 voted but the greedy pass walks males in popularity order, so m1 gets f1
	assert.Equal(t, f.people["m1"].ID, out.Pairs[0].MaleID)
	assert.Equal(t, matching.KindGreedy, out.Pairs[0].Kind)
	assert.Len(t, out.Unmatched, 2)
	assert.Len(t, out.Warnings, 1)

	_, err = gen.GetSeating(ctx, f.party.ID, vote.RoundFinal)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateMatchesErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no votes", func(t *testing.T) {
		f := newFixture(t, party.StageInterimVoting, "m1", "f1")
		_, err := f.generation(nil, nil).GenerateMatches(ctx, f.party.ID, vote.RoundInterim)
		assert.ErrorIs(t, err, ErrNoVotes)
	})

	t.Run("wrong stage", func(t *testing.T) {
		f := newFixture(t, party.StageInterimVoting, "m1", "f1")
		f.vote(t, vote.RoundInterim, "m1", "f1")
		_, err := f.generation(nil, nil).GenerateMatches(ctx, f.party.ID, vote.RoundFinal)
		assert.ErrorIs(t, err, ErrInvalidStage)
	})

	t.Run("insufficient seats", func(t *testing.T) {
		f := newFixture(t, party.StageCreation, "m1", "m2", "f1")
		_, err := f.svc.Parties.UpdateSettings(ctx, f.party.ID, UpdateSettingsRequest{
			SeatingLayout: party.SeatingLayout{TableCount: 1, SeatsPerTable: 2},
			MatchingRule:  party.DefaultMatchingRule(),
			GenderRule:    party.DefaultGenderRule(),
		})
		require.NoError(t, err)
		f.advance(t, party.StageInterimVoting)
		f.vote(t, vote.RoundInterim, "m1", "f1")

		gen := f.generation(nil, nil)
		_, err = gen.GenerateMatches(ctx, f.party.ID, vote.RoundInterim)
		assert.ErrorIs(t, err, ErrInsufficientSeats)

		stored, err := gen.GetMatches(ctx, f.party.ID, vote.RoundInterim)
		require.NoError(t, err)
		assert.Empty(t, stored.Matches)
	})

	t.Run("busy", func(t *testing.T) {
		f := newFixture(t, party.StageInterimVoting, "m1", "f1")
		f.vote(t, vote.RoundInterim, "m1", "f1")

		locker := lock.NewMemoryLocker()
		release, err := locker.Acquire(ctx, f.party.ID)
		require.NoError(t, err)

		gen := f.generation(locker, nil)
		_, err = gen.GenerateMatches(ctx, f.party.ID, vote.RoundInterim)
		assert.ErrorIs(t, err, ErrBusy)

		require.NoError(t, release(ctx))
		_, err = gen.GenerateMatches(ctx, f.party.ID, vote.RoundInterim)
		assert.NoError(t, err)
	})
}

func TestGenerateSeating(t *testing.T) {
	f := newFixture(t, party.StageCreation, "m1", "m2", "f1")
	ctx := context.Background()

	_, err := f.svc.Parties.UpdateSettings(ctx, f.party.ID, UpdateSettingsRequest{
		SeatingLayout: party.SeatingLayout{TableCount: 1, SeatsPerTable: 4},
	})
	require.NoError(t, err)
	f.advance(t, party.StageInterimVoting)

	pub := &recordingPublisher{err: errors.New("minio down")}
	res, err := f.generation(nil, pub).GenerateSeating(ctx, f.party.ID, vote.RoundInterim)
	require.NoError(t, err, "publish failures must not fail generation")

	// no votes and no alternation: plain male-then-female fill
	seats := res.Tables[0].Seats
	assert.Equal(t, f.people["m1"].ID, seats[0].Occupant.ParticipantID)
	assert.Equal(t, f.people["m2"].ID, seats[1].Occupant.ParticipantID)
	assert.Equal(t, f.people["f1"].ID, seats[2].Occupant.ParticipantID)
	assert.True(t, seats[3].Empty())
	assert.Len(t, pub.snaps, 1)
}

func TestExport(t *testing.T) {
	f := newFixture(t, party.StageInterimVoting, "m1", "f1")
	ctx := context.Background()
	gen := f.generation(nil, nil)

	f.vote(t, vote.RoundInterim, "m1", "f1")
	_, err := gen.GenerateMatches(ctx, f.party.ID, vote.RoundInterim)
	require.NoError(t, err)

	body, name, err := gen.Export(ctx, f.party.ID, vote.RoundInterim)
	require.NoError(t, err)
	assert.Equal(t, f.party.Slug+"-interim.xlsx", name)

	wb, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(export.SheetMatches)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "m1", rows[1][3])

	// final round has neither matches nor a chart yet
	_, _, err = gen.Export(ctx, f.party.ID, vote.RoundFinal)
	assert.NoError(t, err)
}
