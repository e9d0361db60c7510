package export

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gravadigital/konkatsu-api/internal/domain/matching"
	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/seating"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

func people() []*participant.Participant {
	partyID := uuid.New()
	mk := func(n int, name string, g participant.Gender) *participant.Participant {
		return &participant.Participant{ID: uuid.New(), PartyID: partyID, Number: n, Name: name, Gender: g}
	}
	return []*participant.Participant{
		mk(1, "Taro", participant.GenderMale),
		mk(2, "Jiro", participant.GenderMale),
		mk(3, "Hanako", participant.GenderFemale),
	}
}

func open(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestExportWorkbook(t *testing.T) {
	ps := people()
	taro, jiro, hanako := ps[0], ps[1], ps[2]
	partyID := taro.PartyID

	votes := []*vote.Vote{
		vote.NewVote(partyID, taro.ID, hanako.ID, vote.RoundInterim, 1),
		vote.NewVote(partyID, hanako.ID, taro.ID, vote.RoundInterim, 1),
	}
	matches := matching.New(party.DefaultMatchingRule()).Match(ps, votes, vote.RoundInterim)
	chart := seating.New(party.SeatingLayout{TableCount: 1, SeatsPerTable: 2}, party.DefaultGenderRule()).
		Allocate(ps, votes, vote.RoundInterim)

	b, err := NewExporter().Export(Input{
		Participants: ps,
		Matches:      matches.Records(partyID, vote.RoundInterim),
		Seating:      chart,
	})
	require.NoError(t, err)

	f := open(t, b)
	assert.Equal(t, []string{SheetMatches, SheetSeating, SheetUnassigned}, f.GetSheetList())

	rows, err := f.GetRows(SheetMatches)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Position", "Kind", "Male No.", "Male name", "Female No.", "Female name"}, rows[0])
	assert.Equal(t, []string{"1", "mutual", "1", "Taro", "3", "Hanako"}, rows[1])

	rows, err = f.GetRows(SheetSeating)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "1", "1", "Taro", "male"}, rows[1])
	assert.Equal(t, []string{"1", "2", "3", "Hanako", "female"}, rows[2])

	rows, err = f.GetRows(SheetUnassigned)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2", "Jiro", "male"}, rows[1])
	assert.Equal(t, jiro.ID, chart.Unassigned[0])
}

func TestExportWithoutSeating(t *testing.T) {
	ps := people()
	removed := uuid.New()
	records := []*matching.Record{{
		PartyID: ps[0].PartyID, RoundType: vote.RoundFinal,
		MaleID: removed, FemaleID: ps[2].ID, Kind: matching.KindGreedy, Position: 1,
	}}

	b, err := NewExporter().Export(Input{Participants: ps, Matches: records})
	require.NoError(t, err)

	f := open(t, b)
	rows, err := f.GetRows(SheetMatches)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, removed.String(), rows[1][3])

	rows, err = f.GetRows(SheetSeating)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
