package party

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

func TestNewParty(t *testing.T) {
	p := NewParty("  Spring Konkatsu Night ", "", "Shibuya", time.Date(2026, 4, 1, 19, 0, 0, 0, time.UTC))

	assert.Equal(t, "Spring Konkatsu Night", p.Name)
	assert.Equal(t, StageCreation, p.Stage)
	assert.True(t, strings.HasPrefix(p.Slug, "spring-konkatsu-night-"), p.Slug)
	assert.NoError(t, p.Validate())
}

func TestMakeSlug(t *testing.T) {
	id := uuid.MustParse("0a1b2c3d-0000-0000-0000-000000000000")

	assert.Equal(t, "summer-party-0a1b2c", MakeSlug("Summer Party!", id))
	assert.Equal(t, "party-0a1b2c", MakeSlug("   ", id))
}

func TestPartyValidate(t *testing.T) {
	valid := NewParty("Autumn", "", "", time.Now())

	noName := *valid
	noName.Name = " "
	assert.Error(t, noName.Validate())

	noDate := *valid
	noDate.EventDate = time.Time{}
	assert.Error(t, noDate.Validate())
}

func TestStageTransitions(t *testing.T) {
	tests := []struct {
		from, to Stage
		allowed  bool
	}{
		{StageCreation, StageRegistration, true},
		{StageCreation, StageInterimVoting, false},
		{StageRegistration, StageInterimVoting, true},
		{StageRegistration, StageFinalVoting, true},
		{StageInterimVoting, StageInterimResults, true},
		{StageInterimVoting, StageFinalVoting, false},
		{StageInterimResults, StageFinalVoting, true},
		{StageFinalVoting, StageFinalResults, true},
		{StageFinalResults, StageCreation, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			p := &Party{Stage: tt.from}
			assert.Equal(t, tt.allowed, p.CanTransitionTo(tt.to))

			err := p.UpdateStage(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, p.Stage)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.from, p.Stage)
			}
		})
	}
}

func TestAcceptsVotes(t *testing.T) {
	p := &Party{Stage: StageInterimVoting}
	assert.True(t, p.AcceptsVotes(vote.RoundInterim))
	assert.False(t, p.AcceptsVotes(vote.RoundFinal))

	p.Stage = StageFinalVoting
	assert.True(t, p.AcceptsVotes(vote.RoundFinal))
	assert.False(t, p.AcceptsVotes(vote.RoundInterim))
	assert.False(t, p.AcceptsRegistration())
}

func TestAcceptsGeneration(t *testing.T) {
	tests := []struct {
		stage          Stage
		interim, final bool
	}{
		{StageRegistration, false, false},
		{StageInterimVoting, true, false},
		{StageInterimResults, true, false},
		{StageFinalVoting, false, true},
		{StageFinalResults, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			p := &Party{Stage: tt.stage}
			assert.Equal(t, tt.interim, p.AcceptsGeneration(vote.RoundInterim))
			assert.Equal(t, tt.final, p.AcceptsGeneration(vote.RoundFinal))
			assert.False(t, p.AcceptsGeneration("lunch"))
		})
	}
}

func TestStageJSON(t *testing.T) {
	data, err := json.Marshal(StageInterimResults)
	require.NoError(t, err)
	assert.Equal(t, `"interim_results"`, string(data))

	var s Stage
	require.NoError(t, json.Unmarshal([]byte(`"final_voting"`), &s))
	assert.Equal(t, StageFinalVoting, s)
	assert.Error(t, json.Unmarshal([]byte(`"lunch"`), &s))
}

func TestStageScan(t *testing.T) {
	var s Stage
	require.NoError(t, s.Scan([]byte("registration")))
	assert.Equal(t, StageRegistration, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, StageCreation, s)

	assert.Error(t, s.Scan("nope"))

	v, err := StageFinalResults.Value()
	require.NoError(t, err)
	assert.Equal(t, "final_results", v)
}

func TestSettingsDefaults(t *testing.T) {
	s := NewSettings(uuid.New())

	require.NoError(t, s.Validate())
	assert.Equal(t, 8, s.SeatingLayout.Capacity())
	assert.True(t, s.MatchingRule.PrioritizeMutual)
	assert.True(t, s.MatchingRule.ConsiderRanking)
	assert.True(t, s.GenderRule.AlternateSeating)
	assert.True(t, s.GenderRule.RequireMixedGender)
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		layout  SeatingLayout
		wantErr string
	}{
		{"uniform", SeatingLayout{TableCount: 3, SeatsPerTable: 4}, ""},
		{"zero tables", SeatingLayout{TableCount: 0, SeatsPerTable: 4}, "table_count"},
		{"negative seats", SeatingLayout{TableCount: 2, SeatsPerTable: -1}, "seats_per_table"},
		{"explicit", SeatingLayout{Tables: []TableSpec{{Name: "A", Capacity: 6}}}, ""},
		{"explicit empty table", SeatingLayout{Tables: []TableSpec{{Capacity: 6}, {Capacity: 0}}}, "table 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings(uuid.New())
			s.SeatingLayout = tt.layout

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}

	t.Run("missing party", func(t *testing.T) {
		assert.Error(t, NewSettings(uuid.Nil).Validate())
	})
}

func TestSeatingLayoutTableSpecs(t *testing.T) {
	uniform := SeatingLayout{TableCount: 2, SeatsPerTable: 4}
	assert.Equal(t, []TableSpec{{Name: "1", Capacity: 4}, {Name: "2", Capacity: 4}}, uniform.TableSpecs())
	assert.Equal(t, 8, uniform.Capacity())
	assert.Equal(t, 4, uniform.MaxSeatsPerTable())

	explicit := SeatingLayout{
		TableCount:    5,
		SeatsPerTable: 10,
		Tables:        []TableSpec{{Name: "Rose", Capacity: 6}, {Capacity: 4}},
	}
	assert.Equal(t, []TableSpec{{Name: "Rose", Capacity: 6}, {Name: "2", Capacity: 4}}, explicit.TableSpecs())
	assert.Equal(t, 10, explicit.Capacity())
	assert.Equal(t, 6, explicit.MaxSeatsPerTable())

	// expansion must not write back into the configured slice
	assert.Empty(t, explicit.Tables[1].Name)
}
