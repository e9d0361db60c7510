package participant

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGender(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
	}{
		{"male", GenderMale},
		{" Male ", GenderMale},
		{"M", GenderMale},
		{"female", GenderFemale},
		{"f", GenderFemale},
		{"Nonbinary", Gender("nonbinary")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGender(tt.in))
		})
	}
}

func TestGenderOpposite(t *testing.T) {
	assert.Equal(t, GenderFemale, GenderMale.Opposite())
	assert.Equal(t, GenderMale, GenderFemale.Opposite())
	assert.Equal(t, Gender(""), Gender("other").Opposite())
	assert.False(t, Gender("other").Valid())
}

func TestNewParticipant(t *testing.T) {
	partyID := uuid.New()

	p, err := NewParticipant(partyID, "  Hanako  ", GenderFemale)
	require.NoError(t, err)

	assert.Equal(t, "Hanako", p.Name)
	assert.Equal(t, partyID, p.PartyID)
	assert.Len(t, p.AccessCode, AccessCodeLength)
	for _, r := range p.AccessCode {
		assert.True(t, strings.ContainsRune(accessCodeAlphabet, r), "unexpected rune %q", r)
	}
	assert.NoError(t, p.Validate())
	assert.True(t, p.IsEligible())
}

func TestParticipantValidate(t *testing.T) {
	assert.Error(t, (&Participant{Name: "a", Gender: GenderMale}).Validate())
	assert.Error(t, (&Participant{PartyID: uuid.New(), Gender: GenderMale}).Validate())
	assert.Error(t, (&Participant{PartyID: uuid.New(), Name: "a"}).Validate())
}

func TestIndex(t *testing.T) {
	a := &Participant{ID: uuid.New()}
	b := &Participant{ID: uuid.New()}

	idx := NewIndex([]*Participant{a, b})
	assert.True(t, idx.Has(a.ID))
	assert.True(t, idx.Has(b.ID))
	assert.False(t, idx.Has(uuid.New()))
}
