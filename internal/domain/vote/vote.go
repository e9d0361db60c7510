package vote

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxRank is the lowest preference a voter may give; a ballot holds at most MaxRank votes
const MaxRank = 3

// Vote is one ranked preference of a voter for another participant in a round
type Vote struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PartyID   uuid.UUID `json:"party_id" gorm:"type:uuid;not null"`
	VoterID   uuid.UUID `json:"voter_id" gorm:"type:uuid;not null"`
	VotedID   uuid.UUID `json:"voted_id" gorm:"type:uuid;not null"`
	RoundType RoundType `json:"round_type" gorm:"type:round_type;not null"`
	Rank      int       `json:"rank" gorm:"not null"` // 1 = most preferred
	VotedAt   time.Time `json:"voted_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (Vote) TableName() string {
	return "votes"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func NewVote(partyID, voterID, votedID uuid.UUID, round RoundType, rank int) *Vote {
	return &Vote{
		ID:        uuid.New(),
		PartyID:   partyID,
		VoterID:   voterID,
		VotedID:   votedID,
		RoundType: round,
		Rank:      rank,
		VotedAt:   time.Now(),
	}
}

// Validate checks if the vote data is valid
func (v *Vote) Validate() error {
	if v.PartyID == uuid.Nil {
		return fmt.Errorf("party_id is required")
	}
	if v.VoterID == uuid.Nil {
		return fmt.Errorf("voter_id is required")
	}
	if v.VotedID == uuid.Nil {
		return fmt.Errorf("voted_id is required")
	}
	if v.VoterID == v.VotedID {
		return fmt.Errorf("a participant cannot vote for themselves")
	}
	if !v.RoundType.Valid() {
		return fmt.Errorf("invalid round_type: %q", v.RoundType)
	}
	if v.Rank < 1 || v.Rank > MaxRank {
		return fmt.Errorf("rank must be between 1 and %d", MaxRank)
	}
	return nil
}

// ValidateBallot checks one voter's votes for a round: at most MaxRank votes,
// unique ranks, unique targets, all from the same voter and round.
func ValidateBallot(votes []*Vote) error {
	if len(votes) == 0 {
		return fmt.Errorf("ballot must contain at least one vote")
	}
	if len(votes) > MaxRank {
		return fmt.Errorf("ballot may contain at most %d votes, got %d", MaxRank, len(votes))
	}

	first := votes[0]
	ranks := make(map[int]bool, len(votes))
	targets := make(map[uuid.UUID]bool, len(votes))

	for _, v := range votes {
		if err := v.Validate(); err != nil {
			return err
		}
		if v.VoterID != first.VoterID || v.PartyID != first.PartyID || v.RoundType != first.RoundType {
			return fmt.Errorf("ballot votes must share voter, party and round")
		}
		if ranks[v.Rank] {
			return fmt.Errorf("duplicate rank %d", v.Rank)
		}
		if targets[v.VotedID] {
			return fmt.Errorf("duplicate vote for participant %s", v.VotedID)
		}
		ranks[v.Rank] = true
		targets[v.VotedID] = true
	}

	return nil
}

// RoundType distinguishes the interim vote, which also drives seating, from the final vote
type RoundType string

const (
	RoundInterim RoundType = "interim"
	RoundFinal   RoundType = "final"
)

// Valid reports whether r is a known round
func (r RoundType) Valid() bool {
	return r == RoundInterim || r == RoundFinal
}

func (r RoundType) String() string {
	return string(r)
}

// ParseRoundType converts a path or query value into a RoundType
func ParseRoundType(s string) (RoundType, bool) {
	r := RoundType(s)
	return r, r.Valid()
}

// Scan implements the sql.Scanner interface for database deserialization
func (r *RoundType) Scan(value any) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into RoundType", value)
	}

	round, ok := ParseRoundType(str)
	if !ok {
		return fmt.Errorf("invalid round_type value: %s", str)
	}
	*r = round
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (r RoundType) Value() (driver.Value, error) {
	return string(r), nil
}
