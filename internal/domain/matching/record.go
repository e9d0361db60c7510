package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

// Record is a persisted pair. Records of one party and round are replaced as a batch.
type Record struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PartyID   uuid.UUID      `json:"party_id" gorm:"type:uuid;not null;index:idx_matches_party_round"`
	RoundType vote.RoundType `json:"round_type" gorm:"type:round_type;not null;index:idx_matches_party_round"`
	MaleID    uuid.UUID      `json:"male_id" gorm:"type:uuid;not null"`
	FemaleID  uuid.UUID      `json:"female_id" gorm:"type:uuid;not null"`
	Kind      Kind           `json:"kind" gorm:"type:varchar(16);not null"`
	Position  int            `json:"position" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (Record) TableName() string {
	return "matches"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate checks if the record data is valid
func (r *Record) Validate() error {
	if r.PartyID == uuid.Nil {
		return fmt.Errorf("party_id is required")
	}
	if !r.RoundType.Valid() {
		return fmt.Errorf("invalid round_type: %q", r.RoundType)
	}
	if r.MaleID == uuid.Nil || r.FemaleID == uuid.Nil {
		return fmt.Errorf("both participants are required")
	}
	if r.Kind != KindMutual && r.Kind != KindGreedy {
		return fmt.Errorf("invalid kind: %q", r.Kind)
	}
	return nil
}

// Records converts the pairs of a result into records, keeping commit order in Position
func (r *Result) Records(partyID uuid.UUID, round vote.RoundType) []*Record {
	records := make([]*Record, len(r.Pairs))
	for i, pair := range r.Pairs {
		records[i] = &Record{
			ID:        uuid.New(),
			PartyID:   partyID,
			RoundType: round,
			MaleID:    pair.MaleID,
			FemaleID:  pair.FemaleID,
			Kind:      pair.Kind,
			Position:  i + 1,
		}
	}
	return records
}

// PairsFromRecords restores pairs from stored records, which must already be ordered by Position
func PairsFromRecords(records []*Record) []Pair {
	pairs := make([]Pair, len(records))
	for i, rec := range records {
		pairs[i] = Pair{MaleID: rec.MaleID, FemaleID: rec.FemaleID, Kind: rec.Kind}
	}
	return pairs
}
