package seating

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

// Chart is the current seating of a party round. There is at most one chart
// per party and round; regenerating overwrites it.
type Chart struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PartyID     uuid.UUID      `json:"party_id" gorm:"type:uuid;not null;uniqueIndex:idx_seating_party_round"`
	RoundType   vote.RoundType `json:"round_type" gorm:"type:round_type;not null;uniqueIndex:idx_seating_party_round"`
	Tables      []Table        `json:"tables" gorm:"type:jsonb;serializer:json;not null"`
	Unassigned  pq.StringArray `json:"unassigned_participants" gorm:"type:text[]"`
	Stats       Stats          `json:"stats" gorm:"type:jsonb;serializer:json;not null"`
	GeneratedAt time.Time      `json:"generated_at" gorm:"not null"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Chart) TableName() string {
	return "seating_charts"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (c *Chart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NewChart wraps an allocation result for storage
func NewChart(partyID uuid.UUID, round vote.RoundType, res *Result) *Chart {
	unassigned := make(pq.StringArray, len(res.Unassigned))
	for i, id := range res.Unassigned {
		unassigned[i] = id.String()
	}

	return &Chart{
		ID:          uuid.New(),
		PartyID:     partyID,
		RoundType:   round,
		Tables:      res.Tables,
		Unassigned:  unassigned,
		Stats:       res.Stats,
		GeneratedAt: time.Now().UTC(),
	}
}

// Result converts the chart back into an allocation result
func (c *Chart) Result() (*Result, error) {
	unassigned := make([]uuid.UUID, len(c.Unassigned))
	for i, raw := range c.Unassigned {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid unassigned participant id %q: %w", raw, err)
		}
		unassigned[i] = id
	}
	return &Result{Tables: c.Tables, Unassigned: unassigned, Stats: c.Stats}, nil
}
