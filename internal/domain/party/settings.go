package party

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Settings holds the per-party configuration read by matching and seating
type Settings struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PartyID       uuid.UUID     `json:"party_id" gorm:"type:uuid;not null;uniqueIndex"`
	SeatingLayout SeatingLayout `json:"seating_layout" gorm:"type:jsonb;serializer:json;not null"`
	MatchingRule  MatchingRule  `json:"matching_rule" gorm:"type:jsonb;serializer:json;not null"`
	GenderRule    GenderRule    `json:"gender_rule" gorm:"type:jsonb;serializer:json;not null"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Settings) TableName() string {
	return "party_settings"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SeatingLayout describes the tables of a venue. When Tables is set it
// overrides the uniform TableCount x SeatsPerTable shape.
type SeatingLayout struct {
	TableCount    int         `json:"table_count"`
	SeatsPerTable int         `json:"seats_per_table"`
	Tables        []TableSpec `json:"tables,omitempty"`
}

// TableSpec is an explicitly configured table
type TableSpec struct {
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity"`
}

// MatchingRule steers the matcher
type MatchingRule struct {
	PrioritizeMutual   bool `json:"prioritize_mutual"`
	ConsiderRanking    bool `json:"consider_ranking"`
	BalanceGenderRatio bool `json:"balance_gender_ratio"`
}

// GenderRule steers the seating allocator
type GenderRule struct {
	RequireMixedGender bool `json:"require_mixed_gender"`
	AlternateSeating   bool `json:"alternate_seating"`
}

// Default values for a freshly created party
const (
	DefaultTableCount    = 1
	DefaultSeatsPerTable = 8
)

// DefaultMatchingRule is used when a party has no stored settings
func DefaultMatchingRule() MatchingRule {
	return MatchingRule{
		PrioritizeMutual:   true,
		ConsiderRanking:    true,
		BalanceGenderRatio: true,
	}
}

// DefaultGenderRule is used when a party has no stored settings
func DefaultGenderRule() GenderRule {
	return GenderRule{
		RequireMixedGender: true,
		AlternateSeating:   true,
	}
}

// NewSettings returns the default settings for a party
func NewSettings(partyID uuid.UUID) *Settings {
	return &Settings{
		ID:      uuid.New(),
		PartyID: partyID,
		SeatingLayout: SeatingLayout{
			TableCount:    DefaultTableCount,
			SeatsPerTable: DefaultSeatsPerTable,
		},
		MatchingRule: DefaultMatchingRule(),
		GenderRule:   DefaultGenderRule(),
		CreatedAt:    time.Now(),
	}
}

// Validate rejects configuration the algorithms cannot run with
func (s *Settings) Validate() error {
	if s.PartyID == uuid.Nil {
		return fmt.Errorf("party_id is required")
	}
	return s.SeatingLayout.Validate()
}

// Validate checks that the layout describes at least one seat per table
func (l SeatingLayout) Validate() error {
	if len(l.Tables) > 0 {
		for i, t := range l.Tables {
			if t.Capacity <= 0 {
				return fmt.Errorf("table %d capacity must be positive", i+1)
			}
		}
		return nil
	}
	if l.TableCount <= 0 {
		return fmt.Errorf("table_count must be positive")
	}
	if l.SeatsPerTable <= 0 {
		return fmt.Errorf("seats_per_table must be positive")
	}
	return nil
}

// TableSpecs expands the layout into one spec per table, in table order.
// Unnamed tables are named by their 1-based ordinal.
func (l SeatingLayout) TableSpecs() []TableSpec {
	var specs []TableSpec
	if len(l.Tables) > 0 {
		specs = make([]TableSpec, len(l.Tables))
		copy(specs, l.Tables)
	} else {
		specs = make([]TableSpec, l.TableCount)
		for i := range specs {
			specs[i] = TableSpec{Capacity: l.SeatsPerTable}
		}
	}

	for i := range specs {
		if specs[i].Name == "" {
			specs[i].Name = strconv.Itoa(i + 1)
		}
	}
	return specs
}

// Capacity is the total number of seats
func (l SeatingLayout) Capacity() int {
	total := 0
	for _, t := range l.TableSpecs() {
		total += t.Capacity
	}
	return total
}

// MaxSeatsPerTable is the largest table capacity
func (l SeatingLayout) MaxSeatsPerTable() int {
	largest := 0
	for _, t := range l.TableSpecs() {
		largest = max(largest, t.Capacity)
	}
	return largest
}
