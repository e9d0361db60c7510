package party

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

// Party is one konkatsu event; every participant, vote and result belongs to exactly one party
type Party struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"not null;uniqueIndex"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	EventDate   time.Time `json:"event_date" gorm:"not null"`
	Stage       Stage     `json:"stage" gorm:"type:party_stage;not null;default:'creation'"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Party) TableName() string {
	return "parties"
}

// BeforeCreate sets a UUID before creating the record
func (p *Party) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewParty creates a party in the creation stage
func NewParty(name, description, venue string, eventDate time.Time) *Party {
	id := uuid.New()
	return &Party{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Slug:        MakeSlug(name, id),
		Description: description,
		Venue:       venue,
		EventDate:   eventDate,
		Stage:       StageCreation,
		CreatedAt:   time.Now(),
	}
}

// MakeSlug derives a URL-safe party slug. A fragment of the ID keeps
// same-named parties apart.
func MakeSlug(name string, id uuid.UUID) string {
	base := slug.Make(name)
	suffix := strings.ReplaceAll(id.String(), "-", "")[:6]
	if base == "" {
		return "party-" + suffix
	}
	return base + "-" + suffix
}

// CanTransitionTo checks if the party can move to a new stage
func (p *Party) CanTransitionTo(newStage Stage) bool {
	transitions := map[Stage][]Stage{
		StageCreation:       {StageRegistration},
		StageRegistration:   {StageInterimVoting, StageFinalVoting},
		StageInterimVoting:  {StageInterimResults},
		StageInterimResults: {StageFinalVoting},
		StageFinalVoting:    {StageFinalResults},
		StageFinalResults:   {}, // terminal
	}

	allowed, exists := transitions[p.Stage]
	if !exists {
		return false
	}

	return slices.Contains(allowed, newStage)
}

// UpdateStage updates the stage if the transition is valid
func (p *Party) UpdateStage(newStage Stage) error {
	if !p.CanTransitionTo(newStage) {
		return fmt.Errorf("cannot transition from %s to %s", p.Stage, newStage)
	}
	p.Stage = newStage
	return nil
}

// AcceptsVotes reports whether ballots for round may be submitted in the current stage
func (p *Party) AcceptsVotes(round vote.RoundType) bool {
	switch round {
	case vote.RoundInterim:
		return p.Stage == StageInterimVoting
	case vote.RoundFinal:
		return p.Stage == StageFinalVoting
	default:
		return false
	}
}

// AcceptsGeneration reports whether results for round can be (re)generated:
// from the moment its voting opens until the next round starts
func (p *Party) AcceptsGeneration(round vote.RoundType) bool {
	switch round {
	case vote.RoundInterim:
		return p.Stage == StageInterimVoting || p.Stage == StageInterimResults
	case vote.RoundFinal:
		return p.Stage == StageFinalVoting || p.Stage == StageFinalResults
	default:
		return false
	}
}

// AcceptsRegistration reports whether participants may still be added or removed
func (p *Party) AcceptsRegistration() bool {
	return p.Stage == StageCreation || p.Stage == StageRegistration
}

// Validate checks if the party data is valid
func (p *Party) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	if p.EventDate.IsZero() {
		return fmt.Errorf("event_date is required")
	}
	return nil
}

// Stage represents the current stage of a party
type Stage byte

const (
	StageCreation Stage = iota
	StageRegistration
	StageInterimVoting
	StageInterimResults
	StageFinalVoting
	StageFinalResults
)

func (s Stage) String() string {
	switch s {
	case StageCreation:
		return "creation"
	case StageRegistration:
		return "registration"
	case StageInterimVoting:
		return "interim_voting"
	case StageInterimResults:
		return "interim_results"
	case StageFinalVoting:
		return "final_voting"
	case StageFinalResults:
		return "final_results"
	default:
		return "unknown"
	}
}

// AllStages lists stages in lifecycle order
func AllStages() []Stage {
	return []Stage{
		StageCreation,
		StageRegistration,
		StageInterimVoting,
		StageInterimResults,
		StageFinalVoting,
		StageFinalResults,
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s Stage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Stage) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	stage, valid := StageFromString(str)
	if !valid {
		return fmt.Errorf("invalid stage: %s", str)
	}
	*s = stage
	return nil
}

// StageFromString converts a string to a Stage
func StageFromString(s string) (Stage, bool) {
	for _, stage := range AllStages() {
		if stage.String() == s {
			return stage, true
		}
	}
	return StageCreation, false
}

// Scan implements the sql.Scanner interface for database deserialization
func (s *Stage) Scan(value interface{}) error {
	if value == nil {
		*s = StageCreation
		return nil
	}

	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Stage", value)
	}

	stage, valid := StageFromString(str)
	if !valid {
		return fmt.Errorf("invalid stage value: %s", str)
	}
	*s = stage
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (s Stage) Value() (driver.Value, error) {
	return s.String(), nil
}
