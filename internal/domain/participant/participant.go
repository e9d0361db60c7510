package participant

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

// accessCodeAlphabet avoids characters that are easily confused when typed from a badge
const accessCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// AccessCodeLength is the length of a participant access code
const AccessCodeLength = 8

// Participant is a registered attendee of a party
type Participant struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PartyID    uuid.UUID `json:"party_id" gorm:"type:uuid;not null;uniqueIndex:idx_participants_party_number"`
	Number     int       `json:"number" gorm:"not null;uniqueIndex:idx_participants_party_number"` // stable ordinal within the party, 1-based
	Name       string    `json:"name" gorm:"not null"`
	Gender     Gender    `json:"gender" gorm:"type:varchar(16);not null"`
	AccessCode string    `json:"-" gorm:"type:varchar(16);not null;uniqueIndex"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Participant) TableName() string {
	return "participants"
}

// BeforeCreate sets a UUID and an access code before creating the record
func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.AccessCode == "" {
		code, err := NewAccessCode()
		if err != nil {
			return err
		}
		p.AccessCode = code
	}
	return nil
}

// NewParticipant creates a participant for a party. Number is assigned by the repository.
func NewParticipant(partyID uuid.UUID, name string, gender Gender) (*Participant, error) {
	code, err := NewAccessCode()
	if err != nil {
		return nil, err
	}

	return &Participant{
		ID:         uuid.New(),
		PartyID:    partyID,
		Name:       strings.TrimSpace(name),
		Gender:     gender,
		AccessCode: code,
		CreatedAt:  time.Now(),
	}, nil
}

// NewAccessCode generates the short code printed on a participant's QR badge
func NewAccessCode() (string, error) {
	code, err := gonanoid.Generate(accessCodeAlphabet, AccessCodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}
	return code, nil
}

// Validate checks if the participant data is valid
func (p *Participant) Validate() error {
	if p.PartyID == uuid.Nil {
		return fmt.Errorf("party_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.Gender == "" {
		return fmt.Errorf("gender is required")
	}
	return nil
}

// IsEligible reports whether the participant takes part in opposite-gender matching
func (p *Participant) IsEligible() bool {
	return p.Gender.Valid()
}

// Gender of a participant. Only male and female are matched; other values are kept as given.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is part of the binary matching model
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Opposite returns the other binary gender, or "" for genders outside the model
func (g Gender) Opposite() Gender {
	switch g {
	case GenderMale:
		return GenderFemale
	case GenderFemale:
		return GenderMale
	default:
		return ""
	}
}

func (g Gender) String() string {
	return string(g)
}

// ParseGender normalizes user input such as "Male" or " F "
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return Gender(strings.ToLower(strings.TrimSpace(s)))
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (g *Gender) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*g = ""
	case string:
		*g = Gender(v)
	case []byte:
		*g = Gender(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Gender", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (g Gender) Value() (driver.Value, error) {
	return string(g), nil
}

// Index maps participant IDs to participants, preserving the caller's slice for ordering
type Index map[uuid.UUID]*Participant

// NewIndex builds an Index over participants
func NewIndex(participants []*Participant) Index {
	idx := make(Index, len(participants))
	for _, p := range participants {
		if p != nil {
			idx[p.ID] = p
		}
	}
	return idx
}

// Has reports whether id belongs to a known participant
func (idx Index) Has(id uuid.UUID) bool {
	_, ok := idx[id]
	return ok
}
