package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateRequired valida que un campo no esté vacío
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMinLength valida la longitud mínima de un string
func ValidateMinLength(value string, minLength int, fieldName string) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < minLength {
		return fmt.Errorf("%s must be at least %d characters long", fieldName, minLength)
	}
	return nil
}

// ValidateMaxLength valida la longitud máxima de un string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%s must be at most %d characters long", fieldName, maxLength)
	}
	return nil
}

// ParseUUID valida y convierte un identificador recibido en la ruta
func ParseUUID(value, fieldName string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errors.New(fieldName + " must be a valid UUID")
	}
	return id, nil
}

// ValidateEventDate rechaza fechas anteriores a ayer
func ValidateEventDate(date time.Time) error {
	if date.IsZero() {
		return errors.New("event_date is required")
	}
	if date.Before(time.Now().Add(-24 * time.Hour)) {
		return errors.New("event_date cannot be in the past")
	}
	return nil
}

// PartyValidation contiene validaciones específicas para fiestas
type PartyValidation struct{}

func (v PartyValidation) ValidateName(name string) error {
	if err := ValidateRequired(name, "name"); err != nil {
		return err
	}
	if err := ValidateMinLength(name, 3, "name"); err != nil {
		return err
	}
	return ValidateMaxLength(name, 100, "name")
}

func (v PartyValidation) ValidateDescription(description string) error {
	return ValidateMaxLength(description, 1000, "description")
}

func (v PartyValidation) ValidateVenue(venue string) error {
	return ValidateMaxLength(venue, 200, "venue")
}

// ParticipantValidation contiene validaciones para participantes
type ParticipantValidation struct{}

func (v ParticipantValidation) ValidateName(name string) error {
	if err := ValidateRequired(name, "name"); err != nil {
		return err
	}
	return ValidateMaxLength(name, 50, "name")
}

// ValidateGender acepta cualquier valor corto; solo male y female participan del matching
func (v ParticipantValidation) ValidateGender(gender string) error {
	if err := ValidateRequired(gender, "gender"); err != nil {
		return err
	}
	return ValidateMaxLength(gender, 16, "gender")
}
