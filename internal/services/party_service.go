package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/storage/postgres"
	"github.com/gravadigital/konkatsu-api/internal/validation"
)

// PartyService maneja la lógica de negocio de fiestas, ajustes y participantes
type PartyService struct {
	store     postgres.Store
	validator validation.PartyValidation
	people    validation.ParticipantValidation
	log       *log.Logger
}

// NewPartyService crea una nueva instancia del servicio de fiestas
func NewPartyService(store postgres.Store) *PartyService {
	return &PartyService{
		store: store,
		log:   logger.Service("party"),
	}
}

// CreatePartyRequest representa una solicitud para crear una fiesta
type CreatePartyRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	EventDate   time.Time `json:"event_date" binding:"required"`
}

// CreateParty crea la fiesta junto con sus ajustes por defecto
func (s *PartyService) CreateParty(ctx context.Context, req CreatePartyRequest) (*party.Party, error) {
	if err := s.validator.ValidateName(req.Name); err != nil {
		return nil, invalid(err)
	}
	if err := s.validator.ValidateDescription(req.Description); err != nil {
		return nil, invalid(err)
	}
	if err := s.validator.ValidateVenue(req.Venue); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidateEventDate(req.EventDate); err != nil {
		return nil, invalid(err)
	}

	p := party.NewParty(req.Name, req.Description, req.Venue, req.EventDate)

	err := s.store.WithTransaction(ctx, func(tx postgres.Repositories) error {
		if err := tx.Parties().Create(ctx, p); err != nil {
			return err
		}
		return tx.Settings().Upsert(ctx, party.NewSettings(p.ID))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Party created", "party_id", p.ID, "slug", p.Slug)
	return p, nil
}

func (s *PartyService) GetParty(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	return s.store.Parties().GetByID(ctx, id)
}

func (s *PartyService) ListParties(ctx context.Context, params postgres.PaginationParams) ([]*party.Party, int64, error) {
	return s.store.Parties().List(ctx, params)
}

// TransitionStage moves the party forward. The repository re-checks the
// transition under a row lock.
func (s *PartyService) TransitionStage(ctx context.Context, id uuid.UUID, stage party.Stage) (*party.Party, error) {
	p, err := s.store.Parties().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanTransitionTo(stage) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStage, p.Stage, stage)
	}

	if err := s.store.Parties().UpdateStage(ctx, id, stage); err != nil {
		return nil, err
	}

	s.log.Info("Party stage changed", "party_id", id, "from", p.Stage, "to", stage)
	p.Stage = stage
	return p, nil
}

// GetSettings returns the stored settings, or the defaults if none were saved.
func (s *PartyService) GetSettings(ctx context.Context, partyID uuid.UUID) (*party.Settings, error) {
	if _, err := s.store.Parties().GetByID(ctx, partyID); err != nil {
		return nil, err
	}
	return loadSettings(ctx, s.store.Settings(), partyID)
}

// UpdateSettingsRequest replaces the whole settings document
type UpdateSettingsRequest struct {
	SeatingLayout party.SeatingLayout `json:"seating_layout"`
	MatchingRule  party.MatchingRule  `json:"matching_rule"`
	GenderRule    party.GenderRule    `json:"gender_rule"`
}

func (s *PartyService) UpdateSettings(ctx context.Context, partyID uuid.UUID, req UpdateSettingsRequest) (*party.Settings, error) {
	if _, err := s.store.Parties().GetByID(ctx, partyID); err != nil {
		return nil, err
	}

	settings := party.NewSettings(partyID)
	settings.SeatingLayout = req.SeatingLayout
	settings.MatchingRule = req.MatchingRule
	settings.GenderRule = req.GenderRule
	if settings.SeatingLayout.Tables == nil {
		settings.SeatingLayout.Tables = []party.TableSpec{}
	}

	if err := settings.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.store.Settings().Upsert(ctx, settings); err != nil {
		return nil, err
	}

	s.log.Info("Party settings updated", "party_id", partyID, "capacity", settings.SeatingLayout.Capacity())
	return settings, nil
}

// RegisterParticipantRequest representa una solicitud de inscripción
type RegisterParticipantRequest struct {
	Name   string `json:"name" binding:"required"`
	Gender string `json:"gender" binding:"required"`
}

// RegisterParticipant inscribe un participante; el número lo asigna el repositorio
func (s *PartyService) RegisterParticipant(ctx context.Context, partyID uuid.UUID, req RegisterParticipantRequest) (*participant.Participant, error) {
	if err := s.people.ValidateName(req.Name); err != nil {
		return nil, invalid(err)
	}
	if err := s.people.ValidateGender(req.Gender); err != nil {
		return nil, invalid(err)
	}

	p, err := s.store.Parties().GetByID(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if !p.AcceptsRegistration() {
		return nil, fmt.Errorf("%w: registration is closed", ErrInvalidStage)
	}

	person, err := participant.NewParticipant(partyID, req.Name, participant.ParseGender(req.Gender))
	if err != nil {
		return nil, err
	}
	if err := s.store.Participants().Create(ctx, person); err != nil {
		return nil, err
	}

	if !person.IsEligible() {
		s.log.Warn("Participant will be excluded from matching", "participant_id", person.ID, "gender", person.Gender)
	}
	return person, nil
}

// ListParticipants optionally filters by gender
func (s *PartyService) ListParticipants(ctx context.Context, partyID uuid.UUID, gender string) ([]*participant.Participant, error) {
	if _, err := s.store.Parties().GetByID(ctx, partyID); err != nil {
		return nil, err
	}

	filter := postgres.ParticipantFilter{}
	if gender != "" {
		filter.Gender = participant.ParseGender(gender)
	}
	return s.store.Participants().ListByParty(ctx, partyID, filter)
}

// GetParticipant returns ErrNotFound for participants of another party.
func (s *PartyService) GetParticipant(ctx context.Context, partyID, id uuid.UUID) (*participant.Participant, error) {
	p, err := s.store.Participants().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.PartyID != partyID {
		return nil, fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *PartyService) RemoveParticipant(ctx context.Context, partyID, id uuid.UUID) error {
	p, err := s.store.Parties().GetByID(ctx, partyID)
	if err != nil {
		return err
	}
	if !p.AcceptsRegistration() {
		return fmt.Errorf("%w: registration is closed", ErrInvalidStage)
	}
	return s.store.Participants().Delete(ctx, partyID, id)
}

// Authenticate resolves the party slug and access code printed on a QR card.
func (s *PartyService) Authenticate(ctx context.Context, slug, code string) (*party.Party, *participant.Participant, error) {
	slug, code = strings.TrimSpace(slug), strings.ToUpper(strings.TrimSpace(code))
	if slug == "" || code == "" {
		return nil, nil, invalid(errors.New("party and access_code are required"))
	}

	p, err := s.store.Parties().GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	person, err := s.store.Participants().GetByAccessCode(ctx, p.ID, code)
	if err != nil {
		return nil, nil, err
	}
	return p, person, nil
}
