package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/export"
	"github.com/gravadigital/konkatsu-api/internal/lock"
	"github.com/gravadigital/konkatsu-api/internal/publish"
	"github.com/gravadigital/konkatsu-api/internal/storage/postgres"
)

var (
	ErrNotFound          = postgres.ErrNotFound
	ErrConflict          = postgres.ErrConflict
	ErrBusy              = lock.ErrBusy
	ErrValidation        = errors.New("validation failed")
	ErrInvalidStage      = errors.New("operation not allowed in the current party stage")
	ErrNoVotes           = errors.New("no votes cast for this round")
	ErrInsufficientSeats = errors.New("not enough seats for all participants")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// Services agrupa los servicios que usan los handlers
type Services struct {
	Parties    *PartyService
	Voting     *VotingService
	Generation *GenerationService
}

// New crea todos los servicios sobre el mismo store
func New(store postgres.Store, locker lock.PartyLocker, publisher publish.Publisher) *Services {
	return &Services{
		Parties:    NewPartyService(store),
		Voting:     NewVotingService(store),
		Generation: NewGenerationService(store, locker, publisher, export.NewExporter()),
	}
}

// loadSettings returns the stored settings or the defaults when none were saved yet.
func loadSettings(ctx context.Context, repo postgres.SettingsRepository, partyID uuid.UUID) (*party.Settings, error) {
	s, err := repo.GetByParty(ctx, partyID)
	if errors.Is(err, postgres.ErrNotFound) {
		return party.NewSettings(partyID), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
