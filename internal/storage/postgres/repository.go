package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/matching"
	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/seating"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a unique constraint
	ErrConflict = errors.New("record already exists")
)

// PaginationParams selects a page of a listing; zero values fall back to defaults
type PaginationParams struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps the params into a valid page and returns the row offset
func (p *PaginationParams) Normalize() int {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return (p.Page - 1) * p.PageSize
}

// PartyRepository define los métodos para interactuar con las fiestas en la DB.
type PartyRepository interface {
	Create(ctx context.Context, p *party.Party) error
	GetByID(ctx context.Context, id uuid.UUID) (*party.Party, error)
	GetBySlug(ctx context.Context, slug string) (*party.Party, error)
	List(ctx context.Context, params PaginationParams) ([]*party.Party, int64, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage party.Stage) error
}

// SettingsRepository stores one settings row per party
type SettingsRepository interface {
	GetByParty(ctx context.Context, partyID uuid.UUID) (*party.Settings, error)
	Upsert(ctx context.Context, settings *party.Settings) error
}

// ParticipantFilter narrows a participant listing; an empty Gender means all
type ParticipantFilter struct {
	Gender participant.Gender
}

// ParticipantRepository define los métodos para interactuar con los participantes.
// Listings are ordered by participant number.
type ParticipantRepository interface {
	Create(ctx context.Context, p *participant.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*participant.Participant, error)
	GetByAccessCode(ctx context.Context, partyID uuid.UUID, code string) (*participant.Participant, error)
	ListByParty(ctx context.Context, partyID uuid.UUID, filter ParticipantFilter) ([]*participant.Participant, error)
	Delete(ctx context.Context, partyID, id uuid.UUID) error
}

// VoteRepository define los métodos para interactuar con los votos.
// Listings are in the order the votes were cast.
type VoteRepository interface {
	ReplaceBallot(ctx context.Context, partyID, voterID uuid.UUID, round vote.RoundType, votes []*vote.Vote) error
	ListByRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) ([]*vote.Vote, error)
	ListByVoter(ctx context.Context, partyID, voterID uuid.UUID, round vote.RoundType) ([]*vote.Vote, error)
}

// MatchRepository persists match batches; a batch replaces the previous one for the same round
type MatchRepository interface {
	ReplaceRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType, records []*matching.Record) error
	ListByRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) ([]*matching.Record, error)
}

// SeatingRepository keeps the current chart of each party round
type SeatingRepository interface {
	Upsert(ctx context.Context, chart *seating.Chart) error
	GetByRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) (*seating.Chart, error)
}

// Repositories groups every repository bound to the same connection or transaction
type Repositories interface {
	Parties() PartyRepository
	Settings() SettingsRepository
	Participants() ParticipantRepository
	Votes() VoteRepository
	Matches() MatchRepository
	Seating() SeatingRepository
}

// Store is what the services depend on: the repositories plus a way to run
// several writes atomically
type Store interface {
	Repositories
	WithTransaction(ctx context.Context, fn func(tx Repositories) error) error
}

// RepositoryContainer is a Store that owns its database connection
type RepositoryContainer interface {
	Store
	Health() error
	Close() error
}
