package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/logger"
)

// PostgresParticipantRepository implements ParticipantRepository using GORM
type PostgresParticipantRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresParticipantRepository creates a new PostgreSQL participant repository
func NewPostgresParticipantRepository(db *gorm.DB) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{
		db:  db,
		log: logger.Repository("participant"),
	}
}

// Create stores a participant under the next free number of its party. The
// party row is locked so concurrent registrations cannot take the same number.
func (r *PostgresParticipantRepository) Create(ctx context.Context, p *participant.Participant) error {
	r.log.Debug("Creating participant", "party_id", p.PartyID, "name", p.Name, "gender", p.Gender)

	if err := p.Validate(); err != nil {
		r.log.Error("Participant validation failed", "error", err)
		return fmt.Errorf("participant validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner party.Party
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&owner, "id = ?", p.PartyID).Error; err != nil {
			return translate(err)
		}

		var last int
		if err := tx.Model(&participant.Participant{}).
			Where("party_id = ?", p.PartyID).
			Select("COALESCE(MAX(number), 0)").
			Scan(&last).Error; err != nil {
			return fmt.Errorf("failed to compute participant number: %w", err)
		}

		p.Number = last + 1
		return translate(tx.Create(p).Error)
	})
	if err != nil {
		r.log.Error("Failed to create participant", "party_id", p.PartyID, "error", err)
		return fmt.Errorf("failed to create participant: %w", err)
	}

	r.log.Info("Participant created successfully", "id", p.ID, "party_id", p.PartyID, "number", p.Number)
	return nil
}

func (r *PostgresParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*participant.Participant, error) {
	r.log.Debug("retrieving participant by ID", "participant_id", id)

	var p participant.Participant
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		err = translate(err)
		if err == ErrNotFound {
			r.log.Debug("Participant not found", "id", id)
			return nil, err
		}
		r.log.Error("Failed to get participant by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get participant by ID: %w", err)
	}

	return &p, nil
}

func (r *PostgresParticipantRepository) GetByAccessCode(ctx context.Context, partyID uuid.UUID, code string) (*participant.Participant, error) {
	r.log.Debug("retrieving participant by access code", "party_id", partyID)

	var p participant.Participant
	if err := r.db.WithContext(ctx).Where("party_id = ? AND access_code = ?", partyID, code).First(&p).Error; err != nil {
		err = translate(err)
		if err == ErrNotFound {
			r.log.Debug("No participant for access code", "party_id", partyID)
			return nil, err
		}
		r.log.Error("Failed to get participant by access code", "party_id", partyID, "error", err)
		return nil, fmt.Errorf("failed to get participant by access code: %w", err)
	}

	return &p, nil
}

func (r *PostgresParticipantRepository) ListByParty(ctx context.Context, partyID uuid.UUID, filter ParticipantFilter) ([]*participant.Participant, error) {
	r.log.Debug("retrieving participants by party", "party_id", partyID, "gender", filter.Gender)

	query := r.db.WithContext(ctx).Where("party_id = ?", partyID)
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}

	var participants []*participant.Participant
	if err := query.Order("number ASC").Find(&participants).Error; err != nil {
		r.log.Error("Failed to list participants", "party_id", partyID, "error", err)
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	r.log.Debug("Retrieved participants", "party_id", partyID, "count", len(participants))
	return participants, nil
}

// Delete removes a participant; votes for and from them go with it through the foreign keys
func (r *PostgresParticipantRepository) Delete(ctx context.Context, partyID, id uuid.UUID) error {
	r.log.Debug("Deleting participant", "party_id", partyID, "participant_id", id)

	result := r.db.WithContext(ctx).Where("party_id = ? AND id = ?", partyID, id).Delete(&participant.Participant{})
	if result.Error != nil {
		r.log.Error("Failed to delete participant", "participant_id", id, "error", result.Error)
		return fmt.Errorf("failed to delete participant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Debug("Participant not found for deletion", "participant_id", id)
		return ErrNotFound
	}

	r.log.Info("Participant deleted", "party_id", partyID, "participant_id", id)
	return nil
}
