package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/logger"
)

// PostgresSettingsRepository implements SettingsRepository using GORM
type PostgresSettingsRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresSettingsRepository creates a new PostgreSQL settings repository
func NewPostgresSettingsRepository(db *gorm.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{
		db:  db,
		log: logger.Repository("party_settings"),
	}
}

func (r *PostgresSettingsRepository) GetByParty(ctx context.Context, partyID uuid.UUID) (*party.Settings, error) {
	r.log.Debug("retrieving settings by party", "party_id", partyID)

	var s party.Settings
	if err := r.db.WithContext(ctx).Where("party_id = ?", partyID).First(&s).Error; err != nil {
		err = translate(err)
		if err == ErrNotFound {
			r.log.Debug("Settings not found", "party_id", partyID)
			return nil, err
		}
		r.log.Error("Failed to get settings", "party_id", partyID, "error", err)
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &s, nil
}

// Upsert creates the party settings or overwrites every configurable column
func (r *PostgresSettingsRepository) Upsert(ctx context.Context, s *party.Settings) error {
	r.log.Debug("Upserting settings", "party_id", s.PartyID)

	if err := s.Validate(); err != nil {
		r.log.Error("Settings validation failed", "party_id", s.PartyID, "error", err)
		return fmt.Errorf("settings validation failed: %w", err)
	}

	s.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "party_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"seating_layout", "matching_rule", "gender_rule", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		r.log.Error("Failed to upsert settings", "party_id", s.PartyID, "error", err)
		return fmt.Errorf("failed to upsert settings: %w", translate(err))
	}

	r.log.Info("Settings saved", "party_id", s.PartyID)
	return nil
}
