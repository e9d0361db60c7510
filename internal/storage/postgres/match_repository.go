package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/konkatsu-api/internal/domain/matching"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/logger"
)

// PostgresMatchRepository implements MatchRepository using GORM
type PostgresMatchRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresMatchRepository creates a new PostgreSQL match repository
func NewPostgresMatchRepository(db *gorm.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{
		db:  db,
		log: logger.Repository("match"),
	}
}

// ReplaceRound deletes the stored batch of the round and inserts records in its place
func (r *PostgresMatchRepository) ReplaceRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType, records []*matching.Record) error {
	r.log.Debug("Replacing match batch", "party_id", partyID, "round", round, "records", len(records))

	for _, rec := range records {
		if rec.PartyID != partyID || rec.RoundType != round {
			return fmt.Errorf("match record %s belongs to another party or round", rec.ID)
		}
		if err := rec.Validate(); err != nil {
			r.log.Error("Match record validation failed", "error", err)
			return fmt.Errorf("match record validation failed: %w", err)
		}
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("party_id = ? AND round_type = ?", partyID, round).Delete(&matching.Record{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete previous matches: %w", result.Error)
		}
		deleted = result.RowsAffected

		if len(records) == 0 {
			return nil
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to insert matches: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to replace matches", "party_id", partyID, "round", round, "error", err)
		return err
	}

	r.log.Info("Matches stored", "party_id", partyID, "round", round, "replaced", deleted, "inserted", len(records))
	return nil
}

func (r *PostgresMatchRepository) ListByRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) ([]*matching.Record, error) {
	r.log.Debug("retrieving matches by round", "party_id", partyID, "round", round)

	var records []*matching.Record
	if err := r.db.WithContext(ctx).
		Where("party_id = ? AND round_type = ?", partyID, round).
		Order("position ASC").
		Find(&records).Error; err != nil {
		r.log.Error("Failed to list matches", "party_id", partyID, "round", round, "error", err)
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return records, nil
}
