package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/konkatsu-api/internal/domain/seating"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/logger"
)

// PostgresSeatingRepository implements SeatingRepository using GORM
type PostgresSeatingRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresSeatingRepository creates a new PostgreSQL seating repository
func NewPostgresSeatingRepository(db *gorm.DB) *PostgresSeatingRepository {
	return &PostgresSeatingRepository{
		db:  db,
		log: logger.Repository("seating"),
	}
}

// Upsert writes the chart as the current one for its party and round
func (r *PostgresSeatingRepository) Upsert(ctx context.Context, chart *seating.Chart) error {
	r.log.Debug("Upserting seating chart", "party_id", chart.PartyID, "round", chart.RoundType)

	chart.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "party_id"}, {Name: "round_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"tables", "unassigned", "stats", "generated_at", "updated_at"}),
	}).Create(chart).Error
	if err != nil {
		r.log.Error("Failed to upsert seating chart", "party_id", chart.PartyID, "error", err)
		return fmt.Errorf("failed to upsert seating chart: %w", translate(err))
	}

	r.log.Info("Seating chart stored",
		"party_id", chart.PartyID,
		"round", chart.RoundType,
		"assigned", chart.Stats.Assigned,
		"unassigned", chart.Stats.Unassigned)
	return nil
}

func (r *PostgresSeatingRepository) GetByRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) (*seating.Chart, error) {
	r.log.Debug("retrieving seating chart", "party_id", partyID, "round", round)

	var chart seating.Chart
	if err := r.db.WithContext(ctx).Where("party_id = ? AND round_type = ?", partyID, round).First(&chart).Error; err != nil {
		err = translate(err)
		if err == ErrNotFound {
			r.log.Debug("Seating chart not found", "party_id", partyID, "round", round)
			return nil, err
		}
		r.log.Error("Failed to get seating chart", "party_id", partyID, "error", err)
		return nil, fmt.Errorf("failed to get seating chart: %w", err)
	}

	return &chart, nil
}
