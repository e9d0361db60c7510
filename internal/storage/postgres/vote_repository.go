package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/logger"
)

// PostgresVoteRepository implements VoteRepository using GORM
type PostgresVoteRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresVoteRepository creates a new PostgreSQL vote repository
func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{
		db:  db,
		log: logger.Repository("vote"),
	}
}

// ReplaceBallot deletes the voter's votes for round and inserts the new ballot in one transaction
func (r *PostgresVoteRepository) ReplaceBallot(ctx context.Context, partyID, voterID uuid.UUID, round vote.RoundType, votes []*vote.Vote) error {
	r.log.Debug("Replacing ballot", "party_id", partyID, "voter_id", voterID, "round", round, "votes", len(votes))

	if err := vote.ValidateBallot(votes); err != nil {
		r.log.Error("Ballot validation failed", "voter_id", voterID, "error", err)
		return fmt.Errorf("ballot validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("party_id = ? AND voter_id = ? AND round_type = ?", partyID, voterID, round).
			Delete(&vote.Vote{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous ballot: %w", err)
		}
		if err := tx.Create(&votes).Error; err != nil {
			return fmt.Errorf("failed to insert ballot: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to replace ballot", "voter_id", voterID, "round", round, "error", err)
		return err
	}

	r.log.Info("Ballot stored", "party_id", partyID, "voter_id", voterID, "round", round, "votes", len(votes))
	return nil
}

// ListByRound returns the votes of a party round in casting order, which the
// matcher and allocator treat as voter priority
func (r *PostgresVoteRepository) ListByRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) ([]*vote.Vote, error) {
	r.log.Debug("retrieving votes by round", "party_id", partyID, "round", round)

	var votes []*vote.Vote
	if err := r.db.WithContext(ctx).
		Where("party_id = ? AND round_type = ?", partyID, round).
		Order("voted_at ASC").
		Order("voter_id ASC").
		Order("rank ASC").
		Order("id ASC").
		Find(&votes).Error; err != nil {
		r.log.Error("Failed to list votes", "party_id", partyID, "round", round, "error", err)
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	r.log.Debug("Retrieved votes", "party_id", partyID, "round", round, "count", len(votes))
	return votes, nil
}

func (r *PostgresVoteRepository) ListByVoter(ctx context.Context, partyID, voterID uuid.UUID, round vote.RoundType) ([]*vote.Vote, error) {
	r.log.Debug("retrieving votes by voter", "party_id", partyID, "voter_id", voterID, "round", round)

	var votes []*vote.Vote
	if err := r.db.WithContext(ctx).
		Where("party_id = ? AND voter_id = ? AND round_type = ?", partyID, voterID, round).
		Order("rank ASC").
		Find(&votes).Error; err != nil {
		r.log.Error("Failed to list voter votes", "voter_id", voterID, "error", err)
		return nil, fmt.Errorf("failed to list voter votes: %w", err)
	}

	return votes, nil
}
