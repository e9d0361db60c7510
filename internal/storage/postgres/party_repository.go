package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/logger"
)

// PostgresPartyRepository implements PartyRepository using GORM
type PostgresPartyRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresPartyRepository creates a new PostgreSQL party repository
func NewPostgresPartyRepository(db *gorm.DB) *PostgresPartyRepository {
	return &PostgresPartyRepository{
		db:  db,
		log: logger.Repository("party"),
	}
}

func (r *PostgresPartyRepository) Create(ctx context.Context, p *party.Party) error {
	r.log.Debug("Creating party", "name", p.Name, "slug", p.Slug)

	if err := p.Validate(); err != nil {
		r.log.Error("Party validation failed", "error", err)
		return fmt.Errorf("party validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		r.log.Error("Failed to create party", "error", err, "slug", p.Slug)
		return fmt.Errorf("failed to create party: %w", translate(err))
	}

	r.log.Info("Party created successfully", "id", p.ID, "slug", p.Slug)
	return nil
}

func (r *PostgresPartyRepository) GetByID(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	r.log.Debug("retrieving party by ID", "party_id", id)

	var p party.Party
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		err = translate(err)
		if err == ErrNotFound {
			r.log.Debug("Party not found", "id", id)
			return nil, err
		}
		r.log.Error("Failed to get party by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get party by ID: %w", err)
	}

	return &p, nil
}

func (r *PostgresPartyRepository) GetBySlug(ctx context.Context, slug string) (*party.Party, error) {
	r.log.Debug("retrieving party by slug", "slug", slug)

	var p party.Party
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		err = translate(err)
		if err == ErrNotFound {
			r.log.Debug("Party not found", "slug", slug)
			return nil, err
		}
		r.log.Error("Failed to get party by slug", "slug", slug, "error", err)
		return nil, fmt.Errorf("failed to get party by slug: %w", err)
	}

	return &p, nil
}

func (r *PostgresPartyRepository) List(ctx context.Context, params PaginationParams) ([]*party.Party, int64, error) {
	offset := params.Normalize()
	r.log.Debug("retrieving parties with pagination", "page", params.Page, "page_size", params.PageSize)

	var total int64
	if err := r.db.WithContext(ctx).Model(&party.Party{}).Count(&total).Error; err != nil {
		r.log.Error("failed to count parties", "error", err)
		return nil, 0, fmt.Errorf("failed to count parties: %w", err)
	}

	var parties []*party.Party
	if err := r.db.WithContext(ctx).
		Order("event_date DESC").
		Order("created_at DESC").
		Offset(offset).Limit(params.PageSize).
		Find(&parties).Error; err != nil {
		r.log.Error("failed to list parties", "error", err)
		return nil, 0, fmt.Errorf("failed to list parties: %w", err)
	}

	r.log.Debug("Retrieved parties", "count", len(parties), "total", total)
	return parties, total, nil
}

// UpdateStage locks the party row and applies the stage transition rules before writing
func (r *PostgresPartyRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage party.Stage) error {
	r.log.Debug("Updating party stage", "party_id", id, "stage", stage)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p party.Party
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if err := p.UpdateStage(stage); err != nil {
			return err
		}
		return tx.Model(&p).Update("stage", p.Stage).Error
	})
	if err != nil {
		r.log.Error("Failed to update party stage", "party_id", id, "stage", stage, "error", err)
		return fmt.Errorf("failed to update party stage: %w", err)
	}

	r.log.Info("Party stage updated", "party_id", id, "stage", stage)
	return nil
}
