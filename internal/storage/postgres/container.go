package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/konkatsu-api/internal/config"
	"github.com/gravadigital/konkatsu-api/internal/logger"
)

// tables checked by Health, one per repository
var healthTables = []string{"parties", "party_settings", "participants", "votes", "matches", "seating_charts"}

// repositorySet binds every repository to one *gorm.DB, either the pool or a transaction
type repositorySet struct {
	partyRepo       PartyRepository
	settingsRepo    SettingsRepository
	participantRepo ParticipantRepository
	voteRepo        VoteRepository
	matchRepo       MatchRepository
	seatingRepo     SeatingRepository
}

func newRepositorySet(db *gorm.DB) repositorySet {
	return repositorySet{
		partyRepo:       NewPostgresPartyRepository(db),
		settingsRepo:    NewPostgresSettingsRepository(db),
		participantRepo: NewPostgresParticipantRepository(db),
		voteRepo:        NewPostgresVoteRepository(db),
		matchRepo:       NewPostgresMatchRepository(db),
		seatingRepo:     NewPostgresSeatingRepository(db),
	}
}

// Parties returns the party repository
func (s repositorySet) Parties() PartyRepository { return s.partyRepo }

// Settings returns the settings repository
func (s repositorySet) Settings() SettingsRepository { return s.settingsRepo }

// Participants returns the participant repository
func (s repositorySet) Participants() ParticipantRepository { return s.participantRepo }

// Votes returns the vote repository
func (s repositorySet) Votes() VoteRepository { return s.voteRepo }

// Matches returns the match repository
func (s repositorySet) Matches() MatchRepository { return s.matchRepo }

// Seating returns the seating repository
func (s repositorySet) Seating() SeatingRepository { return s.seatingRepo }

// Container implements RepositoryContainer interface
type Container struct {
	repositorySet
	db  *gorm.DB
	log *log.Logger
}

var _ RepositoryContainer = (*Container)(nil)

// NewContainer connects, migrates and returns a container with all repositories initialized
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")
	log.Info("Initializing PostgreSQL repository container...")

	db, err := Connect(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		log.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	container := NewContainerWithDB(db)
	if err := container.Health(); err != nil {
		log.Error("Container health check failed", "error", err)
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("PostgreSQL repository container initialized successfully")
	return container, nil
}

// NewContainerWithDB creates a container with an existing database connection
func NewContainerWithDB(db *gorm.DB) *Container {
	return &Container{
		repositorySet: newRepositorySet(db),
		db:            db,
		log:           logger.Repository("postgres_container"),
	}
}

// WithTransaction runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (c *Container) WithTransaction(ctx context.Context, fn func(tx Repositories) error) error {
	c.log.Debug("Database transaction started")

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewTransactionContainer(tx))
	})
	if err != nil {
		c.log.Debug("Database transaction rolled back", "error", err)
		return err
	}

	c.log.Debug("Database transaction committed successfully")
	return nil
}

// Health performs a health check on the database connection and every repository table
func (c *Container) Health() error {
	c.log.Debug("Performing container health check...")

	if err := HealthCheck(c.db); err != nil {
		c.log.Error("Database health check failed", "error", err)
		return fmt.Errorf("database health check failed: %w", err)
	}

	metrics := GetDatabaseMetrics(c.db)
	c.log.Debug("Database connection metrics",
		"open_connections", metrics.OpenConnections,
		"in_use_connections", metrics.InUseConnections,
		"idle_connections", metrics.IdleConnections)

	for _, table := range healthTables {
		var count int64
		if err := c.db.Table(table).Count(&count).Error; err != nil {
			c.log.Error("Repository health check failed", "table", table, "error", err)
			return fmt.Errorf("repository %s health check failed: %w", table, err)
		}
		c.log.Debug("Repository health check passed", "table", table)
	}

	c.log.Debug("Container health check completed successfully")
	return nil
}

// Close gracefully shuts down the container and closes database connections
func (c *Container) Close() error {
	c.log.Info("Closing PostgreSQL repository container...")

	if c.db == nil {
		c.log.Warn("Database connection is nil, nothing to close")
		return nil
	}

	if err := CloseDB(c.db); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	c.repositorySet = repositorySet{}
	c.db = nil

	c.log.Info("PostgreSQL repository container closed successfully")
	return nil
}

// CloseWithTimeout closes the container with a timeout
func (c *Container) CloseWithTimeout(timeout time.Duration) error {
	done := make(chan error, 1)

	go func() {
		done <- c.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		c.log.Error("Container close operation timed out", "timeout", timeout)
		return fmt.Errorf("container close operation timed out after %v", timeout)
	}
}

// GetDB returns the underlying database connection (for advanced usage)
func (c *Container) GetDB() *gorm.DB {
	return c.db
}

// TransactionContainer wraps repositories in a database transaction
type TransactionContainer struct {
	repositorySet
	tx *gorm.DB
}

// NewTransactionContainer creates a new transaction container
func NewTransactionContainer(tx *gorm.DB) *TransactionContainer {
	return &TransactionContainer{
		repositorySet: newRepositorySet(tx),
		tx:            tx,
	}
}
