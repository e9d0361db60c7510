package storage

import (
	"fmt"
	"slices"

	"github.com/gravadigital/konkatsu-api/internal/config"
	"github.com/gravadigital/konkatsu-api/internal/storage/memory"
	"github.com/gravadigital/konkatsu-api/internal/storage/postgres"
)

// StorageType represents the type of storage backend
type StorageType string

const (
	// StorageTypePostgres represents PostgreSQL storage
	StorageTypePostgres StorageType = "postgres"
	// StorageTypeMemory keeps everything in process; data is lost on restart
	StorageTypeMemory StorageType = "memory"
)

// Factory creates the repository container for the configured backend
type Factory struct {
	storageType StorageType
	open        map[StorageType]func(*config.Config) (postgres.RepositoryContainer, error)
}

// NewFactory creates a new storage factory
func NewFactory(storageType StorageType) *Factory {
	return &Factory{
		storageType: storageType,
		open: map[StorageType]func(*config.Config) (postgres.RepositoryContainer, error){
			StorageTypePostgres: func(cfg *config.Config) (postgres.RepositoryContainer, error) {
				return postgres.NewContainer(cfg)
			},
			StorageTypeMemory: func(*config.Config) (postgres.RepositoryContainer, error) {
				return memory.NewStore(), nil
			},
		},
	}
}

// DefaultFactory returns a factory configured with the default storage type
func DefaultFactory() *Factory {
	return NewFactory(StorageTypePostgres)
}

// CreateContainer opens the backend and returns its repositories
func (f *Factory) CreateContainer(cfg *config.Config) (postgres.RepositoryContainer, error) {
	open, ok := f.open[f.storageType]
	if !ok {
		return nil, fmt.Errorf("unsupported storage type: %s", f.storageType)
	}
	return open(cfg)
}

// GetSupportedTypes returns a list of supported storage types
func GetSupportedTypes() []StorageType {
	return []StorageType{StorageTypePostgres, StorageTypeMemory}
}

// ValidateStorageType validates if a storage type is supported
func ValidateStorageType(storageType string) (StorageType, error) {
	st := StorageType(storageType)
	if slices.Contains(GetSupportedTypes(), st) {
		return st, nil
	}
	return "", fmt.Errorf("unsupported storage type: %s. Supported types: %v", storageType, GetSupportedTypes())
}
