package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrationsOrdered(t *testing.T) {
	list := GetMigrations()
	require.NotEmpty(t, list)

	for i, m := range list {
		assert.NotNil(t, m.Up, m.ID)
		assert.NotNil(t, m.Down, m.ID)
		assert.NotEmpty(t, m.Name)
		if i > 0 {
			assert.Less(t, list[i-1].ID, m.ID, "migration IDs must increase")
		}
	}
}

func TestFindMigration(t *testing.T) {
	m, ok := findMigration("002")
	require.True(t, ok)
	assert.Equal(t, "create_core_tables", m.Name)

	_, ok = findMigration("999")
	assert.False(t, ok)
}

func TestCoreTablesCoverModels(t *testing.T) {
	assert.Len(t, coreTables, len(AllModels()))
}

func TestConstraintNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range constraints {
		assert.False(t, seen[c.name], c.name)
		seen[c.name] = true
	}
}
