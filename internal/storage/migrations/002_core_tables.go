package migrations

import "gorm.io/gorm"

// migration002Up creates all core tables using GORM AutoMigrate
func migration002Up(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// coreTables in drop order, dependents first
var coreTables = []string{
	"seating_charts",
	"matches",
	"votes",
	"participants",
	"party_settings",
	"parties",
}

// migration002Down drops all core tables
func migration002Down(db *gorm.DB) error {
	for _, table := range coreTables {
		if err := db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error; err != nil {
			return err
		}
	}
	return nil
}
