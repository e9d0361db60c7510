package migrations

import "gorm.io/gorm"

// migration001Up creates extensions and the enum types behind party.Stage and vote.RoundType
func migration001Up(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return err
	}

	if err := db.Exec(`
        CREATE TYPE party_stage AS ENUM (
            'creation',
            'registration',
            'interim_voting',
            'interim_results',
            'final_voting',
            'final_results'
        )
    `).Error; err != nil {
		return err
	}

	if err := db.Exec(`
        CREATE TYPE round_type AS ENUM (
            'interim',
            'final'
        )
    `).Error; err != nil {
		return err
	}

	return nil
}

// migration001Down drops the custom types
func migration001Down(db *gorm.DB) error {
	if err := db.Exec("DROP TYPE IF EXISTS round_type CASCADE").Error; err != nil {
		return err
	}

	if err := db.Exec("DROP TYPE IF EXISTS party_stage CASCADE").Error; err != nil {
		return err
	}

	// NOTE: the uuid extension stays, other schemas may use it
	return nil
}
