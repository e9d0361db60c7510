package migrations

import "gorm.io/gorm"

var indexes = []struct {
	name string
	sql  string
}{
	{"idx_parties_stage", "CREATE INDEX IF NOT EXISTS idx_parties_stage ON parties(stage)"},
	{"idx_parties_event_date", "CREATE INDEX IF NOT EXISTS idx_parties_event_date ON parties(event_date DESC)"},

	{"idx_participants_party_gender", "CREATE INDEX IF NOT EXISTS idx_participants_party_gender ON participants(party_id, gender, number)"},

	{"idx_votes_party_round", "CREATE INDEX IF NOT EXISTS idx_votes_party_round ON votes(party_id, round_type, voted_at)"},
	{"idx_votes_voter", "CREATE INDEX IF NOT EXISTS idx_votes_voter ON votes(voter_id, round_type)"},
	{"idx_votes_voted", "CREATE INDEX IF NOT EXISTS idx_votes_voted ON votes(voted_id)"},

	{"idx_matches_position", "CREATE INDEX IF NOT EXISTS idx_matches_position ON matches(party_id, round_type, position)"},
}

// migration003Up creates lookup indexes not declared on the models
func migration003Up(db *gorm.DB) error {
	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration003Down drops the lookup indexes
func migration003Down(db *gorm.DB) error {
	for _, idx := range indexes {
		if err := db.Exec("DROP INDEX IF EXISTS " + idx.name).Error; err != nil {
			return err
		}
	}
	return nil
}
