package migrations

import (
	"fmt"

	"gorm.io/gorm"
)

type constraint struct {
	table string
	name  string
	def   string
}

var constraints = []constraint{
	{"party_settings", "fk_party_settings_party", "FOREIGN KEY (party_id) REFERENCES parties(id) ON DELETE CASCADE"},
	{"participants", "fk_participants_party", "FOREIGN KEY (party_id) REFERENCES parties(id) ON DELETE CASCADE"},

	{"votes", "fk_votes_party", "FOREIGN KEY (party_id) REFERENCES parties(id) ON DELETE CASCADE"},
	{"votes", "fk_votes_voter", "FOREIGN KEY (voter_id) REFERENCES participants(id) ON DELETE CASCADE"},
	{"votes", "fk_votes_voted", "FOREIGN KEY (voted_id) REFERENCES participants(id) ON DELETE CASCADE"},
	{"votes", "chk_votes_rank", "CHECK (rank BETWEEN 1 AND 3)"},
	{"votes", "chk_votes_not_self", "CHECK (voter_id <> voted_id)"},
	{"votes", "uq_votes_ballot_rank", "UNIQUE (party_id, voter_id, round_type, rank)"},
	{"votes", "uq_votes_ballot_target", "UNIQUE (party_id, voter_id, round_type, voted_id)"},

	{"matches", "fk_matches_party", "FOREIGN KEY (party_id) REFERENCES parties(id) ON DELETE CASCADE"},
	{"matches", "fk_matches_male", "FOREIGN KEY (male_id) REFERENCES participants(id) ON DELETE CASCADE"},
	{"matches", "fk_matches_female", "FOREIGN KEY (female_id) REFERENCES participants(id) ON DELETE CASCADE"},
	{"matches", "chk_matches_kind", "CHECK (kind IN ('mutual', 'greedy'))"},

	{"seating_charts", "fk_seating_charts_party", "FOREIGN KEY (party_id) REFERENCES parties(id) ON DELETE CASCADE"},
}

// tables whose updated_at is maintained by the database as well as by GORM
var touchedTables = []string{"parties", "party_settings", "participants", "seating_charts"}

// migration004Up adds foreign keys, ballot checks and updated_at triggers
func migration004Up(db *gorm.DB) error {
	for _, c := range constraints {
		sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s %s", c.table, c.name, c.def)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", c.name, err)
		}
	}

	if err := db.Exec(`
        CREATE OR REPLACE FUNCTION set_updated_at()
        RETURNS TRIGGER AS $$
        BEGIN
            NEW.updated_at = CURRENT_TIMESTAMP;
            RETURN NEW;
        END;
        $$ LANGUAGE plpgsql
    `).Error; err != nil {
		return err
	}

	for _, table := range touchedTables {
		sql := fmt.Sprintf(
			"CREATE TRIGGER trg_%s_updated_at BEFORE UPDATE ON %s FOR EACH ROW EXECUTE FUNCTION set_updated_at()",
			table, table,
		)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create trigger on %s: %w", table, err)
		}
	}

	return nil
}

// migration004Down removes triggers and constraints in reverse order
func migration004Down(db *gorm.DB) error {
	for _, table := range touchedTables {
		sql := fmt.Sprintf("DROP TRIGGER IF EXISTS trg_%s_updated_at ON %s", table, table)
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}

	if err := db.Exec("DROP FUNCTION IF EXISTS set_updated_at()").Error; err != nil {
		return err
	}

	for i := len(constraints) - 1; i >= 0; i-- {
		c := constraints[i]
		sql := fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", c.table, c.name)
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}

	return nil
}
