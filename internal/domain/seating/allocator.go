package seating

import (
	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

// Occupant is the participant sitting on a seat
type Occupant struct {
	ParticipantID uuid.UUID          `json:"participant_id"`
	Gender        participant.Gender `json:"gender"`
	Name          string             `json:"name"`
	Number        int                `json:"number"`
}

// Seat is a position within a table; Occupant is nil while the seat is empty
type Seat struct {
	Position int       `json:"position"`
	Occupant *Occupant `json:"occupant"`
}

// Empty reports whether nobody sits on the seat
func (s *Seat) Empty() bool {
	return s.Occupant == nil
}

// Table is one venue table with its seats in position order
type Table struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Seats []Seat `json:"seats"`
}

// Stats summarizes an allocation
type Stats struct {
	Total         int `json:"total"`
	Assigned      int `json:"assigned"`
	Unassigned    int `json:"unassigned"`
	TableCount    int `json:"table_count"`
	SeatsPerTable int `json:"seats_per_table"`
}

// Result of one allocation
type Result struct {
	Tables     []Table     `json:"tables"`
	Unassigned []uuid.UUID `json:"unassigned_participants"`
	Stats      Stats       `json:"stats"`
}

// Allocator assigns participants to table seats. It holds no state between
// calls and may be shared across goroutines.
type Allocator struct {
	layout party.SeatingLayout
	rule   party.GenderRule
}

// New returns an allocator for a layout that has already passed validation
func New(layout party.SeatingLayout, rule party.GenderRule) *Allocator {
	return &Allocator{layout: layout, rule: rule}
}

// Allocate seats participants in two passes. The co-location pass walks
// voters in the order their first vote appears and puts each next to the
// first eligible target on the first two adjacent empty seats. The fill pass
// then seats everyone left in participant order. An overfull party is not an
// error; whoever does not fit is returned in Unassigned.
func (a *Allocator) Allocate(participants []*participant.Participant, votes []*vote.Vote, round vote.RoundType) *Result {
	idx := participant.NewIndex(participants)
	in := vote.BuildMatchingInput(votes, round, idx.Has, true)

	tables := a.buildTables()
	assigned := make(map[uuid.UUID]bool)
	place := func(t *Table, pos int, p *participant.Participant) {
		t.Seats[pos].Occupant = &Occupant{
			ParticipantID: p.ID,
			Gender:        p.Gender,
			Name:          p.Name,
			Number:        p.Number,
		}
		assigned[p.ID] = true
	}

	// Co-location pass
	for _, voterID := range in.Voters() {
		if assigned[voterID] {
			continue
		}
		voter := idx[voterID]

		for _, targetID := range in.Targets(voterID) {
			if assigned[targetID] {
				continue
			}
			target := idx[targetID]
			if a.rule.RequireMixedGender && voter.Gender == target.Gender {
				continue
			}

			t, pos, ok := adjacentEmpty(tables)
			if !ok {
				break
			}
			place(t, pos, voter)
			place(t, pos+1, target)
			break
		}
	}

	// Fill pass
	var males, females, others []*participant.Participant
	for _, p := range participants {
		if p == nil || assigned[p.ID] {
			continue
		}
		switch p.Gender {
		case participant.GenderMale:
			males = append(males, p)
		case participant.GenderFemale:
			females = append(females, p)
		default:
			others = append(others, p)
		}
	}

	if a.rule.AlternateSeating {
		for ti := range tables {
			t := &tables[ti]
			for pos := range t.Seats {
				if !t.Seats[pos].Empty() {
					continue
				}
				pool := &males
				if pos%2 == 1 {
					pool = &females
				}
				if len(*pool) == 0 {
					continue
				}
				place(t, pos, (*pool)[0])
				*pool = (*pool)[1:]
			}
		}
	} else {
		queue := make([]*participant.Participant, 0, len(males)+len(females)+len(others))
		queue = append(queue, males...)
		queue = append(queue, females...)
		queue = append(queue, others...)

		for ti := range tables {
			t := &tables[ti]
			for pos := range t.Seats {
				if len(queue) == 0 {
					break
				}
				if t.Seats[pos].Empty() {
					place(t, pos, queue[0])
					queue = queue[1:]
				}
			}
		}
	}

	result := &Result{Tables: tables, Unassigned: []uuid.UUID{}}
	for _, p := range participants {
		if p == nil {
			continue
		}
		result.Stats.Total++
		if !assigned[p.ID] {
			result.Unassigned = append(result.Unassigned, p.ID)
		}
	}
	result.Stats.Assigned = result.Stats.Total - len(result.Unassigned)
	result.Stats.Unassigned = len(result.Unassigned)
	result.Stats.TableCount = len(tables)
	result.Stats.SeatsPerTable = a.layout.MaxSeatsPerTable()

	return result
}

func (a *Allocator) buildTables() []Table {
	specs := a.layout.TableSpecs()
	tables := make([]Table, len(specs))
	for i, spec := range specs {
		seats := make([]Seat, spec.Capacity)
		for pos := range seats {
			seats[pos].Position = pos
		}
		tables[i] = Table{ID: i + 1, Name: spec.Name, Seats: seats}
	}
	return tables
}

// adjacentEmpty finds the first pair of neighbouring empty seats, tables in ID order
func adjacentEmpty(tables []Table) (*Table, int, bool) {
	for ti := range tables {
		seats := tables[ti].Seats
		for pos := 0; pos+1 < len(seats); pos++ {
			if seats[pos].Empty() && seats[pos+1].Empty() {
				return &tables[ti], pos, true
			}
		}
	}
	return nil, 0, false
}

// SeatOf locates a participant, returning the table ID and seat position
func (r *Result) SeatOf(id uuid.UUID) (int, int, bool) {
	for _, t := range r.Tables {
		for _, s := range t.Seats {
			if s.Occupant != nil && s.Occupant.ParticipantID == id {
				return t.ID, s.Position, true
			}
		}
	}
	return 0, 0, false
}

// Capacity is the number of seats across all tables
func (r *Result) Capacity() int {
	total := 0
	for _, t := range r.Tables {
		total += len(t.Seats)
	}
	return total
}
