package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/matching"
	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/seating"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/storage/postgres"
)

// Store keeps every repository in process memory. It backs the "memory"
// storage type used for demos and handler tests. Transactions run fn
// directly and do not roll back.
type Store struct {
	mu           sync.Mutex
	parties      map[uuid.UUID]*party.Party
	settings     map[uuid.UUID]*party.Settings
	participants []*participant.Participant
	votes        []*vote.Vote
	matches      map[string][]*matching.Record
	charts       map[string]*seating.Chart
}

var _ postgres.RepositoryContainer = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		parties:  make(map[uuid.UUID]*party.Party),
		settings: make(map[uuid.UUID]*party.Settings),
		matches:  make(map[string][]*matching.Record),
		charts:   make(map[string]*seating.Chart),
	}
}

func roundKey(partyID uuid.UUID, round vote.RoundType) string {
	return partyID.String() + "/" + string(round)
}

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, postgres.ErrNotFound)
}

func (m *Store) Parties() postgres.PartyRepository { return memParties{m} }
func (m *Store) Settings() postgres.SettingsRepository { return memSettings{m} }
func (m *Store) Participants() postgres.ParticipantRepository { return memParticipants{m} }
func (m *Store) Votes() postgres.VoteRepository { return memVotes{m} }
func (m *Store) Matches() postgres.MatchRepository { return memMatches{m} }
func (m *Store) Seating() postgres.SeatingRepository { return memSeating{m} }

func (m *Store) WithTransaction(ctx context.Context, fn func(tx postgres.Repositories) error) error {
	return fn(m)
}

func (m *Store) Health() error { return nil }

func (m *Store) Close() error { return nil }

type memParties struct{ m *Store }

func (r memParties) Create(ctx context.Context, p *party.Party) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := p.Validate(); err != nil {
		return err
	}
	for _, other := range r.m.parties {
		if other.Slug == p.Slug {
			return postgres.ErrConflict
		}
	}
	cp := *p
	r.m.parties[p.ID] = &cp
	return nil
}

func (r memParties) GetByID(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.parties[id]
	if !ok {
		return nil, notFound("party", id)
	}
	cp := *p
	return &cp, nil
}

func (r memParties) GetBySlug(ctx context.Context, slug string) (*party.Party, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.parties {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("party", slug)
}

func (r memParties) List(ctx context.Context, params postgres.PaginationParams) ([]*party.Party, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	offset := params.Normalize()

	all := make([]*party.Party, 0, len(r.m.parties))
	for _, p := range r.m.parties {
		cp := *p
		all = append(all, &cp)
	}
	slices.SortFunc(all, func(a, b *party.Party) int {
		return b.EventDate.Compare(a.EventDate)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []*party.Party{}, total, nil
	}
	end := min(offset+params.PageSize, len(all))
	return all[offset:end], total, nil
}

func (r memParties) UpdateStage(ctx context.Context, id uuid.UUID, stage party.Stage) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.parties[id]
	if !ok {
		return notFound("party", id)
	}
	return p.UpdateStage(stage)
}

type memSettings struct{ m *Store }

func (r memSettings) GetByParty(ctx context.Context, partyID uuid.UUID) (*party.Settings, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.settings[partyID]
	if !ok {
		return nil, notFound("settings", partyID)
	}
	cp := *s
	return &cp, nil
}

func (r memSettings) Upsert(ctx context.Context, s *party.Settings) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *s
	r.m.settings[s.PartyID] = &cp
	return nil
}

type memParticipants struct{ m *Store }

func (r memParticipants) Create(ctx context.Context, p *participant.Participant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := p.Validate(); err != nil {
		return err
	}
	next := 1
	for _, other := range r.m.participants {
		if other.PartyID == p.PartyID && other.Number >= next {
			next = other.Number + 1
		}
	}
	for _, other := range r.m.participants {
		if other.AccessCode == p.AccessCode {
			return postgres.ErrConflict
		}
	}
	p.Number = next
	cp := *p
	r.m.participants = append(r.m.participants, &cp)
	return nil
}

func (r memParticipants) GetByID(ctx context.Context, id uuid.UUID) (*participant.Participant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.participants {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("participant", id)
}

func (r memParticipants) GetByAccessCode(ctx context.Context, partyID uuid.UUID, code string) (*participant.Participant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.participants {
		if p.PartyID == partyID && p.AccessCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("access code", code)
}

func (r memParticipants) ListByParty(ctx context.Context, partyID uuid.UUID, filter postgres.ParticipantFilter) ([]*participant.Participant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*participant.Participant{}
	for _, p := range r.m.participants {
		if p.PartyID != partyID || (filter.Gender != "" && p.Gender != filter.Gender) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *participant.Participant) int { return cmp.Compare(a.Number, b.Number) })
	return out, nil
}

func (r memParticipants) Delete(ctx context.Context, partyID, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	before := len(r.m.participants)
	r.m.participants = slices.DeleteFunc(r.m.participants, func(p *participant.Participant) bool {
		return p.PartyID == partyID && p.ID == id
	})
	if len(r.m.participants) == before {
		return notFound("participant", id)
	}
	r.m.votes = slices.DeleteFunc(r.m.votes, func(v *vote.Vote) bool {
		return v.VoterID == id || v.VotedID == id
	})
	return nil
}

type memVotes struct{ m *Store }

func (r memVotes) ReplaceBallot(ctx context.Context, partyID, voterID uuid.UUID, round vote.RoundType, votes []*vote.Vote) error {
	if err := vote.ValidateBallot(votes); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.votes = slices.DeleteFunc(r.m.votes, func(v *vote.Vote) bool {
		return v.PartyID == partyID && v.VoterID == voterID && v.RoundType == round
	})
	for _, v := range votes {
		cp := *v
		r.m.votes = append(r.m.votes, &cp)
	}
	return nil
}

func (r memVotes) ListByRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) ([]*vote.Vote, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*vote.Vote{}
	for _, v := range r.m.votes {
		if v.PartyID == partyID && v.RoundType == round {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memVotes) ListByVoter(ctx context.Context, partyID, voterID uuid.UUID, round vote.RoundType) ([]*vote.Vote, error) {
	all, _ := r.ListByRound(ctx, partyID, round)
	out := []*vote.Vote{}
	for _, v := range all {
		if v.VoterID == voterID {
			out = append(out, v)
		}
	}
	slices.SortStableFunc(out, func(a, b *vote.Vote) int { return a.Rank - b.Rank })
	return out, nil
}

type memMatches struct{ m *Store }

func (r memMatches) ReplaceRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType, records []*matching.Record) error {
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
		if rec.PartyID != partyID || rec.RoundType != round {
			return fmt.Errorf("match record belongs to another party or round")
		}
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.matches[roundKey(partyID, round)] = slices.Clone(records)
	return nil
}

func (r memMatches) ListByRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) ([]*matching.Record, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]*matching.Record{}, r.m.matches[roundKey(partyID, round)]...), nil
}

type memSeating struct{ m *Store }

func (r memSeating) Upsert(ctx context.Context, chart *seating.Chart) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *chart
	r.m.charts[roundKey(chart.PartyID, chart.RoundType)] = &cp
	return nil
}

func (r memSeating) GetByRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) (*seating.Chart, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.charts[roundKey(partyID, round)]
	if !ok {
		return nil, notFound("seating chart", round)
	}
	cp := *c
	return &cp, nil
}
