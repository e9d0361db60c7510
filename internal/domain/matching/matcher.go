package matching

import (
	"slices"

	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
)

// Kind tells how a pair was formed
type Kind string

const (
	KindMutual Kind = "mutual"
	KindGreedy Kind = "greedy"
)

// Pair is one male/female pairing produced by the matcher
type Pair struct {
	MaleID   uuid.UUID `json:"male_id"`
	FemaleID uuid.UUID `json:"female_id"`
	Kind     Kind      `json:"kind"`
}

// Summary holds the counts reported with a match result
type Summary struct {
	TotalParticipants int `json:"total_participants"`
	TotalMatches      int `json:"total_matches"`
	MutualMatches     int `json:"mutual_matches"`
	MaleCount         int `json:"male_count"`
	FemaleCount       int `json:"female_count"`
	Excluded          int `json:"excluded"` // genders outside the matching model
}

// Result of one matcher run. Pairs are in commit order, so all mutual pairs
// come before the greedy ones.
type Result struct {
	Pairs     []Pair      `json:"pairs"`
	Unmatched []uuid.UUID `json:"unmatched"`
	Summary   Summary     `json:"summary"`
}

// Matcher computes first-fit 1:1 pairs from ranked votes. It is stateless
// between calls and safe for concurrent use.
type Matcher struct {
	rule party.MatchingRule
}

func New(rule party.MatchingRule) *Matcher {
	return &Matcher{rule: rule}
}

// Match pairs opposite-gender participants using the votes of round.
//
// Males are scanned in participant order during the mutual pass. The greedy
// pass then orders the remaining participants by votes received, ties keeping
// participant order. Votes for other rounds or for unknown participants are
// ignored. Match never fails; inputs that cannot produce pairs leave everyone
// unmatched.
func (m *Matcher) Match(participants []*participant.Participant, votes []*vote.Vote, round vote.RoundType) *Result {
	idx := participant.NewIndex(participants)
	in := vote.BuildMatchingInput(votes, round, idx.Has, m.rule.ConsiderRanking)

	var males, females []*participant.Participant
	result := &Result{Pairs: []Pair{}, Unmatched: []uuid.UUID{}}

	for _, p := range participants {
		if p == nil {
			continue
		}
		result.Summary.TotalParticipants++
		switch p.Gender {
		case participant.GenderMale:
			males = append(males, p)
		case participant.GenderFemale:
			females = append(females, p)
		default:
			result.Summary.Excluded++
		}
	}
	result.Summary.MaleCount = len(males)
	result.Summary.FemaleCount = len(females)

	matched := make(map[uuid.UUID]bool)
	commit := func(male, female uuid.UUID, kind Kind) {
		matched[male] = true
		matched[female] = true
		result.Pairs = append(result.Pairs, Pair{MaleID: male, FemaleID: female, Kind: kind})
	}
	isFreeFemale := func(id uuid.UUID) bool {
		p, ok := idx[id]
		return ok && p.Gender == participant.GenderFemale && !matched[id]
	}

	// Mutual pass
	if m.rule.PrioritizeMutual {
		for _, male := range males {
			if matched[male.ID] {
				continue
			}
			for _, target := range in.Targets(male.ID) {
				if isFreeFemale(target) && in.HasVoted(target, male.ID) {
					commit(male.ID, target, KindMutual)
					break
				}
			}
		}
	}

	// Greedy pass
	remainingMales := unmatchedByPopularity(males, matched, in)
	remainingFemales := unmatchedByPopularity(females, matched, in)

	for _, male := range remainingMales {
		if partner, ok := m.pickPartner(male.ID, in, remainingFemales, isFreeFemale); ok {
			commit(male.ID, partner, KindGreedy)
		}
	}

	for _, group := range [][]*participant.Participant{males, females} {
		for _, p := range group {
			if !matched[p.ID] {
				result.Unmatched = append(result.Unmatched, p.ID)
			}
		}
	}

	result.Summary.TotalMatches = len(result.Pairs)
	for _, pair := range result.Pairs {
		if pair.Kind == KindMutual {
			result.Summary.MutualMatches++
		}
	}

	return result
}

// pickPartner prefers the male's own choices in order, then the most popular free female
func (m *Matcher) pickPartner(male uuid.UUID, in *vote.MatchingInput, females []*participant.Participant, isFree func(uuid.UUID) bool) (uuid.UUID, bool) {
	for _, target := range in.Targets(male) {
		if isFree(target) {
			return target, true
		}
	}
	for _, f := range females {
		if isFree(f.ID) {
			return f.ID, true
		}
	}
	return uuid.Nil, false
}

func unmatchedByPopularity(group []*participant.Participant, matched map[uuid.UUID]bool, in *vote.MatchingInput) []*participant.Participant {
	remaining := make([]*participant.Participant, 0, len(group))
	for _, p := range group {
		if !matched[p.ID] {
			remaining = append(remaining, p)
		}
	}

	slices.SortStableFunc(remaining, func(a, b *participant.Participant) int {
		return in.ReceivedCount(b.ID) - in.ReceivedCount(a.ID)
	})
	return remaining
}

// PartnerOf returns the participant paired with id
func (r *Result) PartnerOf(id uuid.UUID) (uuid.UUID, bool) {
	for _, pair := range r.Pairs {
		switch id {
		case pair.MaleID:
			return pair.FemaleID, true
		case pair.FemaleID:
			return pair.MaleID, true
		}
	}
	return uuid.Nil, false
}

// GenderBalanced reports whether the eligible pool splits evenly between genders
func (s Summary) GenderBalanced() bool {
	return s.MaleCount == s.FemaleCount
}
