package vote

import (
	"slices"

	"github.com/google/uuid"
)

// MatchingInput is the voter -> ordered targets view of one round's votes.
//
// Voters are kept in insertion order: the position of each voter's first vote
// in the vote list handed to BuildMatchingInput. Both the matcher and the
// seating allocator iterate in that order, so it is part of their behavior.
type MatchingInput struct {
	voters   []uuid.UUID
	targets  map[uuid.UUID][]uuid.UUID
	received map[uuid.UUID]int
}

// BuildMatchingInput keeps the votes of round whose voter and target both
// satisfy exists. Self votes and everything else are dropped silently. When
// ranked is set each voter's targets are ordered by rank, ties keeping vote
// list order; otherwise vote list order is used as is.
func BuildMatchingInput(votes []*Vote, round RoundType, exists func(uuid.UUID) bool, ranked bool) *MatchingInput {
	in := &MatchingInput{
		targets:  make(map[uuid.UUID][]uuid.UUID),
		received: make(map[uuid.UUID]int),
	}

	byVoter := make(map[uuid.UUID][]*Vote)
	for _, v := range votes {
		if v == nil || v.RoundType != round {
			continue
		}
		if v.VoterID == v.VotedID || !exists(v.VoterID) || !exists(v.VotedID) {
			continue
		}
		if _, seen := byVoter[v.VoterID]; !seen {
			in.voters = append(in.voters, v.VoterID)
		}
		byVoter[v.VoterID] = append(byVoter[v.VoterID], v)
	}

	for _, voter := range in.voters {
		list := byVoter[voter]
		if ranked {
			slices.SortStableFunc(list, func(a, b *Vote) int {
				return a.Rank - b.Rank
			})
		}

		ids := make([]uuid.UUID, 0, len(list))
		for _, v := range list {
			if slices.Contains(ids, v.VotedID) {
				continue
			}
			ids = append(ids, v.VotedID)
			in.received[v.VotedID]++
		}
		in.targets[voter] = ids
	}

	return in
}

// Voters returns voter IDs in insertion order
func (in *MatchingInput) Voters() []uuid.UUID {
	return in.voters
}

// Targets returns the ordered targets of voter, nil when the voter cast no valid vote
func (in *MatchingInput) Targets(voter uuid.UUID) []uuid.UUID {
	return in.targets[voter]
}

// HasVoted reports whether voter selected target
func (in *MatchingInput) HasVoted(voter, target uuid.UUID) bool {
	return slices.Contains(in.targets[voter], target)
}

// ReceivedCount is the number of valid votes id received in the round
func (in *MatchingInput) ReceivedCount(id uuid.UUID) int {
	return in.received[id]
}

// Len is the number of voters with at least one valid vote
func (in *MatchingInput) Len() int {
	return len(in.voters)
}
