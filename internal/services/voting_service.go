package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/storage/postgres"
)

// VotingService receives participants' ballots
type VotingService struct {
	store postgres.Store
	log   *log.Logger
}

func NewVotingService(store postgres.Store) *VotingService {
	return &VotingService{
		store: store,
		log:   logger.Service("voting"),
	}
}

// BallotEntry is one choice; a zero Rank means "by position in the list".
type BallotEntry struct {
	VotedID uuid.UUID `json:"voted_id" binding:"required"`
	Rank    int       `json:"rank"`
}

// SubmitBallotRequest carries up to vote.MaxRank choices
type SubmitBallotRequest struct {
	Votes []BallotEntry `json:"votes" binding:"required"`
}

type voterContext struct {
	party    *party.Party
	voter    *participant.Participant
	settings *party.Settings
	people   participant.Index
	ordered  []*participant.Participant
}

func (s *VotingService) load(ctx context.Context, partyID, voterID uuid.UUID) (*voterContext, error) {
	p, err := s.store.Parties().GetByID(ctx, partyID)
	if err != nil {
		return nil, err
	}

	people, err := s.store.Participants().ListByParty(ctx, partyID, postgres.ParticipantFilter{})
	if err != nil {
		return nil, err
	}
	idx := participant.NewIndex(people)

	voter, ok := idx[voterID]
	if !ok {
		return nil, fmt.Errorf("participant %s: %w", voterID, ErrNotFound)
	}

	settings, err := loadSettings(ctx, s.store.Settings(), partyID)
	if err != nil {
		return nil, err
	}

	return &voterContext{party: p, voter: voter, settings: settings, people: idx, ordered: people}, nil
}

// SubmitBallot replaces the voter's ballot for round.
func (s *VotingService) SubmitBallot(ctx context.Context, partyID, voterID uuid.UUID, round vote.RoundType, req SubmitBallotRequest) ([]*vote.Vote, error) {
	if !round.Valid() {
		return nil, invalid(fmt.Errorf("unknown round %q", round))
	}

	vc, err := s.load(ctx, partyID, voterID)
	if err != nil {
		return nil, err
	}
	if !vc.party.AcceptsVotes(round) {
		return nil, fmt.Errorf("%w: %s voting is not open", ErrInvalidStage, round)
	}

	votes := make([]*vote.Vote, 0, len(req.Votes))
	for i, entry := range req.Votes {
		target, ok := vc.people[entry.VotedID]
		if !ok {
			return nil, invalid(fmt.Errorf("participant %s is not part of this party", entry.VotedID))
		}
		if vc.settings.GenderRule.RequireMixedGender && target.Gender == vc.voter.Gender {
			return nil, invalid(errors.New("votes must go to participants of the opposite gender"))
		}

		rank := entry.Rank
		if rank == 0 {
			rank = i + 1
		}
		votes = append(votes, vote.NewVote(partyID, voterID, entry.VotedID, round, rank))
	}

	if err := vote.ValidateBallot(votes); err != nil {
		return nil, invalid(err)
	}

	if err := s.store.Votes().ReplaceBallot(ctx, partyID, voterID, round, votes); err != nil {
		return nil, err
	}

	s.log.Info("Ballot submitted", "party_id", partyID, "voter_id", voterID, "round", round, "votes", len(votes))
	return votes, nil
}

// Ballot returns what the voter submitted for round, ordered by rank.
func (s *VotingService) Ballot(ctx context.Context, partyID, voterID uuid.UUID, round vote.RoundType) ([]*vote.Vote, error) {
	if !round.Valid() {
		return nil, invalid(fmt.Errorf("unknown round %q", round))
	}
	return s.store.Votes().ListByVoter(ctx, partyID, voterID, round)
}

// Candidates lists whom the voter may vote for.
func (s *VotingService) Candidates(ctx context.Context, partyID, voterID uuid.UUID) ([]*participant.Participant, error) {
	vc, err := s.load(ctx, partyID, voterID)
	if err != nil {
		return nil, err
	}

	out := make([]*participant.Participant, 0, len(vc.ordered))
	for _, p := range vc.ordered {
		if p.ID == voterID {
			continue
		}
		if vc.settings.GenderRule.RequireMixedGender && p.Gender == vc.voter.Gender {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
