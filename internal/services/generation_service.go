package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/matching"
	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/domain/seating"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/export"
	"github.com/gravadigital/konkatsu-api/internal/lock"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/publish"
	"github.com/gravadigital/konkatsu-api/internal/storage/postgres"
)

// GenerationService runs the matcher and the seating allocator for a party
// round and stores what they produce.
type GenerationService struct {
	store     postgres.Store
	locker    lock.PartyLocker
	publisher publish.Publisher
	exporter  *export.Exporter
	log       *log.Logger
	algoLog   *log.Logger
	now       func() time.Time
}

func NewGenerationService(store postgres.Store, locker lock.PartyLocker, publisher publish.Publisher, exporter *export.Exporter) *GenerationService {
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	if publisher == nil {
		publisher = publish.Noop{}
	}
	return &GenerationService{
		store:     store,
		locker:    locker,
		publisher: publisher,
		exporter:  exporter,
		log:       logger.Service("generation"),
		algoLog:   logger.Algorithm("matching"),
		now:       time.Now,
	}
}

// MatchOutcome is returned by GenerateMatches. Seating is only set for the
// interim round.
type MatchOutcome struct {
	Round     vote.RoundType   `json:"round"`
	Pairs     []matching.Pair  `json:"pairs"`
	Unmatched []uuid.UUID      `json:"unmatched"`
	Summary   matching.Summary `json:"summary"`
	Seating   *seating.Result  `json:"seating,omitempty"`
	Warnings  []string         `json:"warnings"`
}

// roundInputs is everything one generation reads, loaded fresh each time
type roundInputs struct {
	party        *party.Party
	settings     *party.Settings
	participants []*participant.Participant
	votes        []*vote.Vote
}

func (s *GenerationService) loadRound(ctx context.Context, partyID uuid.UUID, round vote.RoundType) (*roundInputs, error) {
	if !round.Valid() {
		return nil, invalid(fmt.Errorf("unknown round %q", round))
	}

	p, err := s.store.Parties().GetByID(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if !p.AcceptsGeneration(round) {
		return nil, fmt.Errorf("%w: cannot generate %s results during %s", ErrInvalidStage, round, p.Stage)
	}

	settings, err := loadSettings(ctx, s.store.Settings(), partyID)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, invalid(err)
	}

	participants, err := s.store.Participants().ListByParty(ctx, partyID, postgres.ParticipantFilter{})
	if err != nil {
		return nil, err
	}

	votes, err := s.store.Votes().ListByRound(ctx, partyID, round)
	if err != nil {
		return nil, err
	}

	return &roundInputs{party: p, settings: settings, participants: participants, votes: votes}, nil
}

func (s *GenerationService) acquire(ctx context.Context, partyID uuid.UUID) (func(), error) {
	release, err := s.locker.Acquire(ctx, partyID)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("Failed to release party lock", "party_id", partyID, "error", err)
		}
	}, nil
}

func (s *GenerationService) allocate(in *roundInputs, round vote.RoundType) (*seating.Result, error) {
	layout := in.settings.SeatingLayout
	if capacity := layout.Capacity(); capacity < len(in.participants) {
		return nil, fmt.Errorf("%w: %d seats for %d participants", ErrInsufficientSeats, capacity, len(in.participants))
	}
	return seating.New(layout, in.settings.GenderRule).Allocate(in.participants, in.votes, round), nil
}

// GenerateMatches pairs the round's participants and, for the interim round,
// seats them. Previous results for the round are replaced.
func (s *GenerationService) GenerateMatches(ctx context.Context, partyID uuid.UUID, round vote.RoundType) (*MatchOutcome, error) {
	release, err := s.acquire(ctx, partyID)
	if err != nil {
		return nil, err
	}
	defer release()

	in, err := s.loadRound(ctx, partyID, round)
	if err != nil {
		return nil, err
	}
	if len(in.votes) == 0 {
		return nil, ErrNoVotes
	}

	started := s.now()
	result := matching.New(in.settings.MatchingRule).Match(in.participants, in.votes, round)
	s.algoLog.Debug("Matcher finished",
		"party_id", partyID,
		"round", round,
		"pairs", result.Summary.TotalMatches,
		"mutual", result.Summary.MutualMatches,
		"took", time.Since(started),
	)

	outcome := &MatchOutcome{
		Round:     round,
		Pairs:     result.Pairs,
		Unmatched: result.Unmatched,
		Summary:   result.Summary,
		Warnings:  matchWarnings(in.settings.MatchingRule, result.Summary),
	}

	var chart *seating.Chart
	if round == vote.RoundInterim {
		res, err := s.allocate(in, round)
		if err != nil {
			return nil, err
		}
		outcome.Seating = res
		chart = seating.NewChart(partyID, round, res)
	}

	err = s.store.WithTransaction(ctx, func(tx postgres.Repositories) error {
		if err := tx.Matches().ReplaceRound(ctx, partyID, round, result.Records(partyID, round)); err != nil {
			return err
		}
		if chart != nil {
			return tx.Seating().Upsert(ctx, chart)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store %s results: %w", round, err)
	}

	if chart != nil {
		s.publish(ctx, in.party, round, outcome.Seating)
	}

	s.log.Info("Matches generated",
		"party_id", partyID,
		"round", round,
		"pairs", len(outcome.Pairs),
		"unmatched", len(outcome.Unmatched),
		"warnings", len(outcome.Warnings),
	)
	return outcome, nil
}

// GenerateSeating runs only the allocator. Votes are optional here: without
// any the chart is a plain fill.
func (s *GenerationService) GenerateSeating(ctx context.Context, partyID uuid.UUID, round vote.RoundType) (*seating.Result, error) {
	release, err := s.acquire(ctx, partyID)
	if err != nil {
		return nil, err
	}
	defer release()

	in, err := s.loadRound(ctx, partyID, round)
	if err != nil {
		return nil, err
	}

	res, err := s.allocate(in, round)
	if err != nil {
		return nil, err
	}

	if err := s.store.Seating().Upsert(ctx, seating.NewChart(partyID, round, res)); err != nil {
		return nil, fmt.Errorf("failed to store seating: %w", err)
	}
	s.publish(ctx, in.party, round, res)

	s.log.Info("Seating generated",
		"party_id", partyID,
		"round", round,
		"assigned", res.Stats.Assigned,
		"unassigned", res.Stats.Unassigned,
	)
	return res, nil
}

func (s *GenerationService) publish(ctx context.Context, p *party.Party, round vote.RoundType, res *seating.Result) {
	snap := publish.Snapshot{
		Party:       p.Slug,
		Round:       round,
		GeneratedAt: s.now(),
		Seating:     res,
	}
	if err := s.publisher.Publish(ctx, snap); err != nil {
		s.log.Warn("Seating chart not published", "party_id", p.ID, "round", round, "error", err)
	}
}

func matchWarnings(rule party.MatchingRule, sum matching.Summary) []string {
	warnings := []string{}
	if rule.BalanceGenderRatio && !sum.GenderBalanced() {
		warnings = append(warnings, fmt.Sprintf("gender ratio is unbalanced: %d male, %d female", sum.MaleCount, sum.FemaleCount))
	}
	if sum.Excluded > 0 {
		warnings = append(warnings, fmt.Sprintf("%d participants without a male/female gender were excluded from matching", sum.Excluded))
	}
	return warnings
}

// RoundMatches is the stored pairing of a round
type RoundMatches struct {
	Round   vote.RoundType     `json:"round"`
	Matches []*matching.Record `json:"matches"`
}

func (s *GenerationService) GetMatches(ctx context.Context, partyID uuid.UUID, round vote.RoundType) (*RoundMatches, error) {
	if !round.Valid() {
		return nil, invalid(fmt.Errorf("unknown round %q", round))
	}
	if _, err := s.store.Parties().GetByID(ctx, partyID); err != nil {
		return nil, err
	}

	records, err := s.store.Matches().ListByRound(ctx, partyID, round)
	if err != nil {
		return nil, err
	}
	return &RoundMatches{Round: round, Matches: records}, nil
}

func (s *GenerationService) GetSeating(ctx context.Context, partyID uuid.UUID, round vote.RoundType) (*seating.Result, error) {
	if !round.Valid() {
		return nil, invalid(fmt.Errorf("unknown round %q", round))
	}

	chart, err := s.store.Seating().GetByRound(ctx, partyID, round)
	if err != nil {
		return nil, err
	}
	return chart.Result()
}

// Export builds the round workbook. The returned name is a suggested file name.
func (s *GenerationService) Export(ctx context.Context, partyID uuid.UUID, round vote.RoundType) ([]byte, string, error) {
	if !round.Valid() {
		return nil, "", invalid(fmt.Errorf("unknown round %q", round))
	}

	p, err := s.store.Parties().GetByID(ctx, partyID)
	if err != nil {
		return nil, "", err
	}

	people, err := s.store.Participants().ListByParty(ctx, partyID, postgres.ParticipantFilter{})
	if err != nil {
		return nil, "", err
	}

	records, err := s.store.Matches().ListByRound(ctx, partyID, round)
	if err != nil {
		return nil, "", err
	}

	var res *seating.Result
	chart, err := s.store.Seating().GetByRound(ctx, partyID, round)
	switch {
	case err == nil:
		if res, err = chart.Result(); err != nil {
			return nil, "", err
		}
	case !errors.Is(err, ErrNotFound):
		return nil, "", err
	}

	body, err := s.exporter.Export(export.Input{Participants: people, Matches: records, Seating: res})
	if err != nil {
		return nil, "", err
	}
	return body, fmt.Sprintf("%s-%s.xlsx", p.Slug, round), nil
}
