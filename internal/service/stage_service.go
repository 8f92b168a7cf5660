package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/AdamBeresnev/venue-bracket/internal/store"
	"github.com/google/uuid"
)

// AdvanceStage creates the matches of stage from its completed feeders. If
// the stage already exists the stored matches are returned unchanged.
func (s *BracketService) AdvanceStage(ctx context.Context, tournamentID uuid.UUID, stage bracket.Stage) (matches []bracket.Match, err error) {
	defer func() { s.opts.Metrics.Operation("advance_stage", err) }()

	def, ok := bracket.Lookup(stage)
	if !ok {
		return nil, fmt.Errorf("%w: %q", bracket.ErrUnknownStage, stage)
	}
	if len(def.Feeds) == 0 {
		return nil, fmt.Errorf("%w: %s is created by bracket generation, not advanced into", bracket.ErrUnknownStage, stage)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if _, err := s.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	existing, err := s.matches.ListByStage(ctx, tournamentID, stage)
	if err != nil {
		return nil, s.storageError("list stage", err)
	}
	if len(existing) > 0 {
		s.log.Info("stage already exists", "tournament_id", tournamentID, "stage", stage)
		return existing, nil
	}

	feeders, err := s.matches.ListMatches(ctx, store.MatchFilter{TournamentID: tournamentID, Stages: def.Dependencies()})
	if err != nil {
		return nil, s.storageError("list feeder stages", err)
	}

	derived, err := bracket.DeriveStage(tournamentID, def, bracket.GroupByStage(feeders))
	if err != nil {
		return nil, err
	}

	created, err := s.matches.InsertIfAbsent(ctx, derived)
	if err != nil {
		return nil, s.storageError("insert stage", err)
	}
	if len(created) > 0 {
		s.opts.Metrics.StageCreated(stage)
		s.invalidate(ctx, tournamentID)
		s.log.Info("stage created", "tournament_id", tournamentID, "stage", stage, "matches", len(created))
	} else {
		s.log.Info("stage created concurrently", "tournament_id", tournamentID, "stage", stage)
	}

	matches, err = s.matches.ListByStage(ctx, tournamentID, stage)
	if err != nil {
		return nil, s.storageError("list stage", err)
	}
	return matches, nil
}

// CancelStage clears the winners of stage and deletes every stage derived
// from it, so results can be corrected and replayed forward. It returns the
// number of deleted matches.
func (s *BracketService) CancelStage(ctx context.Context, tournamentID uuid.UUID, stage bracket.Stage) (deleted int64, err error) {
	defer func() { s.opts.Metrics.Operation("cancel_stage", err) }()

	if _, ok := bracket.Lookup(stage); !ok {
		return 0, fmt.Errorf("%w: %q", bracket.ErrUnknownStage, stage)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if _, err := s.requireTournament(ctx, tournamentID); err != nil {
		return 0, err
	}

	standings, err := s.standings.GetStandings(ctx, tournamentID)
	if err != nil {
		return 0, s.storageError("get standings", err)
	}
	if len(standings) > 0 {
		return 0, fmt.Errorf("%w: standings for tournament %s are recorded, regenerate the bracket to start over", bracket.ErrAlreadyFinalized, tournamentID)
	}

	derived := bracket.Dependents(stage)
	deleted, err = s.matches.ResetStage(ctx, tournamentID, stage, derived)
	if err != nil {
		return 0, s.storageError("reset stage", err)
	}
	s.invalidate(ctx, tournamentID)

	s.log.Info("stage cancelled", "tournament_id", tournamentID, "stage", stage, "matches_deleted", deleted)
	return deleted, nil
}
