package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/AdamBeresnev/venue-bracket/internal/store"
	"github.com/google/uuid"
)

// FinalizeStandings records the podium once the final has a winner. Calling
// it again returns the standings already recorded.
func (s *BracketService) FinalizeStandings(ctx context.Context, tournamentID uuid.UUID) (standings []bracket.Standing, err error) {
	defer func() { s.opts.Metrics.Operation("finalize_standings", err) }()

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if _, err := s.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	existing, err := s.standings.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, s.storageError("get standings", err)
	}
	if len(existing) > 0 {
		s.log.Info("standings already recorded", "tournament_id", tournamentID)
		return existing, nil
	}

	matches, err := s.matches.ListMatches(ctx, store.MatchFilter{
		TournamentID: tournamentID,
		Stages:       []bracket.Stage{bracket.StageUpperSemi, bracket.StageFinal},
	})
	if err != nil {
		return nil, s.storageError("list final stages", err)
	}
	byStage := bracket.GroupByStage(matches)

	if len(byStage[bracket.StageFinal]) == 0 {
		return nil, fmt.Errorf("%w: the final has not been created", bracket.ErrIncompleteStage)
	}
	for _, stage := range []bracket.Stage{bracket.StageUpperSemi, bracket.StageFinal} {
		def, _ := bracket.Lookup(stage)
		if err := bracket.CheckStage(def, byStage[stage]); err != nil {
			return nil, err
		}
	}

	result, err := bracket.ComputeStandings(tournamentID, byStage[bracket.StageFinal][0], byStage[bracket.StageUpperSemi][0], s.opts.Now())
	if err != nil {
		return nil, err
	}

	created, err := s.standings.RecordStandings(ctx, result)
	if err != nil {
		return nil, s.storageError("record standings", err)
	}
	if err := s.tournaments.UpdateStatus(ctx, tournamentID, bracket.TournamentCompleted); err != nil {
		return nil, s.storageError("update tournament status", err)
	}
	s.invalidate(ctx, tournamentID)

	standings, err = s.standings.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, s.storageError("get standings", err)
	}

	if created {
		s.log.Info("standings finalized",
			"tournament_id", tournamentID,
			"champion_id", result.ChampionID,
			"week", result.Week,
			"year", result.Year,
		)
	}
	return standings, nil
}
