package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/AdamBeresnev/venue-bracket/internal/store"
	"github.com/AdamBeresnev/venue-bracket/internal/utils"
)

// RecordWinner sets the winning slot of a match. Recording the current winner
// again clears it.
func (s *BracketService) RecordWinner(ctx context.Context, matchID int64, slot bracket.Slot) (match *bracket.Match, err error) {
	defer func() { s.opts.Metrics.Operation("record_winner", err) }()

	if !slot.Valid() {
		return nil, fmt.Errorf("%w: winning slot must be %q or %q, got %q", bracket.ErrInvalidWinner, bracket.SlotA, bracket.SlotB, slot)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	match, err = s.matches.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %d does not exist", bracket.ErrUnknownMatch, matchID)
	}
	if err != nil {
		return nil, s.storageError("get match", err)
	}

	if !match.Playable() {
		return nil, fmt.Errorf("%w: match %d does not have two entrants yet", bracket.ErrInvalidWinner, matchID)
	}

	standings, err := s.standings.GetStandings(ctx, match.TournamentID)
	if err != nil {
		return nil, s.storageError("get standings", err)
	}
	if len(standings) > 0 {
		return nil, fmt.Errorf("%w: standings for tournament %s are recorded, results can no longer change", bracket.ErrAlreadyFinalized, match.TournamentID)
	}

	if dependents := bracket.DirectDependents(match.Stage); len(dependents) > 0 {
		derived, err := s.matches.ListMatches(ctx, store.MatchFilter{TournamentID: match.TournamentID, Stages: dependents})
		if err != nil {
			return nil, s.storageError("list dependent stages", err)
		}
		if len(derived) > 0 {
			return nil, fmt.Errorf("%w: %s has already been advanced to %s, cancel %s to re-open it", bracket.ErrStageLocked, match.Stage, derived[0].Stage, match.Stage)
		}
	}

	winner := slot
	if match.Winner == slot {
		winner = bracket.SlotNone
	}

	if err := s.matches.SetWinner(ctx, matchID, winner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: match %d does not exist", bracket.ErrUnknownMatch, matchID)
		}
		return nil, s.storageError("set winner", err)
	}
	match.Winner = winner
	s.invalidate(ctx, match.TournamentID)

	s.log.Info("winner recorded",
		"tournament_id", match.TournamentID,
		"match_id", matchID,
		"stage", match.Stage,
		"winner", winner,
		"entrant_id", utils.OrZero(match.EntrantID(winner)),
	)
	return match, nil
}
