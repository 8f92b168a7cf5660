package service

import (
	"context"
	"encoding/json"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type StageMatches struct {
	Stage   bracket.Stage       `json:"stage"`
	Side    bracket.BracketSide `json:"bracket_side"`
	Matches []bracket.Match     `json:"matches"`
}

// Snapshot is the full view of a tournament: who plays, what has been played
// and what can be advanced next.
type Snapshot struct {
	Tournament  bracket.Tournament `json:"tournament"`
	Entrants    []bracket.Entrant  `json:"entrants"`
	Stages      []StageMatches     `json:"stages"`
	Standings   []bracket.Standing `json:"standings"`
	State       bracket.State      `json:"state"`
	ReadyStages []bracket.Stage    `json:"ready_stages"`
}

func snapshotKey(tournamentID uuid.UUID) string {
	return "snapshot:" + tournamentID.String()
}

func (s *BracketService) Snapshot(ctx context.Context, tournamentID uuid.UUID) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if cached := s.cachedSnapshot(ctx, tournamentID); cached != nil {
		return cached, nil
	}

	var (
		tournament *bracket.Tournament
		entrants   []bracket.Entrant
		matches    []bracket.Match
		standings  []bracket.Standing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.requireTournament(gctx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		if entrants, err = s.entrants.ListPaidEntrants(gctx, tournamentID); err != nil {
			return s.storageError("list paid entrants", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if matches, err = s.matches.ListByTournament(gctx, tournamentID); err != nil {
			return s.storageError("list matches", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if standings, err = s.standings.GetStandings(gctx, tournamentID); err != nil {
			return s.storageError("get standings", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byStage := bracket.GroupByStage(matches)
	snapshot := &Snapshot{
		Tournament:  *tournament,
		Entrants:    entrants,
		Standings:   standings,
		State:       bracket.CurrentState(byStage, len(standings) > 0),
		ReadyStages: bracket.ReadyStages(byStage),
	}
	for _, stage := range bracket.Stages() {
		if len(byStage[stage]) == 0 {
			continue
		}
		snapshot.Stages = append(snapshot.Stages, StageMatches{Stage: stage, Side: stage.Side(), Matches: byStage[stage]})
	}

	s.storeSnapshot(ctx, snapshot)
	return snapshot, nil
}

func (s *BracketService) cachedSnapshot(ctx context.Context, tournamentID uuid.UUID) *Snapshot {
	if s.opts.Cache == nil {
		return nil
	}
	data, err := s.opts.Cache.Get(ctx, snapshotKey(tournamentID))
	if err != nil {
		s.log.Warn("snapshot cache read failed", "tournament_id", tournamentID, "error", err)
		return nil
	}
	if data == nil {
		return nil
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.log.Warn("discarding unreadable cached snapshot", "tournament_id", tournamentID, "error", err)
		return nil
	}
	return &snapshot
}

func (s *BracketService) storeSnapshot(ctx context.Context, snapshot *Snapshot) {
	if s.opts.Cache == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.log.Warn("failed to encode snapshot", "tournament_id", snapshot.Tournament.ID, "error", err)
		return
	}
	if err := s.opts.Cache.Set(ctx, snapshotKey(snapshot.Tournament.ID), data, s.opts.SnapshotTTL); err != nil {
		s.log.Warn("snapshot cache write failed", "tournament_id", snapshot.Tournament.ID, "error", err)
	}
}

// Invalidate drops the cached snapshot of a tournament.
func (s *BracketService) Invalidate(ctx context.Context, tournamentID uuid.UUID) {
	s.invalidate(ctx, tournamentID)
}

func (s *BracketService) invalidate(ctx context.Context, tournamentID uuid.UUID) {
	if s.opts.Cache == nil {
		return
	}
	if err := s.opts.Cache.Delete(ctx, snapshotKey(tournamentID)); err != nil {
		s.log.Warn("snapshot cache invalidation failed", "tournament_id", tournamentID, "error", err)
	}
}
