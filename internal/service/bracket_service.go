package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/AdamBeresnev/venue-bracket/internal/metrics"
	"github.com/AdamBeresnev/venue-bracket/internal/store"
	"github.com/google/uuid"
)

type MatchStore interface {
	InsertIfAbsent(ctx context.Context, matches []bracket.Match) ([]bracket.Match, error)
	GetMatch(ctx context.Context, id int64) (*bracket.Match, error)
	SetWinner(ctx context.Context, id int64, winner bracket.Slot) error
	ListMatches(ctx context.Context, filter store.MatchFilter) ([]bracket.Match, error)
	ListByStage(ctx context.Context, tournamentID uuid.UUID, stage bracket.Stage) ([]bracket.Match, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error)
	ResetStage(ctx context.Context, tournamentID uuid.UUID, stage bracket.Stage, derived []bracket.Stage) (int64, error)
	DeleteByTournament(ctx context.Context, tournamentID uuid.UUID) error
}

type EntrantSource interface {
	ListPaidEntrants(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Entrant, error)
}

type StandingsSink interface {
	RecordStandings(ctx context.Context, standings bracket.Standings) (bool, error)
	GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Standing, error)
	DeleteByTournament(ctx context.Context, tournamentID uuid.UUID) error
}

type TournamentRepository interface {
	GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status bracket.TournamentStatus) error
}

// SnapshotCache stores encoded snapshots. Get returns nil, nil on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Options struct {
	// StoreTimeout bounds each operation's storage round trips.
	StoreTimeout time.Duration
	SnapshotTTL  time.Duration

	Now     func() time.Time
	Shuffle bracket.Shuffler

	Cache   SnapshotCache
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

const (
	defaultStoreTimeout = 3 * time.Second
	defaultSnapshotTTL  = 30 * time.Second
)

// BracketService drives a tournament through the double elimination bracket.
// Every call names its tournament explicitly.
type BracketService struct {
	matches     MatchStore
	entrants    EntrantSource
	standings   StandingsSink
	tournaments TournamentRepository

	opts Options
	log  *slog.Logger
}

func NewBracketService(matches MatchStore, entrants EntrantSource, standings StandingsSink, tournaments TournamentRepository, opts Options) *BracketService {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Shuffle == nil {
		opts.Shuffle = rand.Shuffle
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BracketService{
		matches:     matches,
		entrants:    entrants,
		standings:   standings,
		tournaments: tournaments,
		opts:        opts,
		log:         logger.With("component", "bracket"),
	}
}

// GenerateBracket seeds the first round from exactly 16 entrants. A tournament
// that already has matches or standings is only replaced when confirm is set.
func (s *BracketService) GenerateBracket(ctx context.Context, tournamentID uuid.UUID, entrants []bracket.Entrant, confirm bool) (matches []bracket.Match, err error) {
	defer func() { s.opts.Metrics.Operation("generate_bracket", err) }()

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if _, err := s.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	seeded, err := bracket.SeedFirstRound(tournamentID, entrants, s.opts.Shuffle)
	if err != nil {
		return nil, err
	}

	existing, err := s.matches.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, s.storageError("list matches", err)
	}
	standings, err := s.standings.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, s.storageError("get standings", err)
	}

	if len(existing) > 0 || len(standings) > 0 {
		if !confirm {
			return nil, fmt.Errorf("%w: tournament %s already has a bracket, confirm regeneration to replace it", bracket.ErrAlreadyFinalized, tournamentID)
		}
		if err := s.standings.DeleteByTournament(ctx, tournamentID); err != nil {
			return nil, s.storageError("delete standings", err)
		}
		if err := s.matches.DeleteByTournament(ctx, tournamentID); err != nil {
			return nil, s.storageError("delete matches", err)
		}
		s.log.Info("bracket reset for regeneration", "tournament_id", tournamentID, "matches_deleted", len(existing), "standings_deleted", len(standings))
	}

	created, err := s.matches.InsertIfAbsent(ctx, seeded)
	if err != nil {
		return nil, s.storageError("insert first round", err)
	}
	if len(created) > 0 {
		s.opts.Metrics.StageCreated(bracket.StageR1)
	}

	if err := s.tournaments.UpdateStatus(ctx, tournamentID, bracket.TournamentStarted); err != nil {
		return nil, s.storageError("update tournament status", err)
	}
	s.invalidate(ctx, tournamentID)

	matches, err = s.matches.ListByStage(ctx, tournamentID, bracket.StageR1)
	if err != nil {
		return nil, s.storageError("list first round", err)
	}

	s.log.Info("bracket generated", "tournament_id", tournamentID, "matches", len(matches))
	return matches, nil
}

// GenerateFromPaidEntrants seeds the bracket from the tournament's paid teams.
func (s *BracketService) GenerateFromPaidEntrants(ctx context.Context, tournamentID uuid.UUID, confirm bool) ([]bracket.Match, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	entrants, err := s.entrants.ListPaidEntrants(listCtx, tournamentID)
	cancel()
	if err != nil {
		err = s.storageError("list paid entrants", err)
		s.opts.Metrics.Operation("generate_bracket", err)
		return nil, err
	}

	return s.GenerateBracket(ctx, tournamentID, entrants, confirm)
}

func (s *BracketService) requireTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.tournaments.GetTournament(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tournament %s does not exist", bracket.ErrUnknownTournament, id)
	}
	if err != nil {
		return nil, s.storageError("get tournament", err)
	}
	return tournament, nil
}

func (s *BracketService) storageError(op string, err error) error {
	s.log.Error("storage failure", "operation", op, "error", err)
	return storageError(op, err)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", bracket.ErrStorageUnavailable, op, err)
}
