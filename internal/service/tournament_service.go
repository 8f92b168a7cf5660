package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/AdamBeresnev/venue-bracket/internal/store"
	"github.com/AdamBeresnev/venue-bracket/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	maxTitleLength    = 100
	maxTeamNameLength = 50
	maxCaptainLength  = 50
	maxChampionsLimit = 100
)

// SnapshotInvalidator drops cached views after registrations change.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, tournamentID uuid.UUID)
}

// TournamentService manages tournaments and their team registrations, the
// entrant source for bracket generation.
type TournamentService struct {
	db        *sqlx.DB
	store     *store.TournamentStore
	teams     *store.TeamStore
	standings *store.StandingStore

	snapshots SnapshotInvalidator
	timeout   time.Duration
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, teams *store.TeamStore, standings *store.StandingStore, snapshots SnapshotInvalidator, timeout time.Duration) *TournamentService {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &TournamentService{
		db:        db,
		store:     store,
		teams:     teams,
		standings: standings,
		snapshots: snapshots,
		timeout:   timeout,
	}
}

func (s *TournamentService) CreateTournament(ctx context.Context, title string) (*bracket.Tournament, error) {
	title, ok := utils.CleanName(title, maxTitleLength)
	if !ok {
		return nil, fmt.Errorf("%w: title must be 1 to %d characters", bracket.ErrInvalidInput, maxTitleLength)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tournament := &bracket.Tournament{
		ID:     uuid.New(),
		Title:  title,
		Status: bracket.TournamentDraft,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, storageError("create tournament", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageError("commit tournament", err)
	}

	created, err := s.store.GetTournament(ctx, tournament.ID)
	if err != nil {
		return nil, storageError("get tournament", err)
	}

	slog.Info("tournament created", "tournament_id", created.ID, "title", created.Title)
	return created, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.getTournament(ctx, id)
}

func (s *TournamentService) getTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tournament %s does not exist", bracket.ErrUnknownTournament, id)
	}
	if err != nil {
		return nil, storageError("get tournament", err)
	}
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tournaments, err := s.store.ListTournaments(ctx)
	if err != nil {
		return nil, storageError("list tournaments", err)
	}
	return tournaments, nil
}

// RegisterTeam adds an unpaid team. Teams can only join before the bracket is
// generated.
func (s *TournamentService) RegisterTeam(ctx context.Context, tournamentID uuid.UUID, teamName, captain string) (*bracket.Team, error) {
	teamName, ok := utils.CleanName(teamName, maxTeamNameLength)
	if !ok {
		return nil, fmt.Errorf("%w: team name must be 1 to %d characters", bracket.ErrInvalidInput, maxTeamNameLength)
	}
	captain, ok = utils.CleanName(captain, maxCaptainLength)
	if !ok && captain != "" {
		return nil, fmt.Errorf("%w: captain must be at most %d characters", bracket.ErrInvalidInput, maxCaptainLength)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != bracket.TournamentDraft {
		return nil, fmt.Errorf("%w: tournament %s is %s, registration is closed", bracket.ErrAlreadyFinalized, tournamentID, tournament.Status)
	}

	team := &bracket.Team{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		TeamName:     teamName,
		Captain:      captain,
	}
	if err := s.teams.CreateTeam(ctx, team); err != nil {
		return nil, storageError("create team", err)
	}

	created, err := s.teams.GetTeam(ctx, team.ID)
	if err != nil {
		return nil, storageError("get team", err)
	}

	slog.Info("team registered", "tournament_id", tournamentID, "team_id", created.ID, "team_name", created.TeamName)
	return created, nil
}

// SetPaid marks a team as paid or unpaid. Only paid teams are seeded.
func (s *TournamentService) SetPaid(ctx context.Context, teamID uuid.UUID, paid bool) (*bracket.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.teams.SetPaid(ctx, teamID, paid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: team %s does not exist", bracket.ErrUnknownTeam, teamID)
		}
		return nil, storageError("set paid", err)
	}

	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, storageError("get team", err)
	}
	if s.snapshots != nil {
		s.snapshots.Invalidate(ctx, team.TournamentID)
	}

	slog.Info("team payment updated", "team_id", teamID, "paid", paid)
	return team, nil
}

func (s *TournamentService) ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	teams, err := s.teams.ListTeams(ctx, tournamentID)
	if err != nil {
		return nil, storageError("list teams", err)
	}
	return teams, nil
}

// ListChampions returns the latest podium history, newest week first.
func (s *TournamentService) ListChampions(ctx context.Context, limit int) ([]bracket.Standing, error) {
	if limit <= 0 || limit > maxChampionsLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", bracket.ErrInvalidInput, maxChampionsLimit)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	champions, err := s.standings.ListChampions(ctx, limit)
	if err != nil {
		return nil, storageError("list champions", err)
	}
	return champions, nil
}
