package store

import (
	"context"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TeamStore holds registrations and serves paid teams as bracket entrants.
type TeamStore struct {
	db *sqlx.DB
}

const (
	teamColumns     = "id, tournament_id, team_name, captain, paid, created_at"
	createTeamQuery = `
		INSERT INTO teams (id, tournament_id, team_name, captain, paid)
		VALUES (:id, :tournament_id, :team_name, :captain, :paid)
	`
	listPaidEntrantsQuery = `
		SELECT id, team_name AS display_name FROM teams
		WHERE tournament_id = ? AND paid = ?
		ORDER BY created_at ASC, id ASC
	`
)

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

func (s *TeamStore) CreateTeam(ctx context.Context, team *bracket.Team) error {
	_, err := s.db.NamedExecContext(ctx, createTeamQuery, team)
	return err
}

func (s *TeamStore) GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	err := s.db.GetContext(ctx, &team, s.db.Rebind("SELECT "+teamColumns+" FROM teams WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamStore) SetPaid(ctx context.Context, id uuid.UUID, paid bool) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE teams SET paid = ? WHERE id = ?"), paid, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result)
}

func (s *TeamStore) ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := s.db.SelectContext(ctx, &teams, s.db.Rebind("SELECT "+teamColumns+" FROM teams WHERE tournament_id = ? ORDER BY created_at ASC, id ASC"), tournamentID)
	return teams, err
}

func (s *TeamStore) ListPaidEntrants(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Entrant, error) {
	var entrants []bracket.Entrant
	err := s.db.SelectContext(ctx, &entrants, s.db.Rebind(listPaidEntrantsQuery), tournamentID, true)
	return entrants, err
}
