package store

import (
	"context"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type StandingStore struct {
	db *sqlx.DB
}

const (
	insertStandingQuery = `
		INSERT INTO standings (tournament_id, team_id, position, week, year)
		VALUES (:tournament_id, :team_id, :position, :week, :year)
		ON CONFLICT (tournament_id, position) DO NOTHING
	`
	standingWithTeamQuery = `
		SELECT s.id, s.tournament_id, s.team_id, s.position, s.week, s.year, s.created_at,
			COALESCE(t.team_name, '') AS team_name
		FROM standings s
		LEFT JOIN teams t ON t.id = s.team_id
	`
)

func NewStandingStore(db *sqlx.DB) *StandingStore {
	return &StandingStore{db: db}
}

// RecordStandings appends the podium for a tournament. It reports false when
// the standings already existed and nothing was written.
func (s *StandingStore) RecordStandings(ctx context.Context, standings bracket.Standings) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var written int64
	for _, row := range standings.Rows() {
		result, err := tx.NamedExecContext(ctx, insertStandingQuery, row)
		if err != nil {
			return false, err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return false, err
		}
		written += n
	}

	return written > 0, tx.Commit()
}

func (s *StandingStore) GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Standing, error) {
	var standings []bracket.Standing
	err := s.db.SelectContext(ctx, &standings, s.db.Rebind(standingWithTeamQuery+" WHERE s.tournament_id = ? ORDER BY s.position ASC"), tournamentID)
	return standings, err
}

// ListChampions returns the most recent podium rows across all tournaments.
func (s *StandingStore) ListChampions(ctx context.Context, limit int) ([]bracket.Standing, error) {
	var standings []bracket.Standing
	err := s.db.SelectContext(ctx, &standings, s.db.Rebind(standingWithTeamQuery+" ORDER BY s.year DESC, s.week DESC, s.tournament_id ASC, s.position ASC LIMIT ?"), limit)
	return standings, err
}

func (s *StandingStore) DeleteByTournament(ctx context.Context, tournamentID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM standings WHERE tournament_id = ?"), tournamentID)
	return err
}
