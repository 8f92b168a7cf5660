package store

import (
	"context"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchStore struct {
	db *sqlx.DB
}

const (
	matchColumns = `id, tournament_id, stage, bracket_side, match_order,
		slot_a_entrant_id, slot_a_bye, slot_b_entrant_id, slot_b_bye,
		winner, source_match_a, source_match_b, created_at`

	// The unique key makes a second creation of the same stage a no-op, even
	// when two callers race past their existence checks.
	insertMatchIfAbsentQuery = `
		INSERT INTO matches (tournament_id, stage, bracket_side, match_order,
			slot_a_entrant_id, slot_a_bye, slot_b_entrant_id, slot_b_bye,
			winner, source_match_a, source_match_b)
		VALUES (:tournament_id, :stage, :bracket_side, :match_order,
			:slot_a_entrant_id, :slot_a_bye, :slot_b_entrant_id, :slot_b_bye,
			:winner, :source_match_a, :source_match_b)
		ON CONFLICT (tournament_id, stage, bracket_side, match_order) DO NOTHING
		RETURNING id
	`
)

type MatchFilter struct {
	TournamentID uuid.UUID
	Stages       []bracket.Stage
	Side         bracket.BracketSide
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

// InsertIfAbsent writes the matches in one transaction and returns the ones
// that were actually created, with their assigned ids.
func (s *MatchStore) InsertIfAbsent(ctx context.Context, matches []bracket.Match) ([]bracket.Match, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var created []bracket.Match
	for _, m := range matches {
		inserted, err := insertMatchIfAbsent(ctx, tx, &m)
		if err != nil {
			return nil, err
		}
		if inserted {
			created = append(created, m)
		}
	}

	return created, tx.Commit()
}

func insertMatchIfAbsent(ctx context.Context, tx *sqlx.Tx, m *bracket.Match) (bool, error) {
	rows, err := sqlx.NamedQueryContext(ctx, tx, insertMatchIfAbsentQuery, m)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return false, rows.Err()
	}
	if err := rows.Scan(&m.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MatchStore) GetMatch(ctx context.Context, id int64) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, s.db.Rebind("SELECT "+matchColumns+" FROM matches WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *MatchStore) SetWinner(ctx context.Context, id int64, winner bracket.Slot) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE matches SET winner = ? WHERE id = ?"), winner, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result)
}

func (s *MatchStore) ListMatches(ctx context.Context, filter MatchFilter) ([]bracket.Match, error) {
	q := builder.Select(matchColumns).
		From("matches").
		Where(sq.Eq{"tournament_id": filter.TournamentID.String()})
	if len(filter.Stages) > 0 {
		q = q.Where(sq.Eq{"stage": filter.Stages})
	}
	if filter.Side != "" {
		q = q.Where(sq.Eq{"bracket_side": filter.Side})
	}
	query, args, err := q.OrderBy("match_order ASC", "id ASC").ToSql()
	if err != nil {
		return nil, err
	}

	var matches []bracket.Match
	err = s.db.SelectContext(ctx, &matches, s.db.Rebind(query), args...)
	return matches, err
}

func (s *MatchStore) ListByStage(ctx context.Context, tournamentID uuid.UUID, stage bracket.Stage) ([]bracket.Match, error) {
	return s.ListMatches(ctx, MatchFilter{TournamentID: tournamentID, Stages: []bracket.Stage{stage}})
}

func (s *MatchStore) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return s.ListMatches(ctx, MatchFilter{TournamentID: tournamentID})
}

// ResetStage deletes the derived stages and clears the winners of stage in a
// single transaction. It returns the number of deleted matches.
func (s *MatchStore) ResetStage(ctx context.Context, tournamentID uuid.UUID, stage bracket.Stage, derived []bracket.Stage) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var deleted int64
	if len(derived) > 0 {
		query, args, err := builder.Delete("matches").
			Where(sq.Eq{"tournament_id": tournamentID.String(), "stage": derived}).
			ToSql()
		if err != nil {
			return 0, err
		}
		result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return 0, err
		}
		if deleted, err = result.RowsAffected(); err != nil {
			return 0, err
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE matches SET winner = ? WHERE tournament_id = ? AND stage = ?"),
		bracket.SlotNone, tournamentID, stage); err != nil {
		return 0, err
	}

	return deleted, tx.Commit()
}

func (s *MatchStore) DeleteByTournament(ctx context.Context, tournamentID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM matches WHERE tournament_id = ?"), tournamentID)
	return err
}
