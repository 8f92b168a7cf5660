package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	appdb "github.com/AdamBeresnev/venue-bracket/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := appdb.Open(appdb.DriverSQLite, "file::memory:", time.Second)
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, appdb.RunMigrations(db), "Failed to apply migrations")

	t.Cleanup(func() { db.Close() })
	return db
}

func createTestTournament(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()

	tournament := &bracket.Tournament{
		ID:     uuid.New(),
		Title:  "Friday Night Cup",
		Status: bracket.TournamentDraft,
	}

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, NewTournamentStore(db).CreateTournament(context.Background(), tx, tournament))
	require.NoError(t, tx.Commit())

	return tournament.ID
}

func TestCreateTournament(t *testing.T) {
	db := setupTestDB(t)
	store := NewTournamentStore(db)

	tournament := &bracket.Tournament{
		ID:     uuid.New(),
		Title:  "Test Tournament",
		Status: bracket.TournamentDraft,
	}

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	err = store.CreateTournament(context.Background(), tx, tournament)
	require.NoError(t, err)

	err = tx.Commit()
	require.NoError(t, err)

	fetched, err := store.GetTournament(context.Background(), tournament.ID)
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.Title, fetched.Title)
	assert.Equal(t, bracket.TournamentDraft, fetched.Status)
	assert.WithinDuration(t, time.Now().UTC(), fetched.CreatedAt, time.Minute)
}

func TestCreateTournament_RolledBack(t *testing.T) {
	db := setupTestDB(t)
	store := NewTournamentStore(db)

	tournament := &bracket.Tournament{ID: uuid.New(), Title: "Never Saved", Status: bracket.TournamentDraft}

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateTournament(context.Background(), tx, tournament))
	require.NoError(t, tx.Rollback())

	_, err = store.GetTournament(context.Background(), tournament.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateTournamentStatus(t *testing.T) {
	db := setupTestDB(t)
	store := NewTournamentStore(db)
	id := createTestTournament(t, db)

	require.NoError(t, store.UpdateStatus(context.Background(), id, bracket.TournamentStarted))

	fetched, err := store.GetTournament(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentStarted, fetched.Status)

	err = store.UpdateStatus(context.Background(), uuid.New(), bracket.TournamentCompleted)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListTournaments(t *testing.T) {
	db := setupTestDB(t)
	store := NewTournamentStore(db)

	first := createTestTournament(t, db)
	second := createTestTournament(t, db)

	tournaments, err := store.ListTournaments(context.Background())
	require.NoError(t, err)
	require.Len(t, tournaments, 2)

	ids := []uuid.UUID{tournaments[0].ID, tournaments[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{first, second}, ids)
}
