package store

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerTeams(t *testing.T, store *TeamStore, tournamentID uuid.UUID, names ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		team := &bracket.Team{ID: uuid.New(), TournamentID: tournamentID, TeamName: name, Paid: true}
		require.NoError(t, store.CreateTeam(context.Background(), team))
		ids = append(ids, team.ID)
	}
	return ids
}

func TestRecordStandings(t *testing.T) {
	db := setupTestDB(t)
	store := NewStandingStore(db)
	tournamentID := createTestTournament(t, db)
	ids := registerTeams(t, NewTeamStore(db), tournamentID, "Gold", "Silver", "Bronze")

	standings := bracket.Standings{
		TournamentID:     tournamentID,
		ChampionID:       ids[0],
		FirstRunnerUpID:  ids[1],
		SecondRunnerUpID: ids[2],
		Week:             12,
		Year:             2026,
	}

	created, err := store.RecordStandings(context.Background(), standings)
	require.NoError(t, err)
	assert.True(t, created)

	// A repeat must leave the history untouched.
	standings.ChampionID = ids[2]
	created, err = store.RecordStandings(context.Background(), standings)
	require.NoError(t, err)
	assert.False(t, created)

	rows, err := store.GetStandings(context.Background(), tournamentID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, bracket.Champion, rows[0].Position)
	assert.Equal(t, ids[0], rows[0].TeamID)
	assert.Equal(t, "Gold", rows[0].TeamName)
	assert.Equal(t, "Silver", rows[1].TeamName)
	assert.Equal(t, "Bronze", rows[2].TeamName)
	assert.Equal(t, 12, rows[2].Week)
	assert.Equal(t, 2026, rows[2].Year)
}

func TestListChampions(t *testing.T) {
	db := setupTestDB(t)
	store := NewStandingStore(db)
	teams := NewTeamStore(db)

	for week := 1; week <= 3; week++ {
		tournamentID := createTestTournament(t, db)
		ids := registerTeams(t, teams, tournamentID, "A", "B", "C")
		_, err := store.RecordStandings(context.Background(), bracket.Standings{
			TournamentID:     tournamentID,
			ChampionID:       ids[0],
			FirstRunnerUpID:  ids[1],
			SecondRunnerUpID: ids[2],
			Week:             week,
			Year:             2026,
		})
		require.NoError(t, err)
	}

	rows, err := store.ListChampions(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, 3, rows[0].Week)
	assert.Equal(t, 3, rows[2].Week)
	assert.Equal(t, 2, rows[3].Week)
}

func TestDeleteStandingsByTournament(t *testing.T) {
	db := setupTestDB(t)
	store := NewStandingStore(db)
	tournamentID := createTestTournament(t, db)
	ids := registerTeams(t, NewTeamStore(db), tournamentID, "A", "B", "C")

	_, err := store.RecordStandings(context.Background(), bracket.Standings{
		TournamentID: tournamentID, ChampionID: ids[0], FirstRunnerUpID: ids[1], SecondRunnerUpID: ids[2], Week: 1, Year: 2026,
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteByTournament(context.Background(), tournamentID))

	rows, err := store.GetStandings(context.Background(), tournamentID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
