package service

import (
	"context"
	"strings"
	"testing"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, err := env.service.CreateTournament(ctx, "  Pub Quiz Cup  ")
	require.NoError(t, err)
	assert.Equal(t, "Pub Quiz Cup", tournament.Title)
	assert.Equal(t, bracket.TournamentDraft, tournament.Status)

	_, err = env.service.CreateTournament(ctx, "   ")
	assert.ErrorIs(t, err, bracket.ErrInvalidInput)

	_, err = env.service.GetTournament(ctx, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrUnknownTournament)

	tournaments, err := env.service.ListTournaments(ctx)
	require.NoError(t, err)
	require.Len(t, tournaments, 1)
	assert.Equal(t, tournament.ID, tournaments[0].ID)
}

func TestRegisterTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament, err := env.service.CreateTournament(ctx, "Pub Quiz Cup")
	require.NoError(t, err)

	tests := []struct {
		name     string
		team     string
		captain  string
		wantErr  error
		wantName string
	}{
		{name: "valid", team: " Quizzly Bears ", captain: "Sam", wantName: "Quizzly Bears"},
		{name: "no captain", team: "Les Quizerables", wantName: "Les Quizerables"},
		{name: "blank name", team: " ", wantErr: bracket.ErrInvalidInput},
		{name: "name too long", team: strings.Repeat("q", 51), wantErr: bracket.ErrInvalidInput},
		{name: "captain too long", team: "Fine", captain: strings.Repeat("c", 51), wantErr: bracket.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team, err := env.service.RegisterTeam(ctx, tournament.ID, tt.team, tt.captain)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, team.TeamName)
			assert.False(t, team.Paid)
		})
	}

	teams, err := env.service.ListTeams(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	_, err = env.service.RegisterTeam(ctx, uuid.New(), "Nowhere", "")
	assert.ErrorIs(t, err, bracket.ErrUnknownTournament)
}

func TestRegisterTeam_ClosedAfterGeneration(t *testing.T) {
	env := newTestEnv(t)
	tournamentID, entrants := env.newTournament(t, 16, 16)
	env.generate(t, tournamentID, entrants)

	_, err := env.service.RegisterTeam(context.Background(), tournamentID, "Latecomers", "")
	require.ErrorIs(t, err, bracket.ErrAlreadyFinalized)
	assert.Contains(t, err.Error(), "registration is closed")
}

func TestSetPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournamentID, _ := env.newTournament(t, 3, 0)

	teams, err := env.service.ListTeams(ctx, tournamentID)
	require.NoError(t, err)

	team, err := env.service.SetPaid(ctx, teams[1].ID, true)
	require.NoError(t, err)
	assert.True(t, team.Paid)

	paid, err := env.teams.ListPaidEntrants(ctx, tournamentID)
	require.NoError(t, err)
	assert.Equal(t, []bracket.Entrant{team.Entrant()}, paid)

	team, err = env.service.SetPaid(ctx, teams[1].ID, false)
	require.NoError(t, err)
	assert.False(t, team.Paid)

	_, err = env.service.SetPaid(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, bracket.ErrUnknownTeam)
}

func TestListChampions_Limit(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.ListChampions(context.Background(), 0)
	assert.ErrorIs(t, err, bracket.ErrInvalidInput)

	_, err = env.service.ListChampions(context.Background(), 1000)
	assert.ErrorIs(t, err, bracket.ErrInvalidInput)

	champions, err := env.service.ListChampions(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, champions)
}
