package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/AdamBeresnev/venue-bracket/internal/cache"
	appdb "github.com/AdamBeresnev/venue-bracket/internal/db"
	"github.com/AdamBeresnev/venue-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 6, 21, 30, 0, 0, time.UTC)

// keepOrder leaves entrants in the order given so pairings are predictable.
func keepOrder(int, func(i, j int)) {}

type testEnv struct {
	db          *sqlx.DB
	matches     *store.MatchStore
	teams       *store.TeamStore
	standings   *store.StandingStore
	tournaments *store.TournamentStore
	engine      *BracketService
	service     *TournamentService
	cache       *cache.Memory
}

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := appdb.Open(appdb.DriverSQLite, "file::memory:", time.Second)
	require.NoError(t, err, "Failed to connect to in-memory DB")
	require.NoError(t, appdb.RunMigrations(db), "Failed to apply migrations")

	t.Cleanup(func() { db.Close() })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	env := &testEnv{
		db:          db,
		matches:     store.NewMatchStore(db),
		teams:       store.NewTeamStore(db),
		standings:   store.NewStandingStore(db),
		tournaments: store.NewTournamentStore(db),
		cache:       cache.NewMemory(),
	}
	env.engine = NewBracketService(env.matches, env.teams, env.standings, env.tournaments, Options{
		StoreTimeout: 5 * time.Second,
		Now:          func() time.Time { return testNow },
		Shuffle:      keepOrder,
		Cache:        env.cache,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	env.service = NewTournamentService(db, env.tournaments, env.teams, env.standings, env.engine, 5*time.Second)
	return env
}

// newTournament creates a tournament with n registered teams, the first paid
// of them marked as paid. The entrants come back in registration order.
func (env *testEnv) newTournament(t *testing.T, n, paid int) (uuid.UUID, []bracket.Entrant) {
	t.Helper()
	ctx := context.Background()

	tournament, err := env.service.CreateTournament(ctx, "Thursday Quiz League")
	require.NoError(t, err)

	entrants := make([]bracket.Entrant, 0, n)
	for i := 1; i <= n; i++ {
		team, err := env.service.RegisterTeam(ctx, tournament.ID, fmt.Sprintf("E%d", i), "")
		require.NoError(t, err)
		if i <= paid {
			_, err = env.service.SetPaid(ctx, team.ID, true)
			require.NoError(t, err)
		}
		entrants = append(entrants, team.Entrant())
	}
	return tournament.ID, entrants
}

func (env *testEnv) generate(t *testing.T, tournamentID uuid.UUID, entrants []bracket.Entrant) []bracket.Match {
	t.Helper()
	r1, err := env.engine.GenerateBracket(context.Background(), tournamentID, entrants, false)
	require.NoError(t, err)
	require.Len(t, r1, 8)
	return r1
}

// decide records a winner on every undecided playable match. Matches that
// already have a stored winner are skipped, a repeat would clear them.
func (env *testEnv) decide(t *testing.T, matches []bracket.Match, pick func(bracket.Match) bracket.Slot) {
	t.Helper()
	for _, m := range matches {
		current, err := env.matches.GetMatch(context.Background(), m.ID)
		require.NoError(t, err)
		if !current.Playable() || current.Winner.Valid() {
			continue
		}
		_, err = env.engine.RecordWinner(context.Background(), m.ID, pick(*current))
		require.NoError(t, err)
	}
}

// playThrough advances every stage after the first round, deciding each with
// pick, until the final has a winner.
func (env *testEnv) playThrough(t *testing.T, tournamentID uuid.UUID, r1 []bracket.Match, pick func(bracket.Match) bracket.Slot) map[bracket.Stage][]bracket.Match {
	t.Helper()

	played := map[bracket.Stage][]bracket.Match{bracket.StageR1: r1}
	env.decide(t, r1, pick)
	for _, stage := range bracket.Stages()[1:] {
		matches, err := env.engine.AdvanceStage(context.Background(), tournamentID, stage)
		require.NoError(t, err, "advance %s", stage)
		env.decide(t, matches, pick)
		played[stage] = matches
	}
	return played
}

func slotA(bracket.Match) bracket.Slot { return bracket.SlotA }

func names(entrants []bracket.Entrant) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(entrants))
	for _, e := range entrants {
		out[e.ID] = e.DisplayName
	}
	return out
}

func pairing(t *testing.T, byID map[uuid.UUID]string, m bracket.Match) [2]string {
	t.Helper()
	require.NotNil(t, m.SlotAEntrantID, "match %d slot a", m.MatchOrder)
	require.NotNil(t, m.SlotBEntrantID, "match %d slot b", m.MatchOrder)
	return [2]string{byID[*m.SlotAEntrantID], byID[*m.SlotBEntrantID]}
}
