package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Position int

const (
	Champion       Position = 1
	FirstRunnerUp  Position = 2
	SecondRunnerUp Position = 3
)

func (p Position) String() string {
	switch p {
	case Champion:
		return "champion"
	case FirstRunnerUp:
		return "first runner-up"
	case SecondRunnerUp:
		return "second runner-up"
	}
	return fmt.Sprintf("position %d", int(p))
}

// Standing is one stored row of the champions history.
type Standing struct {
	ID           int64     `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	TeamID       uuid.UUID `db:"team_id" json:"team_id"`
	Position     Position  `db:"position" json:"position"`
	Week         int       `db:"week" json:"week"`
	Year         int       `db:"year" json:"year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	TeamName string `db:"team_name" json:"team_name"`
}

type Standings struct {
	TournamentID     uuid.UUID
	ChampionID       uuid.UUID
	FirstRunnerUpID  uuid.UUID
	SecondRunnerUpID uuid.UUID
	Week             int
	Year             int
}

// ComputeStandings reads the podium off the last two matches. The second
// runner-up is whoever lost the upper semi, eliminated before the final.
func ComputeStandings(tournamentID uuid.UUID, final, upperSemi Match, at time.Time) (Standings, error) {
	if final.Stage != StageFinal || upperSemi.Stage != StageUpperSemi {
		return Standings{}, fmt.Errorf("%w: standings need the final and the upper semi, got %s and %s", ErrCorruptStage, final.Stage, upperSemi.Stage)
	}
	champion, runnerUp := final.WinnerID(), final.LoserID()
	if champion == nil || runnerUp == nil {
		return Standings{}, fmt.Errorf("%w: the final has no recorded winner", ErrIncompleteStage)
	}
	third := upperSemi.LoserID()
	if third == nil {
		return Standings{}, fmt.Errorf("%w: the upper semi has no recorded winner", ErrIncompleteStage)
	}

	year, week := at.ISOWeek()
	return Standings{
		TournamentID:     tournamentID,
		ChampionID:       *champion,
		FirstRunnerUpID:  *runnerUp,
		SecondRunnerUpID: *third,
		Week:             week,
		Year:             year,
	}, nil
}

func (s Standings) Rows() []Standing {
	row := func(id uuid.UUID, p Position) Standing {
		return Standing{TournamentID: s.TournamentID, TeamID: id, Position: p, Week: s.Week, Year: s.Year}
	}
	return []Standing{
		row(s.ChampionID, Champion),
		row(s.FirstRunnerUpID, FirstRunnerUp),
		row(s.SecondRunnerUpID, SecondRunnerUp),
	}
}
