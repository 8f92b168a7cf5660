package bracket

import (
	"time"

	"github.com/google/uuid"
)

// Team is a registration for a tournament. Only paid teams become entrants.
type Team struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	TeamName     string    `db:"team_name" json:"team_name"`
	Captain      string    `db:"captain" json:"captain"`
	Paid         bool      `db:"paid" json:"paid"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Entrant struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
}

func (t Team) Entrant() Entrant {
	return Entrant{ID: t.ID, DisplayName: t.TeamName}
}
