package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Slot string

const (
	SlotNone Slot = ""
	SlotA    Slot = "a"
	SlotB    Slot = "b"
)

func (s Slot) Valid() bool {
	return s == SlotA || s == SlotB
}

func (s Slot) Other() Slot {
	switch s {
	case SlotA:
		return SlotB
	case SlotB:
		return SlotA
	}
	return SlotNone
}

// Seat is what occupies one side of a match: an entrant, a bye, or nothing
// yet when both are unset.
type Seat struct {
	EntrantID   *uuid.UUID
	Bye         bool
	SourceMatch *int64
}

func (s Seat) Empty() bool {
	return s.EntrantID == nil && !s.Bye
}

type Match struct {
	ID           int64     `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	Stage       Stage       `db:"stage" json:"stage"`
	BracketSide BracketSide `db:"bracket_side" json:"bracket_side"`
	MatchOrder  int         `db:"match_order" json:"match_order"`

	SlotAEntrantID *uuid.UUID `db:"slot_a_entrant_id" json:"slot_a_entrant_id,omitempty"`
	SlotABye       bool       `db:"slot_a_bye" json:"slot_a_bye"`
	SlotBEntrantID *uuid.UUID `db:"slot_b_entrant_id" json:"slot_b_entrant_id,omitempty"`
	SlotBBye       bool       `db:"slot_b_bye" json:"slot_b_bye"`

	Winner Slot `db:"winner" json:"winner"`

	// Lineage only, nothing reads these to decide outcomes
	SourceMatchA *int64 `db:"source_match_a" json:"source_match_a,omitempty"`
	SourceMatchB *int64 `db:"source_match_b" json:"source_match_b,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (m *Match) Seat(slot Slot) Seat {
	switch slot {
	case SlotA:
		return Seat{EntrantID: m.SlotAEntrantID, Bye: m.SlotABye, SourceMatch: m.SourceMatchA}
	case SlotB:
		return Seat{EntrantID: m.SlotBEntrantID, Bye: m.SlotBBye, SourceMatch: m.SourceMatchB}
	}
	return Seat{}
}

func (m *Match) setSeat(slot Slot, seat Seat) {
	switch slot {
	case SlotA:
		m.SlotAEntrantID, m.SlotABye, m.SourceMatchA = seat.EntrantID, seat.Bye, seat.SourceMatch
	case SlotB:
		m.SlotBEntrantID, m.SlotBBye, m.SourceMatchB = seat.EntrantID, seat.Bye, seat.SourceMatch
	}
}

func (m *Match) EntrantID(slot Slot) *uuid.UUID {
	return m.Seat(slot).EntrantID
}

// Playable reports whether both slots hold concrete entrants, which is the
// only state in which a result may be recorded.
func (m *Match) Playable() bool {
	return m.SlotAEntrantID != nil && m.SlotBEntrantID != nil
}

// Resolved reports whether the match has an outcome, either recorded or
// granted by a bye.
func (m *Match) Resolved() bool {
	if m.Winner.Valid() {
		return true
	}
	return !m.Playable() && (m.SlotABye || m.SlotBBye)
}

// Output returns the seat that leaves the match for the given outcome. Byes
// propagate: the loser of a bye match is itself a bye.
func (m *Match) Output(outcome Outcome) (Seat, bool) {
	if !m.Resolved() {
		return Seat{}, false
	}
	id := m.ID
	winner := m.Winner
	if !winner.Valid() {
		winner = SlotA
		if m.SlotABye {
			winner = SlotB
		}
	}
	seat := m.Seat(winner)
	if outcome == Losers {
		seat = m.Seat(winner.Other())
	}
	return Seat{EntrantID: seat.EntrantID, Bye: seat.EntrantID == nil, SourceMatch: &id}, true
}

func (m *Match) WinnerID() *uuid.UUID {
	seat, ok := m.Output(Winners)
	if !ok {
		return nil
	}
	return seat.EntrantID
}

func (m *Match) LoserID() *uuid.UUID {
	seat, ok := m.Output(Losers)
	if !ok {
		return nil
	}
	return seat.EntrantID
}
