package bracket

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AdamBeresnev/venue-bracket/internal/utils"
	"github.com/google/uuid"
)

// Shuffler permutes n elements through swap, matching rand.Shuffle.
type Shuffler func(n int, swap func(i, j int))

// SeedFirstRound shuffles the entrants and pairs them consecutively into the
// eight upper bracket opening matches.
func SeedFirstRound(tournamentID uuid.UUID, entrants []Entrant, shuffle Shuffler) ([]Match, error) {
	if len(entrants) != EntrantCount {
		return nil, fmt.Errorf("%w: need exactly %d paid entrants, found %d", ErrInvalidEntrantCount, EntrantCount, len(entrants))
	}
	seen := make(map[uuid.UUID]bool, len(entrants))
	for _, e := range entrants {
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: entrant %s is listed more than once", ErrInvalidEntrantCount, e.ID)
		}
		seen[e.ID] = true
	}

	shuffled := slices.Clone(entrants)
	if shuffle != nil {
		shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
	}

	def, _ := Lookup(StageR1)
	matches := make([]Match, 0, def.Matches)
	for i := 0; i < len(shuffled); i += 2 {
		matches = append(matches, Match{
			TournamentID:   tournamentID,
			Stage:          def.Stage,
			BracketSide:    def.Side,
			MatchOrder:     i/2 + 1,
			SlotAEntrantID: utils.Ptr(shuffled[i].ID),
			SlotBEntrantID: utils.Ptr(shuffled[i+1].ID),
		})
	}
	return matches, nil
}

// DeriveStage builds the matches of def from its completed feeder stages.
// Feeder outputs keep bracket order, they are never re-shuffled.
func DeriveStage(tournamentID uuid.UUID, def StageDef, feeders map[Stage][]Match) ([]Match, error) {
	if len(def.Feeds) == 0 {
		return nil, fmt.Errorf("%w: %s is seeded by bracket generation, not derived", ErrUnknownStage, def.Stage)
	}

	for _, dep := range def.Dependencies() {
		if err := checkFeeder(def.Stage, dep, feeders[dep]); err != nil {
			return nil, err
		}
	}

	var seats []Seat
	for _, feed := range def.Feeds {
		for _, m := range SortByOrder(feeders[feed.Stage]) {
			seat, _ := m.Output(feed.Outcome)
			seats = append(seats, seat)
		}
	}
	if len(seats) != 2*def.Matches {
		return nil, fmt.Errorf("%w: %s expects %d entrants from its feeders, got %d", ErrCorruptStage, def.Stage, 2*def.Matches, len(seats))
	}

	matches := make([]Match, 0, def.Matches)
	for k := 0; k < def.Matches; k++ {
		m := Match{
			TournamentID: tournamentID,
			Stage:        def.Stage,
			BracketSide:  def.Side,
			MatchOrder:   k + 1,
		}
		m.setSeat(SlotA, seats[2*k])
		m.setSeat(SlotB, seats[2*k+1])
		matches = append(matches, m)
	}
	return matches, nil
}

func checkFeeder(target, dep Stage, matches []Match) error {
	if len(matches) == 0 {
		return fmt.Errorf("%w: %s needs %s, which has not been created", ErrIncompleteStage, target, dep)
	}
	depDef, _ := Lookup(dep)
	if err := CheckStage(depDef, matches); err != nil {
		return err
	}
	if n := Unresolved(matches); n > 0 {
		return fmt.Errorf("%w: %s needs %s, which has %d of %d matches without a winner", ErrIncompleteStage, target, dep, n, len(matches))
	}
	return nil
}

// CheckStage verifies the stored shape of a stage: the expected match count,
// one match per order, and no entrant seated twice.
func CheckStage(def StageDef, matches []Match) error {
	if len(matches) != def.Matches {
		return fmt.Errorf("%w: %s has %d matches, expected %d", ErrCorruptStage, def.Stage, len(matches), def.Matches)
	}
	orders := make(map[int]bool, len(matches))
	entrants := make(map[uuid.UUID]bool, 2*len(matches))
	for _, m := range matches {
		if m.Stage != def.Stage || m.BracketSide != def.Side {
			return fmt.Errorf("%w: match %d is %s/%s, expected %s/%s", ErrCorruptStage, m.ID, m.Stage, m.BracketSide, def.Stage, def.Side)
		}
		if m.MatchOrder < 1 || m.MatchOrder > def.Matches || orders[m.MatchOrder] {
			return fmt.Errorf("%w: %s has an invalid or repeated match order %d", ErrCorruptStage, def.Stage, m.MatchOrder)
		}
		orders[m.MatchOrder] = true
		for _, slot := range []Slot{SlotA, SlotB} {
			id := m.EntrantID(slot)
			if id == nil {
				continue
			}
			if entrants[*id] {
				return fmt.Errorf("%w: entrant %s appears twice in %s", ErrCorruptStage, *id, def.Stage)
			}
			entrants[*id] = true
		}
	}
	return nil
}

// Unresolved counts matches that still need a recorded winner.
func Unresolved(matches []Match) int {
	n := 0
	for i := range matches {
		if !matches[i].Resolved() {
			n++
		}
	}
	return n
}

func SortByOrder(matches []Match) []Match {
	sorted := slices.Clone(matches)
	slices.SortFunc(sorted, func(a, b Match) int {
		return cmp.Compare(a.MatchOrder, b.MatchOrder)
	})
	return sorted
}

func GroupByStage(matches []Match) map[Stage][]Match {
	grouped := make(map[Stage][]Match)
	for _, m := range matches {
		grouped[m.Stage] = append(grouped[m.Stage], m)
	}
	for stage, ms := range grouped {
		grouped[stage] = SortByOrder(ms)
	}
	return grouped
}
