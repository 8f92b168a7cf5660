package bracket

import (
	"fmt"
	"slices"
)

// EntrantCount is the only bracket size the topology supports.
const EntrantCount = 16

type Stage string

const (
	StageR1        Stage = "r1"
	StageR2        Stage = "r2"
	StageLBR2      Stage = "lb_r2"
	StageR3        Stage = "r3"
	StageLBR2Final Stage = "lb_r2_final"
	StageLBR3      Stage = "lb_r3"
	StageLBFinal   Stage = "lb_final"
	StageR4        Stage = "r4"
	StageUpperSemi Stage = "upper_semi"
	StageFinal     Stage = "final"
)

type BracketSide string

const (
	UpperSide BracketSide = "upper"
	LowerSide BracketSide = "lower"
)

// Outcome selects which participant of a feeder match moves on.
type Outcome string

const (
	Winners Outcome = "winners"
	Losers  Outcome = "losers"
)

type Feed struct {
	Stage   Stage
	Outcome Outcome
}

// StageDef describes one row of the double elimination table. The seats of a
// stage are the outputs of its feeds concatenated in order, then paired
// consecutively: seat 2k and 2k+1 meet in match k+1.
type StageDef struct {
	Stage   Stage
	Side    BracketSide
	Matches int
	Feeds   []Feed
}

var topology = []StageDef{
	{Stage: StageR1, Side: UpperSide, Matches: 8},
	{Stage: StageR2, Side: UpperSide, Matches: 4, Feeds: []Feed{{StageR1, Winners}}},
	{Stage: StageLBR2, Side: LowerSide, Matches: 2, Feeds: []Feed{{StageR2, Losers}}},
	{Stage: StageR3, Side: UpperSide, Matches: 2, Feeds: []Feed{{StageR2, Winners}}},
	{Stage: StageLBR2Final, Side: LowerSide, Matches: 1, Feeds: []Feed{{StageLBR2, Winners}}},
	{Stage: StageLBR3, Side: LowerSide, Matches: 1, Feeds: []Feed{{StageR3, Losers}}},
	{Stage: StageLBFinal, Side: LowerSide, Matches: 1, Feeds: []Feed{{StageLBR2Final, Winners}, {StageLBR3, Winners}}},
	{Stage: StageR4, Side: UpperSide, Matches: 1, Feeds: []Feed{{StageR3, Winners}}},
	{Stage: StageUpperSemi, Side: UpperSide, Matches: 1, Feeds: []Feed{{StageR4, Losers}, {StageLBFinal, Winners}}},
	{Stage: StageFinal, Side: UpperSide, Matches: 1, Feeds: []Feed{{StageR4, Winners}, {StageUpperSemi, Winners}}},
}

// Stages returns every stage in topology order.
func Stages() []Stage {
	stages := make([]Stage, 0, len(topology))
	for _, def := range topology {
		stages = append(stages, def.Stage)
	}
	return stages
}

func Lookup(stage Stage) (StageDef, bool) {
	for _, def := range topology {
		if def.Stage == stage {
			return def, true
		}
	}
	return StageDef{}, false
}

func ParseStage(s string) (Stage, error) {
	if _, ok := Lookup(Stage(s)); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return Stage(s), nil
}

// Order is the position of the stage in the topology, or -1.
func (s Stage) Order() int {
	return slices.Index(Stages(), s)
}

func (s Stage) Side() BracketSide {
	def, _ := Lookup(s)
	return def.Side
}

// Dependencies lists the distinct stages that feed this one. Every one of
// them must be complete before the stage can be built.
func (d StageDef) Dependencies() []Stage {
	var deps []Stage
	for _, f := range d.Feeds {
		if !slices.Contains(deps, f.Stage) {
			deps = append(deps, f.Stage)
		}
	}
	return deps
}

// Dependents returns every stage derived from s, directly or transitively,
// in topology order.
func Dependents(s Stage) []Stage {
	reached := map[Stage]bool{s: true}
	var out []Stage
	// topology is ordered so a single forward pass sees feeders first
	for _, def := range topology {
		for _, dep := range def.Dependencies() {
			if reached[dep] && !reached[def.Stage] {
				reached[def.Stage] = true
				out = append(out, def.Stage)
			}
		}
	}
	return out
}

// DirectDependents returns the stages fed straight from s.
func DirectDependents(s Stage) []Stage {
	var out []Stage
	for _, def := range topology {
		if slices.Contains(def.Dependencies(), s) {
			out = append(out, def.Stage)
		}
	}
	return out
}
