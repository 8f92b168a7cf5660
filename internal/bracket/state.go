package bracket

// State is a node of the tournament state machine: unseeded, the most
// advanced stage created so far, or complete.
type State string

const (
	StateUnseeded State = "unseeded"
	StateComplete State = "complete"
)

func CurrentState(byStage map[Stage][]Match, finalized bool) State {
	if finalized {
		return StateComplete
	}
	state := StateUnseeded
	for _, s := range Stages() {
		if len(byStage[s]) > 0 {
			state = State(s)
		}
	}
	return state
}

// ReadyStages lists the stages that do not exist yet but whose feeders are all
// complete, in topology order.
func ReadyStages(byStage map[Stage][]Match) []Stage {
	var ready []Stage
	for _, def := range topology {
		if len(def.Feeds) == 0 || len(byStage[def.Stage]) > 0 {
			continue
		}
		ok := true
		for _, dep := range def.Dependencies() {
			if checkFeeder(def.Stage, dep, byStage[dep]) != nil {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, def.Stage)
		}
	}
	return ready
}
