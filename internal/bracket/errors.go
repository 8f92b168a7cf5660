package bracket

import "errors"

// Operations wrap these with a message naming the violated precondition,
// callers classify with errors.Is.
var (
	ErrInvalidEntrantCount = errors.New("invalid entrant count")
	ErrIncompleteStage     = errors.New("incomplete stage")
	ErrUnknownMatch        = errors.New("unknown match")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrAlreadyFinalized    = errors.New("already finalized")

	ErrInvalidWinner     = errors.New("invalid winner")
	ErrStageLocked       = errors.New("stage locked")
	ErrUnknownStage      = errors.New("unknown stage")
	ErrUnknownTournament = errors.New("unknown tournament")
	ErrCorruptStage      = errors.New("corrupt stage")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownTeam       = errors.New("unknown team")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidEntrantCount, "invalid_entrant_count"},
	{ErrIncompleteStage, "incomplete_stage"},
	{ErrUnknownMatch, "unknown_match"},
	{ErrStorageUnavailable, "storage_unavailable"},
	{ErrAlreadyFinalized, "already_finalized"},
	{ErrInvalidWinner, "invalid_winner"},
	{ErrStageLocked, "stage_locked"},
	{ErrUnknownStage, "unknown_stage"},
	{ErrUnknownTournament, "unknown_tournament"},
	{ErrCorruptStage, "corrupt_stage"},
	{ErrInvalidInput, "invalid_input"},
	{ErrUnknownTeam, "unknown_team"},
}

// Kind names the failure class of err for logs and metrics. A nil error is
// "ok", anything unclassified is "internal".
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
