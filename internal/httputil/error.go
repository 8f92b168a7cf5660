package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err with the status its kind maps to. Precondition failures
// carry their message to the operator, anything unclassified is hidden.
func Error(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		InternalServerError(w, "unhandled error", err)
		return
	}
	if status == http.StatusServiceUnavailable {
		slog.Error("storage unavailable", "error", err)
	} else {
		slog.Warn("request rejected", "kind", bracket.Kind(err), "error", err)
	}
	WriteJSON(w, status, errorResponse{Error: err.Error(), Kind: bracket.Kind(err)})
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, bracket.ErrInvalidEntrantCount),
		errors.Is(err, bracket.ErrInvalidWinner),
		errors.Is(err, bracket.ErrUnknownStage),
		errors.Is(err, bracket.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, bracket.ErrUnknownMatch),
		errors.Is(err, bracket.ErrUnknownTournament),
		errors.Is(err, bracket.ErrUnknownTeam):
		return http.StatusNotFound
	case errors.Is(err, bracket.ErrIncompleteStage),
		errors.Is(err, bracket.ErrAlreadyFinalized),
		errors.Is(err, bracket.ErrStageLocked),
		errors.Is(err, bracket.ErrCorruptStage):
		return http.StatusConflict
	case errors.Is(err, bracket.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: "internal"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "invalid_input"})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteJSON(w, http.StatusNotFound, errorResponse{Error: msg, Kind: "not_found"})
}
