package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/AdamBeresnev/venue-bracket/internal/httputil"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultChampionsLimit = 10

type titleRequest struct {
	Title string `json:"title"`
}

type teamRequest struct {
	TeamName string `json:"team_name"`
	Captain  string `json:"captain"`
}

type paidRequest struct {
	Paid bool `json:"paid"`
}

type winnerRequest struct {
	Slot bracket.Slot `json:"slot"`
}

func newRouter(app *application, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.NotFound(w, "no route for "+r.Method+" "+r.URL.Path, nil)
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		tournaments, err := app.tournaments.ListTournaments(r.Context())
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, tournaments)
	})

	r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		var req titleRequest
		if !decode(w, r, &req) {
			return
		}
		tournament, err := app.tournaments.CreateTournament(r.Context(), req.Title)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, tournament)
	})

	r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			snapshot, err := app.engine.Snapshot(r.Context(), id)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, snapshot)
		})

		r.Get("/teams", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			teams, err := app.tournaments.ListTeams(r.Context(), id)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, teams)
		})

		r.Post("/teams", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			var req teamRequest
			if !decode(w, r, &req) {
				return
			}
			team, err := app.tournaments.RegisterTeam(r.Context(), id, req.TeamName, req.Captain)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, team)
		})

		r.Post("/bracket", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
			matches, err := app.engine.GenerateFromPaidEntrants(r.Context(), id, confirm)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, matches)
		})

		r.Post("/stages/{stage}/advance", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			stage, err := bracket.ParseStage(chi.URLParam(r, "stage"))
			if err != nil {
				httputil.Error(w, err)
				return
			}
			matches, err := app.engine.AdvanceStage(r.Context(), id, stage)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, matches)
		})

		r.Delete("/stages/{stage}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			stage, err := bracket.ParseStage(chi.URLParam(r, "stage"))
			if err != nil {
				httputil.Error(w, err)
				return
			}
			deleted, err := app.engine.CancelStage(r.Context(), id, stage)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, map[string]int64{"matches_deleted": deleted})
		})

		r.Post("/standings", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			standings, err := app.engine.FinalizeStandings(r.Context(), id)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, standings)
		})
	})

	r.Post("/teams/{teamID}/paid", func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "teamID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid team ID", err)
			return
		}
		var req paidRequest
		if !decode(w, r, &req) {
			return
		}
		team, err := app.tournaments.SetPaid(r.Context(), id, req.Paid)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, team)
	})

	r.Post("/matches/{matchID}/winner", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
		if err != nil {
			httputil.BadRequest(w, "Invalid match ID", err)
			return
		}
		var req winnerRequest
		if !decode(w, r, &req) {
			return
		}
		match, err := app.engine.RecordWinner(r.Context(), id, req.Slot)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, match)
	})

	r.Get("/champions", func(w http.ResponseWriter, r *http.Request) {
		limit := defaultChampionsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				httputil.BadRequest(w, "Invalid limit", err)
				return
			}
			limit = n
		}
		champions, err := app.tournaments.ListChampions(r.Context(), limit)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, champions)
	})

	return r
}

func tournamentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tournamentID"))
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("Invalid request body: %v", err), err)
		return false
	}
	return true
}
