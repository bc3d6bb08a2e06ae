package racehandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	raceservice "github.com/wielervrienden/tourpoule-bot/app/modules/race/application"
	racedomain "github.com/wielervrienden/tourpoule-bot/app/modules/race/domain"
	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
	scoringservice "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/application"
	"github.com/wielervrienden/tourpoule-bot/app/shared"
)

// RaceHandlers exposes startlist and stage-fact ingestion over HTTP.
type RaceHandlers struct {
	race    raceservice.Service
	scoring scoringservice.Service
	logger  *slog.Logger
}

// NewRaceHandlers creates the race HTTP handlers. The scoring service is
// needed because a stage-result submission triggers settlement.
func NewRaceHandlers(race raceservice.Service, scoring scoringservice.Service, logger *slog.Logger) *RaceHandlers {
	return &RaceHandlers{race: race, scoring: scoring, logger: logger}
}

// RegisterRoutes mounts the race endpoints.
func (h *RaceHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/startlist", h.ImportStartlist)
	r.Post("/submit-stage-results", h.SubmitStageResults)
	r.Get("/stages", h.ListStages)
	r.Get("/stages/current", h.CurrentStage)
	r.Get("/riders", h.ListRiders)
}

// ImportStartlist replaces the rider table from a startlist dump.
func (h *RaceHandlers) ImportStartlist(w http.ResponseWriter, r *http.Request) {
	var entries []raceservice.StartlistEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid startlist payload", false)
		return
	}

	count, err := h.race.ImportStartlist(r.Context(), entries)
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}

	shared.RespondJSON(w, http.StatusOK, map[string]int{"riders": count})
}

// submitStageResultsBody is the scraper payload plus the force flag.
type submitStageResultsBody struct {
	raceservice.SubmitStageResultsRequest
	Force bool `json:"force"`
}

type submitStageResultsResponse struct {
	Ingest     *raceservice.IngestResult         `json:"ingest"`
	Settlement *scoringservice.SettlementSummary `json:"settlement,omitempty"`
}

// SubmitStageResults stores the stage facts and triggers settlement.
func (h *RaceHandlers) SubmitStageResults(w http.ResponseWriter, r *http.Request) {
	var body submitStageResultsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid stage results payload", false)
		return
	}

	ingest, err := h.race.SubmitStageResults(r.Context(), body.SubmitStageResultsRequest)
	if err != nil {
		if errors.Is(err, racedomain.ErrInvalidFacts) {
			shared.RespondError(w, http.StatusBadRequest, err.Error(), false)
			return
		}
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}

	summary, err := h.scoring.SettleStage(r.Context(), body.StageNumber, body.Force)
	if err != nil {
		if errors.Is(err, scoringservice.ErrOutOfOrderSettlement) {
			shared.RespondError(w, http.StatusConflict, err.Error(), false)
			return
		}
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}

	shared.RespondJSON(w, http.StatusOK, submitStageResultsResponse{
		Ingest:     ingest,
		Settlement: summary,
	})
}

func (h *RaceHandlers) ListStages(w http.ResponseWriter, r *http.Request) {
	stages, err := h.race.ListStages(r.Context())
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, stages)
}

// CurrentStage returns the highest settled stage number.
func (h *RaceHandlers) CurrentStage(w http.ResponseWriter, r *http.Request) {
	current, err := h.race.CurrentStage(r.Context())
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]int{"current_stage": current})
}

func (h *RaceHandlers) ListRiders(w http.ResponseWriter, r *http.Request) {
	riders, err := h.race.ListActiveRiders(r.Context())
	if err != nil {
		if errors.Is(err, racedb.ErrRiderNotFound) {
			shared.RespondError(w, http.StatusNotFound, err.Error(), false)
			return
		}
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, riders)
}
