package scoringhandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
	scoringservice "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/application"
	"github.com/wielervrienden/tourpoule-bot/app/shared"
)

// ScoringHandlers exposes the settlement trigger and the derived-state
// read accessors over HTTP.
type ScoringHandlers struct {
	scoring scoringservice.Service
	logger  *slog.Logger
}

// NewScoringHandlers creates the scoring HTTP handlers.
func NewScoringHandlers(scoring scoringservice.Service, logger *slog.Logger) *ScoringHandlers {
	return &ScoringHandlers{scoring: scoring, logger: logger}
}

// RegisterRoutes mounts the scoring endpoints.
func (h *ScoringHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/settle", h.Settle)
	r.Get("/stages/{stageNumber}/points/riders", h.RiderPoints)
	r.Get("/stages/{stageNumber}/roster/active", h.ActiveRoster)
	r.Get("/standings/participants", h.ParticipantStandings)
	r.Get("/standings/directies", h.DirectieStandings)
	r.Get("/substitutions", h.Substitutions)
}

type settleRequest struct {
	StageNumber int  `json:"stage_number"`
	Force       bool `json:"force"`
}

// Settle triggers settlement of one stage.
func (h *ScoringHandlers) Settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid settle payload", false)
		return
	}

	summary, err := h.scoring.SettleStage(r.Context(), req.StageNumber, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, racedb.ErrStageNotFound), errors.Is(err, racedb.ErrStageFactsNotFound):
			shared.RespondError(w, http.StatusNotFound, err.Error(), false)
		case errors.Is(err, scoringservice.ErrOutOfOrderSettlement):
			shared.RespondError(w, http.StatusConflict, err.Error(), false)
		default:
			shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		}
		return
	}

	shared.RespondJSON(w, http.StatusOK, summary)
}

func (h *ScoringHandlers) RiderPoints(w http.ResponseWriter, r *http.Request) {
	stageNumber, ok := stageParam(w, r)
	if !ok {
		return
	}

	rows, err := h.scoring.RiderPoints(r.Context(), stageNumber)
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, rows)
}

func (h *ScoringHandlers) ActiveRoster(w http.ResponseWriter, r *http.Request) {
	stageNumber, ok := stageParam(w, r)
	if !ok {
		return
	}

	entries, err := h.scoring.ActiveRoster(r.Context(), stageNumber)
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, entries)
}

func (h *ScoringHandlers) ParticipantStandings(w http.ResponseWriter, r *http.Request) {
	stageNumber, ok := stageQuery(w, r)
	if !ok {
		return
	}

	rows, err := h.scoring.ParticipantStandings(r.Context(), stageNumber)
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, rows)
}

func (h *ScoringHandlers) DirectieStandings(w http.ResponseWriter, r *http.Request) {
	stageNumber, ok := stageQuery(w, r)
	if !ok {
		return
	}

	rows, err := h.scoring.DirectieStandings(r.Context(), stageNumber)
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, rows)
}

// Substitutions lists every backup promotion recorded across the race.
func (h *ScoringHandlers) Substitutions(w http.ResponseWriter, r *http.Request) {
	events, err := h.scoring.Substitutions(r.Context())
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, events)
}

func stageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	stageNumber, err := strconv.Atoi(chi.URLParam(r, "stageNumber"))
	if err != nil || stageNumber < 1 {
		shared.RespondError(w, http.StatusBadRequest, "invalid stage number", false)
		return 0, false
	}
	return stageNumber, true
}

func stageQuery(w http.ResponseWriter, r *http.Request) (int, bool) {
	stageNumber, err := strconv.Atoi(r.URL.Query().Get("stage"))
	if err != nil || stageNumber < 1 {
		shared.RespondError(w, http.StatusBadRequest, "stage query parameter is required", false)
		return 0, false
	}
	return stageNumber, true
}
