package poolhandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	poolservice "github.com/wielervrienden/tourpoule-bot/app/modules/pool/application"
	pooldb "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/repositories"
	"github.com/wielervrienden/tourpoule-bot/app/shared"
)

// PoolHandlers exposes participant, directie and roster management.
type PoolHandlers struct {
	pool   poolservice.Service
	logger *slog.Logger
}

// NewPoolHandlers creates the pool HTTP handlers.
func NewPoolHandlers(pool poolservice.Service, logger *slog.Logger) *PoolHandlers {
	return &PoolHandlers{pool: pool, logger: logger}
}

// RegisterRoutes mounts the pool endpoints.
func (h *PoolHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/directies", h.CreateDirectie)
	r.Get("/directies", h.ListDirecties)
	r.Post("/participants", h.CreateParticipant)
	r.Get("/participants", h.ListParticipants)
	r.Post("/participants/{participantID}/roster", h.SubmitRoster)
	r.Get("/participants/{participantID}/roster", h.GetRoster)
}

func (h *PoolHandlers) CreateDirectie(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid directie payload", false)
		return
	}

	directie, err := h.pool.CreateDirectie(r.Context(), body.Name)
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, directie)
}

func (h *PoolHandlers) ListDirecties(w http.ResponseWriter, r *http.Request) {
	directies, err := h.pool.ListDirecties(r.Context())
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, directies)
}

func (h *PoolHandlers) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		DirectieID int64  `json:"directie_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid participant payload", false)
		return
	}

	participant, err := h.pool.CreateParticipant(r.Context(), body.Name, body.DirectieID)
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, participant)
}

func (h *PoolHandlers) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.pool.ListParticipants(r.Context())
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, participants)
}

func (h *PoolHandlers) SubmitRoster(w http.ResponseWriter, r *http.Request) {
	participantID, ok := participantParam(w, r)
	if !ok {
		return
	}

	var body struct {
		MainRiderIDs  []int64 `json:"main_rider_ids"`
		BackupRiderID *int64  `json:"backup_rider_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid roster payload", false)
		return
	}

	err := h.pool.SubmitRoster(r.Context(), participantID, body.MainRiderIDs, body.BackupRiderID)
	if err != nil {
		switch {
		case errors.Is(err, poolservice.ErrInvalidRoster):
			shared.RespondError(w, http.StatusBadRequest, err.Error(), false)
		case errors.Is(err, pooldb.ErrParticipantNotFound):
			shared.RespondError(w, http.StatusNotFound, err.Error(), false)
		default:
			shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		}
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *PoolHandlers) GetRoster(w http.ResponseWriter, r *http.Request) {
	participantID, ok := participantParam(w, r)
	if !ok {
		return
	}

	roster, err := h.pool.GetRoster(r.Context(), participantID)
	if err != nil {
		shared.RespondError(w, http.StatusInternalServerError, err.Error(), true)
		return
	}
	shared.RespondJSON(w, http.StatusOK, roster)
}

func participantParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	participantID, err := strconv.ParseInt(chi.URLParam(r, "participantID"), 10, 64)
	if err != nil || participantID < 1 {
		shared.RespondError(w, http.StatusBadRequest, "invalid participant id", false)
		return 0, false
	}
	return participantID, true
}
