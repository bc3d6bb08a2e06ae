package scoringhandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
	scoringservice "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/application"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
)

func newTestRouter(service *FakeScoringService) *chi.Mux {
	handlers := NewScoringHandlers(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := chi.NewRouter()
	handlers.RegisterRoutes(router)
	return router
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		settleErr  error
		wantStatus int
	}{
		{
			name:       "successful settlement",
			body:       `{"stage_number": 3}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "forced settlement",
			body:       `{"stage_number": 3, "force": true}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed payload",
			body:       `{"stage_number": `,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown stage",
			body:       `{"stage_number": 99}`,
			settleErr:  racedb.ErrStageNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing facts",
			body:       `{"stage_number": 4}`,
			settleErr:  racedb.ErrStageFactsNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "out of order",
			body:       `{"stage_number": 5}`,
			settleErr:  fmt.Errorf("%w: 2 earlier stage(s) not settled", scoringservice.ErrOutOfOrderSettlement),
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &FakeScoringService{}
			if tt.settleErr != nil {
				service.SettleStageFunc = func(ctx context.Context, stageNumber int, force bool) (*scoringservice.SettlementSummary, error) {
					return nil, tt.settleErr
				}
			}
			router := newTestRouter(service)

			req := httptest.NewRequest(http.MethodPost, "/settle", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestSettle_PassesForceFlag(t *testing.T) {
	var gotStage int
	var gotForce bool
	service := &FakeScoringService{
		SettleStageFunc: func(ctx context.Context, stageNumber int, force bool) (*scoringservice.SettlementSummary, error) {
			gotStage, gotForce = stageNumber, force
			return &scoringservice.SettlementSummary{StageNumber: stageNumber, Forced: force}, nil
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/settle", strings.NewReader(`{"stage_number": 7, "force": true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, gotStage)
	assert.True(t, gotForce)

	var summary scoringservice.SettlementSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.True(t, summary.Forced)
}

func TestRiderPoints(t *testing.T) {
	service := &FakeScoringService{
		RiderPointsFunc: func(ctx context.Context, stageNumber int) ([]*scoringdb.RiderStagePoints, error) {
			return []*scoringdb.RiderStagePoints{
				{StageNumber: stageNumber, RiderID: 10, TotalPoints: 35, StageRank: 1},
			}, nil
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/stages/2/points/riders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var rows []*scoringdb.RiderStagePoints
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(10), rows[0].RiderID)
}

func TestRiderPoints_InvalidStageParam(t *testing.T) {
	router := newTestRouter(&FakeScoringService{})

	for _, path := range []string{"/stages/abc/points/riders", "/stages/0/points/riders"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestParticipantStandings_RequiresStageQuery(t *testing.T) {
	router := newTestRouter(&FakeScoringService{})

	req := httptest.NewRequest(http.MethodGet, "/standings/participants", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubstitutions(t *testing.T) {
	service := &FakeScoringService{
		SubstitutionsFunc: func(ctx context.Context) ([]*scoringdb.SubstitutionEvent, error) {
			return []*scoringdb.SubstitutionEvent{
				{ID: "a3c51f4e-6f2b-4f8e-9f3e-1c2d3e4f5a6b", StageNumber: 3, ParticipantID: 1, RiderOutID: 10, RiderInID: 99},
			}, nil
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/substitutions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var events []*scoringdb.SubstitutionEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, int64(99), events[0].RiderInID)
}

func TestParticipantStandings(t *testing.T) {
	service := &FakeScoringService{
		ParticipantStandingsFunc: func(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error) {
			return []*scoringdb.ParticipantStagePoints{
				{StageNumber: stageNumber, ParticipantID: 1, OverallRank: 1},
				{StageNumber: stageNumber, ParticipantID: 2, OverallRank: 2},
			}, nil
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/standings/participants?stage=4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var rows []*scoringdb.ParticipantStagePoints
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)
}
