package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	poolhandlers "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/handlers"
	racehandlers "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/handlers"
	scoringhandlers "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/handlers"
	"github.com/wielervrienden/tourpoule-bot/app/shared"
)

func (a *App) newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(shared.RequestLogger(a.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	race := racehandlers.NewRaceHandlers(a.RaceService, a.ScoringService, a.Logger)
	pool := poolhandlers.NewPoolHandlers(a.PoolService, a.Logger)
	scoring := scoringhandlers.NewScoringHandlers(a.ScoringService, a.Logger)

	r.Route("/api", func(api chi.Router) {
		// The scraper posts results in bursts; keep ingestion and
		// settlement behind a limiter. Pool CRUD stays outside it.
		api.Group(func(ingest chi.Router) {
			ingest.Use(shared.RateLimit(a.Config.HTTP.IngestRateLimit, a.Config.HTTP.IngestBurst))
			race.RegisterRoutes(ingest)
			scoring.RegisterRoutes(ingest)
		})
		pool.RegisterRoutes(api)
	})

	return r
}
