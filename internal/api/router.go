package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mlcounter/draft-companion/internal/api/handlers"
	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/version"
)

// setupRoutes wires all API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.healthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Draft recommendations
		draftHandler := handlers.NewDraftHandler(s.deps.Engine)
		r.Route("/draft", func(r chi.Router) {
			r.Post("/recommend", draftHandler.Recommend)
		})

		// Canonical heroes and counter relations
		heroHandler := handlers.NewHeroHandler(s.deps.Heroes, s.deps.Counters, s.deps.Engine)
		r.Route("/heroes", func(r chi.Router) {
			r.Get("/", heroHandler.ListHeroes)
			r.Get("/{name}", heroHandler.GetHero)
			r.Get("/{name}/counters", heroHandler.GetCounters)
		})

		// Game history
		historyHandler := handlers.NewHistoryHandler(s.deps.History)
		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.ListGames)
			r.Post("/", historyHandler.CreateGame)
			r.Get("/export", historyHandler.ExportGames)
			r.Delete("/{id}", historyHandler.DeleteGame)
			r.Get("/hero/{name}", historyHandler.ListGamesByHero)
		})

		// Live draft sessions
		sessionHandler := handlers.NewSessionHandler(s.deps.Sessions, s.deps.History)
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.ListSessions)
			r.Post("/", sessionHandler.StartSession)
			r.Get("/stats", sessionHandler.GetStats)
			r.Get("/active", sessionHandler.GetActive)
			r.Get("/{id}", sessionHandler.GetSession)
			r.Patch("/{id}", sessionHandler.UpdateSession)
			r.Post("/{id}/complete", sessionHandler.CompleteSession)
			r.Delete("/{id}", sessionHandler.CancelSession)
		})

		// History aggregates
		statsHandler := handlers.NewStatsHandler(s.deps.History, s.deps.MinGamesConfidence)
		r.Route("/stats", func(r chi.Router) {
			r.Get("/overview", statsHandler.GetOverview)
			r.Get("/heroes", statsHandler.ListHeroStats)
			r.Get("/heroes/{name}", statsHandler.GetHeroStats)
			r.Get("/matchups/{hero}/{enemy}", statsHandler.GetMatchup)
			r.Get("/enemies", statsHandler.ListEnemyEncounters)
		})

		// Rendered charts
		chartsHandler := handlers.NewChartsHandler(s.deps.History)
		r.Route("/charts", func(r chi.Router) {
			r.Get("/winrate", chartsHandler.WinRateTrend)
			r.Get("/heroes", chartsHandler.HeroPerformance)
			r.Get("/enemies", chartsHandler.EnemyMatchups)
			r.Get("/roles", chartsHandler.RoleDistribution)
		})

		// Notes analysis
		notesHandler := handlers.NewNotesHandler(s.deps.Analyzer)
		r.Route("/notes", func(r chi.Router) {
			r.Get("/analysis", notesHandler.GetAnalysis)
		})

		// Meta document
		metaHandler := handlers.NewMetaHandler(s.deps.Meta)
		r.Route("/meta", func(r chi.Router) {
			r.Get("/status", metaHandler.GetStatus)
			r.Post("/reload", metaHandler.Reload)
		})

		// Engine metrics
		metricsHandler := handlers.NewMetricsHandler(s.deps.Metrics)
		r.Get("/metrics", metricsHandler.GetStats)
	})
}

// healthCheck responds to health check requests.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "draft-companion",
		"version": version.GetVersion(),
	})
}
