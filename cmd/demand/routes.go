package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getanalytics "demand-planning/http-server/analytics/get"
	"demand-planning/http-server/health"
	generate_excel "demand-planning/http-server/report/generate-excel"
	"demand-planning/http-server/upload/history"
	"demand-planning/http-server/upload/remove"
	"demand-planning/http-server/upload/save"
	"demand-planning/internal/config"
	"demand-planning/internal/middleware/auth"
	"demand-planning/internal/service/analytics"
	generate_excel_service "demand-planning/internal/service/generate-excel"
	"demand-planning/internal/service/ingest"
	"demand-planning/internal/storage/sqlstore"
)

func routes(
	cfg config.Config,
	log *slog.Logger,
	storage *sqlstore.Storage,
	pipeline *ingest.Pipeline,
	engine *analytics.Engine,
	reports *generate_excel_service.Service,
) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/api/health", health.Health(log, storage))

	router.Route("/api/upload", func(r chi.Router) {
		r.Post("/", save.SaveUpload(log, pipeline, cfg.Upload))
		r.Get("/history", history.GetHistory(log, pipeline))
		r.With(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass)).Delete("/clear", remove.ClearAll(log, pipeline))
	})

	router.Route("/api/analytics", func(r chi.Router) {
		r.Get("/demand-trend", getanalytics.DemandTrend(log, engine))
		r.Get("/demand-by-type", getanalytics.DemandByType(log, engine))
		r.Get("/implied-fte", getanalytics.ImpliedFTE(log, engine))
		r.Get("/utilization-distribution", getanalytics.UtilizationDistribution(log, engine))
		r.Get("/over-allocated-pools", getanalytics.OverAllocatedPools(log, engine))
		r.Get("/over-allocated-individuals", getanalytics.OverAllocatedIndividuals(log, engine))
		r.Get("/under-allocated", getanalytics.UnderAllocated(log, engine))
		r.Get("/heatmap", getanalytics.Heatmap(log, engine))
		r.Get("/demand-realism", getanalytics.DemandRealism(log, engine))
		r.Get("/filters/projects", getanalytics.Projects(log, engine))
		r.Get("/filters/phases", getanalytics.Phases(log, engine))
		r.Get("/date-range", getanalytics.DateRange(log, engine))
	})

	router.Get("/api/report/excel", generate_excel.GenerateReportExcel(log, reports))

	if cfg.FrontendDir != "" {
		mountFrontend(router, log, cfg.FrontendDir)
	}

	return router
}

// mountFrontend serves the built dashboard, falling back to index.html for
// client-side routes.
func mountFrontend(router chi.Router, log *slog.Logger, dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Warn("frontend directory not found, serving api only", slog.String("path", dir))
		return
	}

	index := filepath.Join(dir, "index.html")
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, index)
	})
}
