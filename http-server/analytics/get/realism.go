package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"demand-planning/internal/service/analytics"
	"demand-planning/internal/storage"
)

type HeatmapProvider interface {
	Heatmap(ctx context.Context, w storage.Window, topN int) ([]analytics.HeatmapCell, error)
}

type RealismProvider interface {
	DemandRealism(ctx context.Context, w storage.Window) (analytics.Realism, error)
}

func Heatmap(log *slog.Logger, provider HeatmapProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.Heatmap"

		window, err := parseWindow(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		topN, err := intParam(r, "topN", analytics.DefaultHeatmapTopN)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respond(w, r, log, op, "Failed to fetch heatmap data", func(ctx context.Context) ([]analytics.HeatmapCell, error) {
			return provider.Heatmap(ctx, window, topN)
		})
	}
}

func DemandRealism(log *slog.Logger, provider RealismProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.DemandRealism"

		window, err := parseWindow(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respond(w, r, log, op, "Failed to fetch demand realism data", func(ctx context.Context) (analytics.Realism, error) {
			return provider.DemandRealism(ctx, window)
		})
	}
}
