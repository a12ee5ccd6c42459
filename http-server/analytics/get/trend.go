package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"demand-planning/internal/service/analytics"
	"demand-planning/internal/storage"
)

type TrendProvider interface {
	DemandTrend(ctx context.Context, w storage.Window, f storage.TrendFilter) ([]storage.WeeklyDemand, error)
	DemandByType(ctx context.Context, w storage.Window) ([]storage.WeeklyDemandByType, error)
}

type FTEProvider interface {
	ImpliedFTE(ctx context.Context, w storage.Window) ([]analytics.WeeklyFTE, error)
	FTESummary(ctx context.Context, w storage.Window) (analytics.FTESummary, error)
}

type UtilizationProvider interface {
	UtilizationDistribution(ctx context.Context, w storage.Window) ([]analytics.UtilizationBucket, error)
}

// DemandTrend serves weekly totals, optionally narrowed by demandType,
// project and phase.
func DemandTrend(log *slog.Logger, provider TrendProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.DemandTrend"

		window, err := parseWindow(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		filter := storage.TrendFilter{
			DemandType: storage.DemandType(q.Get("demandType")),
			Project:    q.Get("project"),
			Phase:      q.Get("phase"),
		}
		if filter.DemandType != "" && !filter.DemandType.Valid() {
			http.Error(w, "invalid demandType: expected Hard Demand or Soft Demand", http.StatusBadRequest)
			return
		}

		respond(w, r, log, op, "Failed to fetch demand trend data", func(ctx context.Context) ([]storage.WeeklyDemand, error) {
			return provider.DemandTrend(ctx, window, filter)
		})
	}
}

func DemandByType(log *slog.Logger, provider TrendProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.DemandByType"

		window, err := parseWindow(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respond(w, r, log, op, "Failed to fetch demand by type data", func(ctx context.Context) ([]storage.WeeklyDemandByType, error) {
			return provider.DemandByType(ctx, window)
		})
	}
}

type impliedFTEResponse struct {
	Data    []analytics.WeeklyFTE `json:"data"`
	Summary analytics.FTESummary  `json:"summary"`
}

func ImpliedFTE(log *slog.Logger, provider FTEProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.ImpliedFTE"

		window, err := parseWindow(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respond(w, r, log, op, "Failed to fetch implied FTE data", func(ctx context.Context) (impliedFTEResponse, error) {
			data, err := provider.ImpliedFTE(ctx, window)
			if err != nil {
				return impliedFTEResponse{}, err
			}
			summary, err := provider.FTESummary(ctx, window)
			if err != nil {
				return impliedFTEResponse{}, err
			}
			return impliedFTEResponse{Data: data, Summary: summary}, nil
		})
	}
}

func UtilizationDistribution(log *slog.Logger, provider UtilizationProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.UtilizationDistribution"

		window, err := parseWindow(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respond(w, r, log, op, "Failed to fetch utilization distribution", func(ctx context.Context) ([]analytics.UtilizationBucket, error) {
			return provider.UtilizationDistribution(ctx, window)
		})
	}
}
