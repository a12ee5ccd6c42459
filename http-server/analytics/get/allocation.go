package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"demand-planning/internal/service/analytics"
	"demand-planning/internal/storage"
)

type AllocationProvider interface {
	OverAllocatedPools(ctx context.Context, w storage.Window, threshold float64) ([]analytics.OverAllocatedPool, error)
	OverAllocatedIndividuals(ctx context.Context, w storage.Window, threshold float64) ([]analytics.OverAllocatedIndividual, error)
	UnderAllocated(ctx context.Context, w storage.Window, utilizationThreshold float64, minWeeks int) ([]analytics.UnderAllocatedResource, error)
}

func OverAllocatedPools(log *slog.Logger, provider AllocationProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.OverAllocatedPools"

		window, err := parseWindow(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		threshold, err := floatParam(r, "threshold", analytics.DefaultPoolThreshold)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respond(w, r, log, op, "Failed to fetch over-allocated pools", func(ctx context.Context) ([]analytics.OverAllocatedPool, error) {
			return provider.OverAllocatedPools(ctx, window, threshold)
		})
	}
}

func OverAllocatedIndividuals(log *slog.Logger, provider AllocationProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.OverAllocatedIndividuals"

		window, err := parseWindow(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		threshold, err := floatParam(r, "threshold", analytics.DefaultIndividualThreshold)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respond(w, r, log, op, "Failed to fetch over-allocated individuals", func(ctx context.Context) ([]analytics.OverAllocatedIndividual, error) {
			return provider.OverAllocatedIndividuals(ctx, window, threshold)
		})
	}
}

// UnderAllocated takes the utilization cut-off in percent as threshold.
func UnderAllocated(log *slog.Logger, provider AllocationProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.UnderAllocated"

		window, err := parseWindow(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		threshold, err := floatParam(r, "threshold", analytics.DefaultUnderUtilization)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		minWeeks, err := intParam(r, "minWeeks", analytics.DefaultMinWeeks)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respond(w, r, log, op, "Failed to fetch under-allocated resources", func(ctx context.Context) ([]analytics.UnderAllocatedResource, error) {
			return provider.UnderAllocated(ctx, window, threshold, minWeeks)
		})
	}
}
