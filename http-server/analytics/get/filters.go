package get

import (
	"context"
	"log/slog"
	"net/http"

	"demand-planning/internal/storage"
)

type FilterProvider interface {
	Projects(ctx context.Context) ([]string, error)
	Phases(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) (storage.DataDateRange, error)
}

func Projects(log *slog.Logger, provider FilterProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.Projects"

		respond(w, r, log, op, "Failed to fetch projects", provider.Projects)
	}
}

func Phases(log *slog.Logger, provider FilterProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.Phases"

		respond(w, r, log, op, "Failed to fetch phases", provider.Phases)
	}
}

// DateRange reports the span of stored data regardless of any window.
func DateRange(log *slog.Logger, provider FilterProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.DateRange"

		respond(w, r, log, op, "Failed to fetch date range", provider.DateRange)
	}
}
