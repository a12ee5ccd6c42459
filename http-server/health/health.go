package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

const version = "1.0.0"

type Pinger interface {
	Ping(ctx context.Context) error
}

type response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health reports ok while the database answers pings.
func Health(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.health.Health"

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := response{Status: "ok", Timestamp: time.Now().UTC(), Version: version}

		if err := db.Ping(ctx); err != nil {
			log.With(slog.String("op", op)).Error("database unreachable", slog.Any("err", err))
			resp.Status = "unavailable"
			render.Status(r, http.StatusServiceUnavailable)
		}

		render.JSON(w, r, resp)
	}
}
