package remove

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Clearer interface {
	ClearAll(ctx context.Context) error
}

// ClearAll wipes every hour record and the upload history.
func ClearAll(log *slog.Logger, clearer Clearer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.upload.remove.ClearAll"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		if err := clearer.ClearAll(ctx); err != nil {
			log.Error("failed to clear data", slog.Any("err", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to clear data"})
			return
		}

		log.Info("data cleared")

		render.JSON(w, r, map[string]any{
			"success": true,
			"message": "All data cleared successfully",
		})
	}
}
