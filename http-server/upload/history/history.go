package history

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"demand-planning/internal/storage"
)

const historyLimit = 50

type HistoryProvider interface {
	History(ctx context.Context, limit int) ([]storage.UploadBatch, error)
}

func GetHistory(log *slog.Logger, provider HistoryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.upload.history.GetHistory"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		history, err := provider.History(ctx, historyLimit)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			).Error("failed to fetch upload history", slog.Any("err", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to fetch upload history"})
			return
		}

		render.JSON(w, r, history)
	}
}
