package get

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"demand-planning/internal/constants"
	"demand-planning/internal/storage"
)

const (
	dateLayout     = "2006-01-02"
	requestTimeout = 10 * time.Second
)

// parseWindow reads startDate and endDate. Either one left out falls back to
// today or today plus the planning horizon.
func parseWindow(r *http.Request, today time.Time) (storage.Window, error) {
	q := r.URL.Query()

	w := storage.Window{
		Start: today.Format(dateLayout),
		End:   today.AddDate(0, 0, constants.PlanningHorizonWeeks*7).Format(dateLayout),
	}

	if v := q.Get("startDate"); v != "" {
		if _, err := time.Parse(dateLayout, v); err != nil {
			return storage.Window{}, fmt.Errorf("invalid startDate %q: expected YYYY-MM-DD", v)
		}
		w.Start = v
	}
	if v := q.Get("endDate"); v != "" {
		if _, err := time.Parse(dateLayout, v); err != nil {
			return storage.Window{}, fmt.Errorf("invalid endDate %q: expected YYYY-MM-DD", v)
		}
		w.End = v
	}

	if w.Start > w.End {
		return storage.Window{}, fmt.Errorf("startDate %s is after endDate %s", w.Start, w.End)
	}

	return w, nil
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative number", name, v)
	}

	return f, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive integer", name, v)
	}

	return n, nil
}

// respond runs fetch under the request timeout and writes its result as
// JSON. failure is both the log message and the client-facing error.
func respond[T any](w http.ResponseWriter, r *http.Request, log *slog.Logger, op, failure string, fetch func(ctx context.Context) (T, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := fetch(ctx)
	if err != nil {
		log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		).Error(failure, slog.Any("err", err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": failure})
		return
	}

	render.JSON(w, r, result)
}
