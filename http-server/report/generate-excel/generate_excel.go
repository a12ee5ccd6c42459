package generate_excel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"demand-planning/internal/constants"
	"demand-planning/internal/storage"
)

const dateLayout = "2006-01-02"

type ReportGenerator interface {
	GenerateReport(ctx context.Context, w storage.Window) ([]byte, error)
}

// GenerateReportExcel streams the analytics workbook for startDate..endDate,
// defaulting to the planning horizon from today.
func GenerateReportExcel(log *slog.Logger, gen ReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateReportExcel"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		now := time.Now()
		window := storage.Window{
			Start: now.Format(dateLayout),
			End:   now.AddDate(0, 0, constants.PlanningHorizonWeeks*7).Format(dateLayout),
		}

		for _, p := range []struct {
			name string
			dst  *string
		}{
			{"startDate", &window.Start},
			{"endDate", &window.End},
		} {
			v := r.URL.Query().Get(p.name)
			if v == "" {
				continue
			}
			if _, err := time.Parse(dateLayout, v); err != nil {
				http.Error(w, fmt.Sprintf("invalid %s date", p.name), http.StatusBadRequest)
				return
			}
			*p.dst = v
		}
		if window.Start > window.End {
			http.Error(w, "startDate is after endDate", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateReport(ctx, window)
		if errors.Is(err, storage.ErrNoData) {
			http.Error(w, "no demand data in the requested window", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("failed to generate excel", slog.Any("err", err))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("Demand_Report_%s_%s.xlsx", window.Start, window.End)

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		if _, err := w.Write(excelBytes); err != nil {
			log.Error("failed to write excel response", slog.Any("err", err))
		}
	}
}
