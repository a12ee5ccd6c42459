package save

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"demand-planning/internal/config"
	"demand-planning/internal/service/ingest"
	"demand-planning/internal/storage"
)

const (
	formFiles      = "files"
	formDemandType = "demandType"
	importTimeout  = 2 * time.Minute
	multipartSlack = 1 << 20
)

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".xlsm": true,
}

type Importer interface {
	Import(ctx context.Context, files []ingest.File, demandType storage.DemandType) (ingest.Summary, error)
}

// SaveUpload accepts multipart budget tracker uploads and reports the
// outcome per file.
func SaveUpload(log *slog.Logger, importer Importer, limits config.Upload) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.upload.save.SaveUpload"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		maxBody := int64(limits.MaxFiles)*limits.MaxFileSize + multipartSlack
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "No files uploaded", http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File[formFiles]
		if len(headers) == 0 {
			http.Error(w, "No files uploaded", http.StatusBadRequest)
			return
		}
		if len(headers) > limits.MaxFiles {
			http.Error(w, fmt.Sprintf("Too many files: at most %d per upload", limits.MaxFiles), http.StatusBadRequest)
			return
		}

		demandType := storage.HardDemand
		if v := r.FormValue(formDemandType); v != "" {
			demandType = storage.DemandType(v)
		}
		if !demandType.Valid() {
			http.Error(w, "Invalid demandType: expected Hard Demand or Soft Demand", http.StatusBadRequest)
			return
		}

		files := make([]ingest.File, 0, len(headers))
		for _, fh := range headers {
			if !allowedExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
				http.Error(w, "Invalid file type. Only Excel files (.xlsx, .xls, .xlsm) are allowed", http.StatusBadRequest)
				return
			}
			if fh.Size > limits.MaxFileSize {
				http.Error(w, fmt.Sprintf("File %s exceeds the %d byte limit", fh.Filename, limits.MaxFileSize), http.StatusRequestEntityTooLarge)
				return
			}

			data, err := readFile(fh)
			if err != nil {
				log.Error("failed to read uploaded file", slog.String("filename", fh.Filename), slog.Any("err", err))
				http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
				return
			}

			files = append(files, ingest.File{Name: fh.Filename, Data: data})
		}

		ctx, cancel := context.WithTimeout(r.Context(), importTimeout)
		defer cancel()

		summary, err := importer.Import(ctx, files, demandType)
		if err != nil {
			log.Error("upload failed", slog.Any("err", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to process upload"})
			return
		}

		render.JSON(w, r, summary)
	}
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
