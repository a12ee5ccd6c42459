package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"demand-planning/internal/service/tracker"
	"demand-planning/internal/storage"
)

// File is one uploaded workbook held in memory.
type File struct {
	Name string
	Data []byte
}

type FileResult struct {
	Filename        string   `json:"filename"`
	RecordsImported int      `json:"recordsImported"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	Success         bool     `json:"success"`
}

type Summary struct {
	SubmissionID         string       `json:"submissionId"`
	Success              bool         `json:"success"`
	Results              []FileResult `json:"results"`
	TotalRecordsImported int          `json:"totalRecordsImported"`
}

type WorkbookParser interface {
	Parse(filename string, data []byte, demandType storage.DemandType) tracker.Result
}

type Storage interface {
	SaveHourRecords(ctx context.Context, records []storage.HourRecord) (int, error)
	SaveUploadBatch(ctx context.Context, batch storage.UploadBatch) (int64, error)
	UploadHistory(ctx context.Context, limit int) ([]storage.UploadBatch, error)
	ClearAll(ctx context.Context) error
}

type Pipeline struct {
	log     *slog.Logger
	parser  WorkbookParser
	storage Storage
	workers int
	now     func() time.Time
}

func NewPipeline(log *slog.Logger, parser WorkbookParser, storage Storage, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		log:     log,
		parser:  parser,
		storage: storage,
		workers: workers,
		now:     time.Now,
	}
}

// Import parses every file, then persists each one on its own: a file whose
// records fail to save does not affect its siblings. One upload batch row is
// written per file whatever the outcome.
func (p *Pipeline) Import(ctx context.Context, files []File, demandType storage.DemandType) (Summary, error) {
	const op = "service.ingest.Import"

	if !demandType.Valid() {
		return Summary{}, fmt.Errorf("%s: unknown demand type %q", op, demandType)
	}

	parsed, err := p.parseAll(ctx, files, demandType)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", op, err)
	}

	summary := Summary{
		SubmissionID: uuid.NewString(),
		Success:      true,
		Results:      make([]FileResult, 0, len(files)),
	}

	for i, file := range files {
		result := p.persist(ctx, summary.SubmissionID, file.Name, parsed[i])

		summary.Results = append(summary.Results, result)
		summary.TotalRecordsImported += result.RecordsImported
		summary.Success = summary.Success && result.Success
	}

	p.log.Info("upload processed",
		slog.String("op", op),
		slog.String("submission_id", summary.SubmissionID),
		slog.Int("files", len(files)),
		slog.Int("records", summary.TotalRecordsImported),
		slog.Bool("success", summary.Success),
	)

	return summary, nil
}

func (p *Pipeline) parseAll(ctx context.Context, files []File, demandType storage.DemandType) ([]tracker.Result, error) {
	parsed := make([]tracker.Result, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, file := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			parsed[i] = p.parser.Parse(file.Name, file.Data, demandType)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parse files: %w", err)
	}

	return parsed, nil
}

func (p *Pipeline) persist(ctx context.Context, submissionID, filename string, parsed tracker.Result) FileResult {
	log := p.log.With(
		slog.String("submission_id", submissionID),
		slog.String("filename", filename),
	)

	result := FileResult{
		Filename: filename,
		Errors:   append([]string{}, parsed.Errors...),
		Warnings: append([]string{}, parsed.Warnings...),
	}

	if len(parsed.Records) > 0 {
		n, err := p.storage.SaveHourRecords(ctx, parsed.Records)
		if err != nil {
			log.Error("failed to save hour records", slog.Any("err", err))
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to save hours records: %v", err))
		} else {
			result.RecordsImported = n
		}
	}

	_, err := p.storage.SaveUploadBatch(ctx, storage.UploadBatch{
		SubmissionID:    submissionID,
		Filename:        filename,
		UploadedAt:      p.now(),
		RecordsImported: result.RecordsImported,
		Errors:          result.Errors,
		Warnings:        result.Warnings,
	})
	if err != nil {
		log.Error("failed to save upload batch", slog.Any("err", err))
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to record upload: %v", err))
	}

	result.Success = len(result.Errors) == 0

	return result
}

// History returns up to limit upload batches, newest first.
func (p *Pipeline) History(ctx context.Context, limit int) ([]storage.UploadBatch, error) {
	const op = "service.ingest.History"

	history, err := p.storage.UploadHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return history, nil
}

func (p *Pipeline) ClearAll(ctx context.Context) error {
	const op = "service.ingest.ClearAll"

	if err := p.storage.ClearAll(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.log.Warn("all hours and upload history cleared", slog.String("op", op))

	return nil
}
