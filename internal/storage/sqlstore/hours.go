package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"demand-planning/internal/storage"
)

const timeLayout = "2006-01-02 15:04:05"

// SaveHourRecords inserts all records in one transaction: either every row
// commits or none does.
func (s *Storage) SaveHourRecords(ctx context.Context, records []storage.HourRecord) (int, error) {
	const op = "storage.sqlstore.SaveHourRecords"

	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hours (
			project, employee_id, resource_name, rate, activity_id,
			week_start_date, actual_or_proposed, hours, demand_type,
			project_id, phase, milestone
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare insert: %w", op, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.Project,
			r.EmployeeID,
			r.ResourceName,
			r.Rate,
			r.ActivityID,
			r.WeekStartDate,
			string(r.ActualOrProposed),
			r.Hours,
			string(r.DemandType),
			r.ProjectID,
			r.Phase,
			r.Milestone,
		)
		if err != nil {
			return 0, fmt.Errorf("%s: insert employee=%s week=%s: %w", op, r.EmployeeID, r.WeekStartDate, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return inserted, nil
}

func (s *Storage) SaveUploadBatch(ctx context.Context, batch storage.UploadBatch) (int64, error) {
	const op = "storage.sqlstore.SaveUploadBatch"

	errorsJSON, err := marshalMessages(batch.Errors)
	if err != nil {
		return 0, fmt.Errorf("%s: serialize errors: %w", op, err)
	}
	warningsJSON, err := marshalMessages(batch.Warnings)
	if err != nil {
		return 0, fmt.Errorf("%s: serialize warnings: %w", op, err)
	}

	uploadedAt := batch.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO file_uploads (submission_id, filename, uploaded_at, records_imported, errors, warnings)
		VALUES (?, ?, ?, ?, ?, ?)
	`, batch.SubmissionID, batch.Filename, uploadedAt.UTC().Format(timeLayout), batch.RecordsImported, errorsJSON, warningsJSON)
	if err != nil {
		return 0, fmt.Errorf("%s: file=%s: %w", op, batch.Filename, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return id, nil
}

// UploadHistory returns the most recent upload batches, newest first.
func (s *Storage) UploadHistory(ctx context.Context, limit int) ([]storage.UploadBatch, error) {
	const op = "storage.sqlstore.UploadHistory"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, submission_id, filename, uploaded_at, records_imported, errors, warnings
		FROM file_uploads
		ORDER BY uploaded_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	history := []storage.UploadBatch{}
	for rows.Next() {
		var (
			b                    storage.UploadBatch
			uploadedAt           any
			errorsJSON, warnJSON string
		)

		if err := rows.Scan(&b.ID, &b.SubmissionID, &b.Filename, &uploadedAt, &b.RecordsImported, &errorsJSON, &warnJSON); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		if b.UploadedAt, err = scanTime(uploadedAt); err != nil {
			return nil, fmt.Errorf("%s: upload id=%d: %w", op, b.ID, err)
		}
		if b.Errors, err = unmarshalMessages(errorsJSON); err != nil {
			return nil, fmt.Errorf("%s: upload id=%d errors: %w", op, b.ID, err)
		}
		if b.Warnings, err = unmarshalMessages(warnJSON); err != nil {
			return nil, fmt.Errorf("%s: upload id=%d warnings: %w", op, b.ID, err)
		}

		history = append(history, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return history, nil
}

// ClearAll irreversibly removes every hour record and every upload batch.
func (s *Storage) ClearAll(ctx context.Context) error {
	const op = "storage.sqlstore.ClearAll"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"hours", "file_uploads"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%s: delete %s: %w", op, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

func marshalMessages(msgs []string) (string, error) {
	if msgs == nil {
		msgs = []string{}
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalMessages(raw string) ([]string, error) {
	msgs := []string{}
	if raw == "" {
		return msgs, nil
	}
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// scanTime accepts what either driver hands back for a DATETIME column.
func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseStoredTime(t)
	case []byte:
		return parseStoredTime(string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", v)
	}
}

func parseStoredTime(s string) (time.Time, error) {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
