package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"demand-planning/internal/constants"
	"demand-planning/internal/storage"
)

// poolPredicate is the SQL form of constants.IsPoolResource.
func poolPredicate() string {
	conds := []string{fmt.Sprintf("employee_id LIKE '%s%%'", constants.PoolEmployeeIDPrefix)}
	for _, p := range constants.PoolNamePatterns {
		conds = append(conds, fmt.Sprintf("resource_name LIKE '%%%s%%'", p))
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}

const resourceWeeksCTE = `
	WITH resource_weeks AS (
		SELECT employee_id, resource_name, week_start_date, SUM(hours) AS weekly_hours
		FROM hours
		WHERE week_start_date >= ? AND week_start_date <= ?
		GROUP BY employee_id, resource_name, week_start_date
	)`

func (s *Storage) WeeklyDemand(ctx context.Context, w storage.Window, f storage.TrendFilter) ([]storage.WeeklyDemand, error) {
	const op = "storage.sqlstore.WeeklyDemand"

	stmt := `
		SELECT week_start_date, SUM(hours) AS total_hours,
		       COUNT(DISTINCT employee_id), COUNT(DISTINCT project)
		FROM hours
		WHERE week_start_date >= ? AND week_start_date <= ?`
	args := []any{w.Start, w.End}

	if f.DemandType != "" {
		stmt += " AND demand_type = ?"
		args = append(args, string(f.DemandType))
	}
	if f.Project != "" {
		stmt += " AND project = ?"
		args = append(args, f.Project)
	}
	if f.Phase != "" {
		stmt += " AND phase = ?"
		args = append(args, f.Phase)
	}

	stmt += " GROUP BY week_start_date ORDER BY week_start_date"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := []storage.WeeklyDemand{}
	for rows.Next() {
		var d storage.WeeklyDemand
		if err := rows.Scan(&d.WeekStartDate, &d.TotalHours, &d.ResourceCount, &d.ProjectCount); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return result, nil
}

func (s *Storage) WeeklyDemandByType(ctx context.Context, w storage.Window) ([]storage.WeeklyDemandByType, error) {
	const op = "storage.sqlstore.WeeklyDemandByType"

	rows, err := s.db.QueryContext(ctx, `
		SELECT week_start_date, demand_type, SUM(hours) AS total_hours
		FROM hours
		WHERE week_start_date >= ? AND week_start_date <= ?
		GROUP BY week_start_date, demand_type
		ORDER BY week_start_date, demand_type
	`, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := []storage.WeeklyDemandByType{}
	for rows.Next() {
		var d storage.WeeklyDemandByType
		if err := rows.Scan(&d.WeekStartDate, &d.DemandType, &d.TotalHours); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return result, nil
}

func (s *Storage) WeeklyHours(ctx context.Context, w storage.Window) ([]storage.WeeklyHours, error) {
	const op = "storage.sqlstore.WeeklyHours"

	rows, err := s.db.QueryContext(ctx, `
		SELECT week_start_date, SUM(hours) AS total_hours
		FROM hours
		WHERE week_start_date >= ? AND week_start_date <= ?
		GROUP BY week_start_date
		ORDER BY week_start_date
	`, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := []storage.WeeklyHours{}
	for rows.Next() {
		var h storage.WeeklyHours
		if err := rows.Scan(&h.WeekStartDate, &h.TotalHours); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		result = append(result, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return result, nil
}

// ResourceWeeks returns every resource-week in the window.
func (s *Storage) ResourceWeeks(ctx context.Context, w storage.Window) ([]storage.ResourceWeek, error) {
	const op = "storage.sqlstore.ResourceWeeks"

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, resource_name, week_start_date, SUM(hours) AS weekly_hours
		FROM hours
		WHERE week_start_date >= ? AND week_start_date <= ?
		GROUP BY employee_id, resource_name, week_start_date
		ORDER BY employee_id, resource_name, week_start_date
	`, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := []storage.ResourceWeek{}
	for rows.Next() {
		var rw storage.ResourceWeek
		if err := rows.Scan(&rw.EmployeeID, &rw.ResourceName, &rw.WeekStartDate, &rw.Hours); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		result = append(result, rw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return result, nil
}

// PoolWeeksOver returns pool resource-weeks (grouped by resource name) whose
// hours exceed threshold, heaviest first.
func (s *Storage) PoolWeeksOver(ctx context.Context, w storage.Window, threshold float64) ([]storage.AllocationWeek, error) {
	const op = "storage.sqlstore.PoolWeeksOver"

	stmt := `
		SELECT resource_name, week_start_date, SUM(hours) AS total_hours,
		       GROUP_CONCAT(DISTINCT project) AS projects
		FROM hours
		WHERE ` + poolPredicate() + `
		  AND week_start_date >= ? AND week_start_date <= ?
		GROUP BY resource_name, week_start_date
		HAVING SUM(hours) > ?
		ORDER BY total_hours DESC, resource_name, week_start_date`

	rows, err := s.db.QueryContext(ctx, stmt, w.Start, w.End, threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := []storage.AllocationWeek{}
	for rows.Next() {
		var (
			a        storage.AllocationWeek
			projects sql.NullString
		)
		if err := rows.Scan(&a.ResourceName, &a.WeekStartDate, &a.TotalHours, &projects); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		a.Projects = splitProjects(projects)
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return result, nil
}

// IndividualWeeksOver returns named (non-pool) resource-weeks whose hours
// exceed threshold, heaviest first.
func (s *Storage) IndividualWeeksOver(ctx context.Context, w storage.Window, threshold float64) ([]storage.AllocationWeek, error) {
	const op = "storage.sqlstore.IndividualWeeksOver"

	stmt := `
		SELECT employee_id, resource_name, week_start_date, SUM(hours) AS total_hours,
		       GROUP_CONCAT(DISTINCT project) AS projects
		FROM hours
		WHERE NOT ` + poolPredicate() + `
		  AND week_start_date >= ? AND week_start_date <= ?
		GROUP BY employee_id, resource_name, week_start_date
		HAVING SUM(hours) > ?
		ORDER BY total_hours DESC, employee_id, week_start_date`

	rows, err := s.db.QueryContext(ctx, stmt, w.Start, w.End, threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := []storage.AllocationWeek{}
	for rows.Next() {
		var (
			a        storage.AllocationWeek
			projects sql.NullString
		)
		if err := rows.Scan(&a.EmployeeID, &a.ResourceName, &a.WeekStartDate, &a.TotalHours, &projects); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		a.Projects = splitProjects(projects)
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return result, nil
}

// ResourceAverages returns the average weekly hours of every resource seen
// in at least minWeeks distinct weeks of the window.
func (s *Storage) ResourceAverages(ctx context.Context, w storage.Window, minWeeks int) ([]storage.ResourceAverage, error) {
	const op = "storage.sqlstore.ResourceAverages"

	stmt := resourceWeeksCTE + `
		SELECT employee_id, resource_name, AVG(weekly_hours) AS avg_hours, COUNT(*) AS weeks_count
		FROM resource_weeks
		GROUP BY employee_id, resource_name
		HAVING COUNT(*) >= ?
		ORDER BY avg_hours, employee_id`

	rows, err := s.db.QueryContext(ctx, stmt, w.Start, w.End, minWeeks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := []storage.ResourceAverage{}
	for rows.Next() {
		var ra storage.ResourceAverage
		if err := rows.Scan(&ra.EmployeeID, &ra.ResourceName, &ra.AvgHours, &ra.WeeksCount); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		result = append(result, ra)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return result, nil
}

// HeatmapWeeks returns the resource-weeks of the topN resources ranked by
// their peak single-week hours, ordered by peak then by week.
func (s *Storage) HeatmapWeeks(ctx context.Context, w storage.Window, topN int) ([]storage.HeatmapWeek, error) {
	const op = "storage.sqlstore.HeatmapWeeks"

	stmt := resourceWeeksCTE + `,
	peak_demand AS (
		SELECT employee_id, resource_name, MAX(weekly_hours) AS peak_hours
		FROM resource_weeks
		GROUP BY employee_id, resource_name
		ORDER BY peak_hours DESC, employee_id, resource_name
		LIMIT ?
	)
	SELECT rw.employee_id, rw.resource_name, rw.week_start_date, rw.weekly_hours, pd.peak_hours
	FROM resource_weeks rw
	INNER JOIN peak_demand pd
		ON rw.employee_id = pd.employee_id AND rw.resource_name = pd.resource_name
	ORDER BY pd.peak_hours DESC, rw.employee_id, rw.resource_name, rw.week_start_date`

	rows, err := s.db.QueryContext(ctx, stmt, w.Start, w.End, topN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := []storage.HeatmapWeek{}
	for rows.Next() {
		var hw storage.HeatmapWeek
		if err := rows.Scan(&hw.EmployeeID, &hw.ResourceName, &hw.WeekStartDate, &hw.Hours, &hw.PeakHours); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		result = append(result, hw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return result, nil
}

func (s *Storage) WindowTotals(ctx context.Context, w storage.Window) (storage.WindowTotals, error) {
	const op = "storage.sqlstore.WindowTotals"

	var t storage.WindowTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(hours), 0), COUNT(DISTINCT employee_id), COUNT(DISTINCT project)
		FROM hours
		WHERE week_start_date >= ? AND week_start_date <= ?
	`, w.Start, w.End).Scan(&t.TotalHours, &t.UniqueResources, &t.UniqueProjects)
	if err != nil {
		return storage.WindowTotals{}, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// HoursByResourceType sums hours per pool-vs-named class.
func (s *Storage) HoursByResourceType(ctx context.Context, w storage.Window) ([]storage.HoursByLabel, error) {
	const op = "storage.sqlstore.HoursByResourceType"

	stmt := fmt.Sprintf(`
		SELECT CASE WHEN %s THEN '%s' ELSE '%s' END AS resource_type, SUM(hours) AS total_hours
		FROM hours
		WHERE week_start_date >= ? AND week_start_date <= ?
		GROUP BY resource_type
		ORDER BY resource_type`, poolPredicate(), constants.PoolLabel, constants.NamedLabel)

	result, err := s.hoursByLabel(ctx, stmt, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) HoursByDemandType(ctx context.Context, w storage.Window) ([]storage.HoursByLabel, error) {
	const op = "storage.sqlstore.HoursByDemandType"

	result, err := s.hoursByLabel(ctx, `
		SELECT demand_type, SUM(hours) AS total_hours
		FROM hours
		WHERE week_start_date >= ? AND week_start_date <= ?
		GROUP BY demand_type
		ORDER BY demand_type`, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) hoursByLabel(ctx context.Context, stmt string, w storage.Window) ([]storage.HoursByLabel, error) {
	rows, err := s.db.QueryContext(ctx, stmt, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []storage.HoursByLabel{}
	for rows.Next() {
		var h storage.HoursByLabel
		if err := rows.Scan(&h.Label, &h.TotalHours); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		result = append(result, h)
	}

	return result, rows.Err()
}

func (s *Storage) Projects(ctx context.Context) ([]string, error) {
	const op = "storage.sqlstore.Projects"

	result, err := s.distinctValues(ctx, `SELECT DISTINCT project FROM hours ORDER BY project`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) Phases(ctx context.Context) ([]string, error) {
	const op = "storage.sqlstore.Phases"

	result, err := s.distinctValues(ctx, `SELECT DISTINCT phase FROM hours WHERE phase IS NOT NULL AND phase <> '' ORDER BY phase`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) distinctValues(ctx context.Context, stmt string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// DateRange reports the span of stored weeks regardless of any window.
func (s *Storage) DateRange(ctx context.Context) (storage.DataDateRange, error) {
	const op = "storage.sqlstore.DateRange"

	var (
		r                storage.DataDateRange
		earliest, latest sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(week_start_date), MAX(week_start_date), COUNT(DISTINCT week_start_date)
		FROM hours
	`).Scan(&earliest, &latest, &r.WeekCount)
	if err != nil {
		return storage.DataDateRange{}, fmt.Errorf("%s: %w", op, err)
	}

	if earliest.Valid {
		r.EarliestDate = &earliest.String
	}
	if latest.Valid {
		r.LatestDate = &latest.String
	}

	return r, nil
}

// splitProjects turns a GROUP_CONCAT result into a sorted list. Project
// names that themselves contain commas come back split.
func splitProjects(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return []string{}
	}

	projects := strings.Split(v.String, ",")
	sort.Strings(projects)
	return projects
}
