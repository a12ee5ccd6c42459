package generate_excel

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"demand-planning/internal/service/analytics"
	"demand-planning/internal/storage"
)

type ReportSource interface {
	DemandTrend(ctx context.Context, w storage.Window, f storage.TrendFilter) ([]storage.WeeklyDemand, error)
	ImpliedFTE(ctx context.Context, w storage.Window) ([]analytics.WeeklyFTE, error)
	OverAllocatedIndividuals(ctx context.Context, w storage.Window, threshold float64) ([]analytics.OverAllocatedIndividual, error)
	OverAllocatedPools(ctx context.Context, w storage.Window, threshold float64) ([]analytics.OverAllocatedPool, error)
	Heatmap(ctx context.Context, w storage.Window, topN int) ([]analytics.HeatmapCell, error)
}

type Service struct {
	source ReportSource
}

func NewService(source ReportSource) *Service {
	return &Service{source: source}
}

// table is one report sheet: a header row followed by data rows.
type table struct {
	name    string
	headers []string
	rows    [][]any
	width   float64
}

// GenerateReport renders the window's analytics into an xlsx workbook.
// storage.ErrNoData is returned when the window holds no hours at all.
func (s *Service) GenerateReport(ctx context.Context, w storage.Window) ([]byte, error) {
	const op = "service.generate_excel.GenerateReport"

	var (
		trend       []storage.WeeklyDemand
		fte         []analytics.WeeklyFTE
		individuals []analytics.OverAllocatedIndividual
		pools       []analytics.OverAllocatedPool
		heatmap     []analytics.HeatmapCell
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		trend, err = s.source.DemandTrend(gCtx, w, storage.TrendFilter{})
		return err
	})
	g.Go(func() (err error) {
		fte, err = s.source.ImpliedFTE(gCtx, w)
		return err
	})
	g.Go(func() (err error) {
		individuals, err = s.source.OverAllocatedIndividuals(gCtx, w, analytics.DefaultIndividualThreshold)
		return err
	})
	g.Go(func() (err error) {
		pools, err = s.source.OverAllocatedPools(gCtx, w, analytics.DefaultPoolThreshold)
		return err
	})
	g.Go(func() (err error) {
		heatmap, err = s.source.Heatmap(gCtx, w, analytics.DefaultHeatmapTopN)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}

	if len(trend) == 0 {
		return nil, fmt.Errorf("%s: %s..%s: %w", op, w.Start, w.End, storage.ErrNoData)
	}

	tables := []table{
		weeklyTable(trend, fte),
		individualsTable(individuals),
		poolsTable(pools),
		heatmapTable(heatmap),
	}

	data, err := render(tables)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

func weeklyTable(trend []storage.WeeklyDemand, fte []analytics.WeeklyFTE) table {
	fteByWeek := make(map[string]float64, len(fte))
	for _, f := range fte {
		fteByWeek[f.WeekStartDate] = f.ImpliedFTE
	}

	t := table{
		name:    "Weekly Demand",
		headers: []string{"Week Start", "Total Hours", "Implied FTE", "Resources", "Projects"},
		width:   14,
	}
	for _, d := range trend {
		t.rows = append(t.rows, []any{d.WeekStartDate, d.TotalHours, fteByWeek[d.WeekStartDate], d.ResourceCount, d.ProjectCount})
	}
	return t
}

func individualsTable(individuals []analytics.OverAllocatedIndividual) table {
	t := table{
		name:    "Over-Allocated",
		headers: []string{"Employee ID", "Resource", "Week Start", "Total Hours", "Hours Over", "Risk", "Projects"},
		width:   18,
	}
	for _, i := range individuals {
		t.rows = append(t.rows, []any{i.EmployeeID, i.ResourceName, i.WeekStartDate, i.TotalHours, i.HoursOver, string(i.RiskLevel), strings.Join(i.Projects, ", ")})
	}
	return t
}

func poolsTable(pools []analytics.OverAllocatedPool) table {
	t := table{
		name:    "Pools",
		headers: []string{"Resource", "Week Start", "Total Hours", "Implied FTE", "Projects"},
		width:   18,
	}
	for _, p := range pools {
		t.rows = append(t.rows, []any{p.ResourceName, p.WeekStartDate, p.TotalHours, p.ImpliedFTE, strings.Join(p.Projects, ", ")})
	}
	return t
}

func heatmapTable(cells []analytics.HeatmapCell) table {
	t := table{
		name:    "Heatmap",
		headers: []string{"Employee ID", "Resource", "Week Start", "Hours", "Utilization %", "Pool"},
		width:   16,
	}
	for _, c := range cells {
		pool := "No"
		if c.IsPool {
			pool = "Yes"
		}
		t.rows = append(t.rows, []any{c.EmployeeID, c.ResourceName, c.WeekStartDate, c.Hours, c.UtilizationPct, pool})
	}
	return t
}

func render(tables []table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			err = f.SetSheetName("Sheet1", t.name)
		} else {
			_, err = f.NewSheet(t.name)
		}
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", t.name, err)
		}

		if err := writeTable(f, t, headerStyle); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", t.name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, t table, headerStyle int) error {
	headers := make([]any, len(t.headers))
	for i, h := range t.headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(t.name, "A1", &headers); err != nil {
		return err
	}

	lastHeader := cellName(len(t.headers), 1)
	if err := f.SetCellStyle(t.name, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i, row := range t.rows {
		if err := f.SetSheetRow(t.name, cellName(1, i+2), &row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(t.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	lastCol, _, err := excelize.SplitCellName(lastHeader)
	if err != nil {
		return err
	}

	return f.SetColWidth(t.name, "A", lastCol, t.width)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
