package generate_excel

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"demand-planning/internal/service/analytics"
	"demand-planning/internal/storage"
)

var window = storage.Window{Start: "2024-01-01", End: "2024-03-31"}

type MockReportSource struct {
	mock.Mock
}

func (m *MockReportSource) DemandTrend(ctx context.Context, w storage.Window, f storage.TrendFilter) ([]storage.WeeklyDemand, error) {
	args := m.Called(ctx, w, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.WeeklyDemand), args.Error(1)
}

func (m *MockReportSource) ImpliedFTE(ctx context.Context, w storage.Window) ([]analytics.WeeklyFTE, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.WeeklyFTE), args.Error(1)
}

func (m *MockReportSource) OverAllocatedIndividuals(ctx context.Context, w storage.Window, threshold float64) ([]analytics.OverAllocatedIndividual, error) {
	args := m.Called(ctx, w, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.OverAllocatedIndividual), args.Error(1)
}

func (m *MockReportSource) OverAllocatedPools(ctx context.Context, w storage.Window, threshold float64) ([]analytics.OverAllocatedPool, error) {
	args := m.Called(ctx, w, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.OverAllocatedPool), args.Error(1)
}

func (m *MockReportSource) Heatmap(ctx context.Context, w storage.Window, topN int) ([]analytics.HeatmapCell, error) {
	args := m.Called(ctx, w, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.HeatmapCell), args.Error(1)
}

func newSource(trend []storage.WeeklyDemand) *MockReportSource {
	src := new(MockReportSource)
	src.On("DemandTrend", mock.Anything, window, storage.TrendFilter{}).Return(trend, nil)
	src.On("ImpliedFTE", mock.Anything, window).Return([]analytics.WeeklyFTE{
		{WeekStartDate: "2024-01-07", TotalHours: 90, ImpliedFTE: 2.25},
	}, nil)
	src.On("OverAllocatedIndividuals", mock.Anything, window, analytics.DefaultIndividualThreshold).Return([]analytics.OverAllocatedIndividual{
		{EmployeeID: "E2", ResourceName: "Bob", WeekStartDate: "2024-01-07", TotalHours: 50, HoursOver: 5, RiskLevel: analytics.RiskWarning, Projects: []string{"Apollo", "Zeus"}},
	}, nil)
	src.On("OverAllocatedPools", mock.Anything, window, analytics.DefaultPoolThreshold).Return([]analytics.OverAllocatedPool{}, nil)
	src.On("Heatmap", mock.Anything, window, analytics.DefaultHeatmapTopN).Return([]analytics.HeatmapCell{
		{EmployeeID: "E2", ResourceName: "Bob", WeekStartDate: "2024-01-07", Hours: 50, UtilizationPct: 125},
	}, nil)
	return src
}

func TestGenerateReport(t *testing.T) {
	src := newSource([]storage.WeeklyDemand{
		{WeekStartDate: "2024-01-07", TotalHours: 90, ResourceCount: 2, ProjectCount: 2},
	})

	data, err := NewService(src).GenerateReport(context.Background(), window)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Weekly Demand", "Over-Allocated", "Pools", "Heatmap"}, f.GetSheetList())

	weekly, err := f.GetRows("Weekly Demand")
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	assert.Equal(t, []string{"Week Start", "Total Hours", "Implied FTE", "Resources", "Projects"}, weekly[0])
	assert.Equal(t, []string{"2024-01-07", "90", "2.25", "2", "2"}, weekly[1])

	over, err := f.GetRows("Over-Allocated")
	require.NoError(t, err)
	require.Len(t, over, 2)
	assert.Equal(t, "Warning", over[1][5])
	assert.Equal(t, "Apollo, Zeus", over[1][6])

	pools, err := f.GetRows("Pools")
	require.NoError(t, err)
	assert.Len(t, pools, 1)

	heat, err := f.GetRows("Heatmap")
	require.NoError(t, err)
	require.Len(t, heat, 2)
	assert.Equal(t, "No", heat[1][5])
}

func TestGenerateReport_NoData(t *testing.T) {
	src := newSource([]storage.WeeklyDemand{})

	_, err := NewService(src).GenerateReport(context.Background(), window)

	assert.ErrorIs(t, err, storage.ErrNoData)
}

func TestGenerateReport_SourceError(t *testing.T) {
	src := new(MockReportSource)
	src.On("DemandTrend", mock.Anything, window, storage.TrendFilter{}).Return(nil, errors.New("db down"))
	src.On("ImpliedFTE", mock.Anything, window).Return([]analytics.WeeklyFTE{}, nil)
	src.On("OverAllocatedIndividuals", mock.Anything, window, mock.Anything).Return([]analytics.OverAllocatedIndividual{}, nil)
	src.On("OverAllocatedPools", mock.Anything, window, mock.Anything).Return([]analytics.OverAllocatedPool{}, nil)
	src.On("Heatmap", mock.Anything, window, mock.Anything).Return([]analytics.HeatmapCell{}, nil)

	_, err := NewService(src).GenerateReport(context.Background(), window)

	assert.ErrorContains(t, err, "db down")
	assert.NotErrorIs(t, err, storage.ErrNoData)
}
