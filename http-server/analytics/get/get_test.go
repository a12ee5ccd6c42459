package get

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"demand-planning/internal/service/analytics"
	"demand-planning/internal/storage"
)

var window = storage.Window{Start: "2024-01-01", End: "2024-03-31"}

const windowQuery = "startDate=2024-01-01&endDate=2024-03-31"

type MockAnalytics struct {
	mock.Mock
}

func (m *MockAnalytics) DemandTrend(ctx context.Context, w storage.Window, f storage.TrendFilter) ([]storage.WeeklyDemand, error) {
	args := m.Called(ctx, w, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.WeeklyDemand), args.Error(1)
}

func (m *MockAnalytics) DemandByType(ctx context.Context, w storage.Window) ([]storage.WeeklyDemandByType, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.WeeklyDemandByType), args.Error(1)
}

func (m *MockAnalytics) ImpliedFTE(ctx context.Context, w storage.Window) ([]analytics.WeeklyFTE, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.WeeklyFTE), args.Error(1)
}

func (m *MockAnalytics) FTESummary(ctx context.Context, w storage.Window) (analytics.FTESummary, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(analytics.FTESummary), args.Error(1)
}

func (m *MockAnalytics) OverAllocatedPools(ctx context.Context, w storage.Window, threshold float64) ([]analytics.OverAllocatedPool, error) {
	args := m.Called(ctx, w, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.OverAllocatedPool), args.Error(1)
}

func (m *MockAnalytics) OverAllocatedIndividuals(ctx context.Context, w storage.Window, threshold float64) ([]analytics.OverAllocatedIndividual, error) {
	args := m.Called(ctx, w, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.OverAllocatedIndividual), args.Error(1)
}

func (m *MockAnalytics) UnderAllocated(ctx context.Context, w storage.Window, utilizationThreshold float64, minWeeks int) ([]analytics.UnderAllocatedResource, error) {
	args := m.Called(ctx, w, utilizationThreshold, minWeeks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.UnderAllocatedResource), args.Error(1)
}

func (m *MockAnalytics) Heatmap(ctx context.Context, w storage.Window, topN int) ([]analytics.HeatmapCell, error) {
	args := m.Called(ctx, w, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.HeatmapCell), args.Error(1)
}

func (m *MockAnalytics) Projects(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAnalytics) Phases(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAnalytics) DateRange(ctx context.Context) (storage.DataDateRange, error) {
	args := m.Called(ctx)
	return args.Get(0).(storage.DataDateRange), args.Error(1)
}

func serve(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestParseWindow(t *testing.T) {
	today := time.Date(2024, time.March, 5, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   string
		want    storage.Window
		wantErr bool
	}{
		{"defaults", "", storage.Window{Start: "2024-03-05", End: "2024-09-03"}, false},
		{"explicit", windowQuery, window, false},
		{"start only", "startDate=2024-02-01", storage.Window{Start: "2024-02-01", End: "2024-09-03"}, false},
		{"bad start", "startDate=03/05/2024", storage.Window{}, true},
		{"bad end", "endDate=soon", storage.Window{}, true},
		{"reversed", "startDate=2024-05-01&endDate=2024-04-01", storage.Window{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			got, err := parseWindow(r, today)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverAllocatedIndividuals_DefaultThreshold(t *testing.T) {
	m := new(MockAnalytics)
	m.On("OverAllocatedIndividuals", mock.Anything, window, 45.0).Return([]analytics.OverAllocatedIndividual{
		{EmployeeID: "E2", ResourceName: "Bob", WeekStartDate: "2024-01-07", TotalHours: 50, HoursOver: 5, RiskLevel: analytics.RiskWarning, Projects: []string{"Apollo"}},
	}, nil)

	rr := serve(OverAllocatedIndividuals(slog.Default(), m), "/api/analytics/over-allocated-individuals?"+windowQuery)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "E2", got[0]["employeeId"])
	assert.Equal(t, 5.0, got[0]["hoursOver"])
	assert.Equal(t, "Warning", got[0]["riskLevel"])

	m.AssertExpectations(t)
}

func TestOverAllocatedPools_InvalidThreshold(t *testing.T) {
	m := new(MockAnalytics)

	rr := serve(OverAllocatedPools(slog.Default(), m), "/api/analytics/over-allocated-pools?threshold=lots")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	m.AssertNotCalled(t, "OverAllocatedPools", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnderAllocated_Params(t *testing.T) {
	m := new(MockAnalytics)
	m.On("UnderAllocated", mock.Anything, window, 50.0, 2).Return([]analytics.UnderAllocatedResource{}, nil)

	rr := serve(UnderAllocated(slog.Default(), m), "/api/analytics/under-allocated?threshold=50&minWeeks=2&"+windowQuery)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = serve(UnderAllocated(slog.Default(), m), "/api/analytics/under-allocated?minWeeks=0")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHeatmap_TopN(t *testing.T) {
	m := new(MockAnalytics)
	m.On("Heatmap", mock.Anything, window, 5).Return([]analytics.HeatmapCell{}, nil)

	rr := serve(Heatmap(slog.Default(), m), "/api/analytics/heatmap?topN=5&"+windowQuery)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(Heatmap(slog.Default(), m), "/api/analytics/heatmap?topN=-1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	m.AssertNumberOfCalls(t, "Heatmap", 1)
}

func TestDemandTrend_Filters(t *testing.T) {
	m := new(MockAnalytics)
	filter := storage.TrendFilter{DemandType: storage.SoftDemand, Project: "Apollo", Phase: "Build"}
	m.On("DemandTrend", mock.Anything, window, filter).Return([]storage.WeeklyDemand{
		{WeekStartDate: "2024-01-07", TotalHours: 80, ResourceCount: 2, ProjectCount: 1},
	}, nil)

	rr := serve(DemandTrend(slog.Default(), m), "/api/analytics/demand-trend?demandType=Soft+Demand&project=Apollo&phase=Build&"+windowQuery)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"weekStartDate":"2024-01-07","totalHours":80,"resourceCount":2,"projectCount":1}]`, rr.Body.String())

	rr = serve(DemandTrend(slog.Default(), m), "/api/analytics/demand-trend?demandType=Maybe")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestImpliedFTE_Combined(t *testing.T) {
	m := new(MockAnalytics)
	m.On("ImpliedFTE", mock.Anything, window).Return([]analytics.WeeklyFTE{
		{WeekStartDate: "2024-01-07", TotalHours: 100, ImpliedFTE: 2.5},
	}, nil)
	m.On("FTESummary", mock.Anything, window).Return(analytics.FTESummary{AvgFTE: 2.5, PeakFTE: 2.5, MinFTE: 2.5}, nil)

	rr := serve(ImpliedFTE(slog.Default(), m), "/api/analytics/implied-fte?"+windowQuery)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"data": [{"weekStartDate":"2024-01-07","totalHours":100,"impliedFTE":2.5}],
		"summary": {"avgFTE":2.5,"peakFTE":2.5,"minFTE":2.5}
	}`, rr.Body.String())
}

func TestProvidersFailure(t *testing.T) {
	m := new(MockAnalytics)
	m.On("DemandByType", mock.Anything, window).Return(nil, errors.New("db down"))
	m.On("Projects", mock.Anything).Return(nil, errors.New("db down"))

	rr := serve(DemandByType(slog.Default(), m), "/api/analytics/demand-by-type?"+windowQuery)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch demand by type data"}`, rr.Body.String())

	rr = serve(Projects(slog.Default(), m), "/api/analytics/filters/projects")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestDateRange_Empty(t *testing.T) {
	m := new(MockAnalytics)
	m.On("DateRange", mock.Anything).Return(storage.DataDateRange{}, nil)

	rr := serve(DateRange(slog.Default(), m), "/api/analytics/date-range")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"earliestDate":null,"latestDate":null,"weekCount":0}`, rr.Body.String())
}
