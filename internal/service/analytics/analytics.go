package analytics

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"demand-planning/internal/constants"
	"demand-planning/internal/storage"
)

type Storage interface {
	WeeklyDemand(ctx context.Context, w storage.Window, f storage.TrendFilter) ([]storage.WeeklyDemand, error)
	WeeklyDemandByType(ctx context.Context, w storage.Window) ([]storage.WeeklyDemandByType, error)
	WeeklyHours(ctx context.Context, w storage.Window) ([]storage.WeeklyHours, error)
	ResourceWeeks(ctx context.Context, w storage.Window) ([]storage.ResourceWeek, error)
	PoolWeeksOver(ctx context.Context, w storage.Window, threshold float64) ([]storage.AllocationWeek, error)
	IndividualWeeksOver(ctx context.Context, w storage.Window, threshold float64) ([]storage.AllocationWeek, error)
	ResourceAverages(ctx context.Context, w storage.Window, minWeeks int) ([]storage.ResourceAverage, error)
	HeatmapWeeks(ctx context.Context, w storage.Window, topN int) ([]storage.HeatmapWeek, error)
	WindowTotals(ctx context.Context, w storage.Window) (storage.WindowTotals, error)
	HoursByResourceType(ctx context.Context, w storage.Window) ([]storage.HoursByLabel, error)
	HoursByDemandType(ctx context.Context, w storage.Window) ([]storage.HoursByLabel, error)
	Projects(ctx context.Context) ([]string, error)
	Phases(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) (storage.DataDateRange, error)
}

type WeeklyFTE struct {
	WeekStartDate string  `json:"weekStartDate"`
	TotalHours    float64 `json:"totalHours"`
	ImpliedFTE    float64 `json:"impliedFTE"`
}

type FTESummary struct {
	AvgFTE  float64 `json:"avgFTE"`
	PeakFTE float64 `json:"peakFTE"`
	MinFTE  float64 `json:"minFTE"`
}

type UtilizationBucket struct {
	Bucket     string  `json:"bucket"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type OverAllocatedPool struct {
	ResourceName  string   `json:"resourceName"`
	WeekStartDate string   `json:"weekStartDate"`
	TotalHours    float64  `json:"totalHours"`
	ImpliedFTE    float64  `json:"impliedFTE"`
	Projects      []string `json:"projects"`
}

type OverAllocatedIndividual struct {
	EmployeeID    string    `json:"employeeId"`
	ResourceName  string    `json:"resourceName"`
	WeekStartDate string    `json:"weekStartDate"`
	TotalHours    float64   `json:"totalHours"`
	HoursOver     float64   `json:"hoursOver"`
	RiskLevel     RiskLevel `json:"riskLevel"`
	Projects      []string  `json:"projects"`
}

type UnderAllocatedResource struct {
	EmployeeID        string  `json:"employeeId"`
	ResourceName      string  `json:"resourceName"`
	AvgHoursPerWeek   float64 `json:"avgHoursPerWeek"`
	AvgUtilizationPct float64 `json:"avgUtilizationPct"`
	WeeksCount        int     `json:"weeksCount"`
}

type HeatmapCell struct {
	EmployeeID     string  `json:"employeeId"`
	ResourceName   string  `json:"resourceName"`
	WeekStartDate  string  `json:"weekStartDate"`
	Hours          float64 `json:"hours"`
	UtilizationPct float64 `json:"utilizationPct"`
	IsPool         bool    `json:"isPool"`
}

type ResourceTypeShare struct {
	ResourceType string  `json:"resourceType"`
	TotalHours   float64 `json:"totalHours"`
	PctOfTotal   float64 `json:"pctOfTotal"`
}

type DemandTypeShare struct {
	DemandType string  `json:"demandType"`
	TotalHours float64 `json:"totalHours"`
	PctOfTotal float64 `json:"pctOfTotal"`
}

type Realism struct {
	TotalHours          float64             `json:"totalHours"`
	AvgWeeklyFTE        float64             `json:"avgWeeklyFTE"`
	UniqueResources     int                 `json:"uniqueResources"`
	UniqueProjects      int                 `json:"uniqueProjects"`
	PoolVsNamed         []ResourceTypeShare `json:"poolVsNamed"`
	DemandTypeBreakdown []DemandTypeShare   `json:"demandTypeBreakdown"`
	RealismScore        int                 `json:"realismScore"`
}

// Engine derives demand metrics from aggregates the storage computes. It
// never writes.
type Engine struct {
	storage Storage
}

func NewEngine(storage Storage) *Engine {
	return &Engine{storage: storage}
}

func (e *Engine) DemandTrend(ctx context.Context, w storage.Window, f storage.TrendFilter) ([]storage.WeeklyDemand, error) {
	const op = "service.analytics.DemandTrend"

	trend, err := e.storage.WeeklyDemand(ctx, w, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return trend, nil
}

func (e *Engine) DemandByType(ctx context.Context, w storage.Window) ([]storage.WeeklyDemandByType, error) {
	const op = "service.analytics.DemandByType"

	byType, err := e.storage.WeeklyDemandByType(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return byType, nil
}

// ImpliedFTE converts each week's total hours into headcount at 40h/week.
func (e *Engine) ImpliedFTE(ctx context.Context, w storage.Window) ([]WeeklyFTE, error) {
	const op = "service.analytics.ImpliedFTE"

	weeks, err := e.storage.WeeklyHours(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]WeeklyFTE, 0, len(weeks))
	for _, wk := range weeks {
		result = append(result, WeeklyFTE{
			WeekStartDate: wk.WeekStartDate,
			TotalHours:    wk.TotalHours,
			ImpliedFTE:    round(fte(wk.TotalHours), 2),
		})
	}

	return result, nil
}

// FTESummary is the average, peak and lowest weekly FTE over the window. A
// window without data summarizes to zeros.
func (e *Engine) FTESummary(ctx context.Context, w storage.Window) (FTESummary, error) {
	const op = "service.analytics.FTESummary"

	weeks, err := e.storage.WeeklyHours(ctx, w)
	if err != nil {
		return FTESummary{}, fmt.Errorf("%s: %w", op, err)
	}

	return summarize(weeks), nil
}

func summarize(weeks []storage.WeeklyHours) FTESummary {
	if len(weeks) == 0 {
		return FTESummary{}
	}

	sum := 0.0
	peak, low := weeks[0].TotalHours, weeks[0].TotalHours
	for _, wk := range weeks {
		sum += wk.TotalHours
		peak = max(peak, wk.TotalHours)
		low = min(low, wk.TotalHours)
	}

	return FTESummary{
		AvgFTE:  round(fte(sum/float64(len(weeks))), 2),
		PeakFTE: round(fte(peak), 2),
		MinFTE:  round(fte(low), 2),
	}
}

// UtilizationDistribution buckets every resource-week by percent of a 40h
// week. All six buckets are returned in fixed order, empty ones included.
func (e *Engine) UtilizationDistribution(ctx context.Context, w storage.Window) ([]UtilizationBucket, error) {
	const op = "service.analytics.UtilizationDistribution"

	weeks, err := e.storage.ResourceWeeks(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]UtilizationBucket, len(utilizationBuckets))
	for i, b := range utilizationBuckets {
		result[i].Bucket = b.label
	}

	for _, rw := range weeks {
		result[bucketIndex(round(utilizationPct(rw.Hours), 1))].Count++
	}

	for i := range result {
		result[i].Percentage = percentOf(float64(result[i].Count), float64(len(weeks)))
	}

	return result, nil
}

func (e *Engine) OverAllocatedPools(ctx context.Context, w storage.Window, threshold float64) ([]OverAllocatedPool, error) {
	const op = "service.analytics.OverAllocatedPools"

	weeks, err := e.storage.PoolWeeksOver(ctx, w, threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]OverAllocatedPool, 0, len(weeks))
	for _, wk := range weeks {
		result = append(result, OverAllocatedPool{
			ResourceName:  wk.ResourceName,
			WeekStartDate: wk.WeekStartDate,
			TotalHours:    wk.TotalHours,
			ImpliedFTE:    round(fte(wk.TotalHours), 1),
			Projects:      wk.Projects,
		})
	}

	return result, nil
}

func (e *Engine) OverAllocatedIndividuals(ctx context.Context, w storage.Window, threshold float64) ([]OverAllocatedIndividual, error) {
	const op = "service.analytics.OverAllocatedIndividuals"

	weeks, err := e.storage.IndividualWeeksOver(ctx, w, threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]OverAllocatedIndividual, 0, len(weeks))
	for _, wk := range weeks {
		result = append(result, OverAllocatedIndividual{
			EmployeeID:    wk.EmployeeID,
			ResourceName:  wk.ResourceName,
			WeekStartDate: wk.WeekStartDate,
			TotalHours:    wk.TotalHours,
			HoursOver:     wk.TotalHours - threshold,
			RiskLevel:     riskLevel(wk.TotalHours),
			Projects:      wk.Projects,
		})
	}

	return result, nil
}

// UnderAllocated lists resources observed for at least minWeeks weeks whose
// average utilization stays below utilizationThreshold percent, least
// utilized first.
func (e *Engine) UnderAllocated(ctx context.Context, w storage.Window, utilizationThreshold float64, minWeeks int) ([]UnderAllocatedResource, error) {
	const op = "service.analytics.UnderAllocated"

	averages, err := e.storage.ResourceAverages(ctx, w, minWeeks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := []UnderAllocatedResource{}
	for _, a := range averages {
		pct := round(utilizationPct(a.AvgHours), 1)
		if pct >= utilizationThreshold {
			continue
		}
		result = append(result, UnderAllocatedResource{
			EmployeeID:        a.EmployeeID,
			ResourceName:      a.ResourceName,
			AvgHoursPerWeek:   round(a.AvgHours, 1),
			AvgUtilizationPct: pct,
			WeeksCount:        a.WeeksCount,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].AvgUtilizationPct < result[j].AvgUtilizationPct
	})

	return result, nil
}

func (e *Engine) Heatmap(ctx context.Context, w storage.Window, topN int) ([]HeatmapCell, error) {
	const op = "service.analytics.Heatmap"

	weeks, err := e.storage.HeatmapWeeks(ctx, w, topN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]HeatmapCell, 0, len(weeks))
	for _, wk := range weeks {
		result = append(result, HeatmapCell{
			EmployeeID:     wk.EmployeeID,
			ResourceName:   wk.ResourceName,
			WeekStartDate:  wk.WeekStartDate,
			Hours:          wk.Hours,
			UtilizationPct: round(utilizationPct(wk.Hours), 0),
			IsPool:         constants.IsPoolResource(wk.EmployeeID, wk.ResourceName),
		})
	}

	return result, nil
}

// DemandRealism summarizes the window and scores how much of the demand is
// staffed by named people rather than pools.
func (e *Engine) DemandRealism(ctx context.Context, w storage.Window) (Realism, error) {
	const op = "service.analytics.DemandRealism"

	var (
		totals     storage.WindowTotals
		byResource []storage.HoursByLabel
		byDemand   []storage.HoursByLabel
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = e.storage.WindowTotals(gCtx, w)
		return err
	})
	g.Go(func() (err error) {
		byResource, err = e.storage.HoursByResourceType(gCtx, w)
		return err
	})
	g.Go(func() (err error) {
		byDemand, err = e.storage.HoursByDemandType(gCtx, w)
		return err
	})
	if err := g.Wait(); err != nil {
		return Realism{}, fmt.Errorf("%s: %w", op, err)
	}

	r := Realism{
		TotalHours:          totals.TotalHours,
		AvgWeeklyFTE:        round(fte(totals.TotalHours)/constants.PlanningHorizonWeeks, 1),
		UniqueResources:     totals.UniqueResources,
		UniqueProjects:      totals.UniqueProjects,
		PoolVsNamed:         make([]ResourceTypeShare, 0, len(byResource)),
		DemandTypeBreakdown: make([]DemandTypeShare, 0, len(byDemand)),
	}

	namedPct := 0.0
	for _, l := range byResource {
		share := ResourceTypeShare{
			ResourceType: l.Label,
			TotalHours:   l.TotalHours,
			PctOfTotal:   percentOf(l.TotalHours, totals.TotalHours),
		}
		if share.ResourceType == constants.NamedLabel {
			namedPct = share.PctOfTotal
		}
		r.PoolVsNamed = append(r.PoolVsNamed, share)
	}

	for _, l := range byDemand {
		r.DemandTypeBreakdown = append(r.DemandTypeBreakdown, DemandTypeShare{
			DemandType: l.Label,
			TotalHours: l.TotalHours,
			PctOfTotal: percentOf(l.TotalHours, totals.TotalHours),
		})
	}

	r.RealismScore = realismScore(namedPct)

	return r, nil
}

func (e *Engine) Projects(ctx context.Context) ([]string, error) {
	const op = "service.analytics.Projects"

	projects, err := e.storage.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

func (e *Engine) Phases(ctx context.Context) ([]string, error) {
	const op = "service.analytics.Phases"

	phases, err := e.storage.Phases(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return phases, nil
}

func (e *Engine) DateRange(ctx context.Context) (storage.DataDateRange, error) {
	const op = "service.analytics.DateRange"

	r, err := e.storage.DateRange(ctx)
	if err != nil {
		return storage.DataDateRange{}, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}
