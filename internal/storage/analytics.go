package storage

// Window is a closed range of ISO dates compared against week_start_date.
type Window struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

// TrendFilter narrows the weekly demand trend. Empty fields match everything.
type TrendFilter struct {
	DemandType DemandType
	Project    string
	Phase      string
}

type WeeklyDemand struct {
	WeekStartDate string  `json:"weekStartDate"`
	TotalHours    float64 `json:"totalHours"`
	ResourceCount int     `json:"resourceCount"`
	ProjectCount  int     `json:"projectCount"`
}

type WeeklyDemandByType struct {
	WeekStartDate string     `json:"weekStartDate"`
	DemandType    DemandType `json:"demandType"`
	TotalHours    float64    `json:"totalHours"`
}

type WeeklyHours struct {
	WeekStartDate string
	TotalHours    float64
}

// ResourceWeek is one employee's hours summed across projects for one week.
type ResourceWeek struct {
	EmployeeID    string
	ResourceName  string
	WeekStartDate string
	Hours         float64
}

// AllocationWeek is a resource-week that crossed an allocation threshold.
type AllocationWeek struct {
	EmployeeID    string
	ResourceName  string
	WeekStartDate string
	TotalHours    float64
	Projects      []string
}

type ResourceAverage struct {
	EmployeeID   string
	ResourceName string
	AvgHours     float64
	WeeksCount   int
}

// HeatmapWeek is a resource-week of one of the top-N resources by peak week.
type HeatmapWeek struct {
	EmployeeID    string
	ResourceName  string
	WeekStartDate string
	Hours         float64
	PeakHours     float64
}

type WindowTotals struct {
	TotalHours      float64
	UniqueResources int
	UniqueProjects  int
}

type HoursByLabel struct {
	Label      string
	TotalHours float64
}

type DataDateRange struct {
	EarliestDate *string `json:"earliestDate"`
	LatestDate   *string `json:"latestDate"`
	WeekCount    int     `json:"weekCount"`
}
