package storage

import "errors"

var ErrNoData = errors.New("no data in requested window")

type ActualOrProposed string

const (
	Actual   ActualOrProposed = "A"
	Proposed ActualOrProposed = "P"
)

type DemandType string

const (
	HardDemand DemandType = "Hard Demand"
	SoftDemand DemandType = "Soft Demand"
)

// Valid reports whether d is one of the demand types an upload can be tagged with.
func (d DemandType) Valid() bool {
	return d == HardDemand || d == SoftDemand
}

// HourRecord is one employee's hours on one project for one week.
// WeekStartDate is an ISO date that always falls on a Sunday.
type HourRecord struct {
	Project          string           `json:"project"`
	ProjectID        string           `json:"projectId"`
	EmployeeID       string           `json:"employeeId"`
	ResourceName     string           `json:"resourceName"`
	Rate             float64          `json:"rate"`
	ActivityID       string           `json:"activityId"`
	Phase            string           `json:"phase"`
	Milestone        string           `json:"milestone"`
	WeekStartDate    string           `json:"weekStartDate"`
	ActualOrProposed ActualOrProposed `json:"actualOrProposed"`
	Hours            float64          `json:"hours"`
	DemandType       DemandType       `json:"demandType"`
}
