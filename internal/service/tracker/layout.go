package tracker

// The Detail sheet is positional: nothing is located by header text.
const (
	DetailSheet = "Detail"

	headerRow    = 0 // A: project name, B: project ID, H+: A/P flag per week
	dateRow      = 2 // H+: week date
	phaseRow     = 3 // H+: phase label
	milestoneRow = 4 // H+: milestone label
	firstDataRow = 5 // one row per employee

	minRows = firstDataRow + 1

	colProjectName = 0
	colProjectID   = 1

	colEmployeeID   = 1
	colResourceName = 2
	colRate         = 3
	colActivityID   = 4

	firstWeekCol = 7 // column H

	minYear  = 2020
	maxYear  = 2035
	maxHours = 500
)
