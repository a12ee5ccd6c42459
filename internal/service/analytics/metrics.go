package analytics

import (
	"math"

	"demand-planning/internal/constants"
)

const (
	DefaultPoolThreshold       = 40.0
	DefaultIndividualThreshold = 45.0
	DefaultUnderUtilization    = 60.0
	DefaultMinWeeks            = 4
	DefaultHeatmapTopN         = 20

	criticalHours = 55.0
	warningHours  = 45.0

	realismNamedWeight = 0.6
	realismBase        = 40.0
)

type RiskLevel string

const (
	RiskCritical RiskLevel = "Critical"
	RiskWarning  RiskLevel = "Warning"
	RiskNormal   RiskLevel = "Normal"
)

// riskLevel grades a week's total hours independently of the threshold the
// week was selected with.
func riskLevel(totalHours float64) RiskLevel {
	switch {
	case totalHours > criticalHours:
		return RiskCritical
	case totalHours > warningHours:
		return RiskWarning
	default:
		return RiskNormal
	}
}

// utilizationBuckets are ordered; a value belongs to the first bucket whose
// upper bound it is below.
var utilizationBuckets = []struct {
	label string
	upper float64
}{
	{"0-25%", 25},
	{"25-50%", 50},
	{"50-75%", 75},
	{"75-100%", 100},
	{"100-125%", 125},
	{"125%+", math.Inf(1)},
}

func bucketIndex(utilizationPct float64) int {
	for i, b := range utilizationBuckets {
		if utilizationPct < b.upper {
			return i
		}
	}
	return len(utilizationBuckets) - 1
}

func fte(hours float64) float64 {
	return hours / constants.HoursPerWeek
}

func utilizationPct(hours float64) float64 {
	return hours / constants.HoursPerWeek * 100
}

func percentOf(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round(part*100/total, 1)
}

func realismScore(namedPct float64) int {
	return int(math.Round(namedPct*realismNamedWeight + realismBase))
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
