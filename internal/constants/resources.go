package constants

import "strings"

const (
	// HoursPerWeek is the capacity of one full-time resource.
	HoursPerWeek = 40.0

	// PlanningHorizonWeeks is the default analytics window and the divisor
	// used for the average weekly FTE in the realism metrics.
	PlanningHorizonWeeks = 26

	PoolEmployeeIDPrefix = "9999999"

	PoolLabel  = "Pool/Placeholder"
	NamedLabel = "Named Resource"
)

// PoolNamePatterns mark a resource name as an unstaffed or generic allocation.
// Matching is case-insensitive, as LIKE is in both storage dialects.
var PoolNamePatterns = []string{
	"General",
	"Pool",
	"TBD",
	"Placeholder",
	"Offshore",
}

// IsPoolResource classifies a resource as pool/placeholder rather than a
// named individual.
func IsPoolResource(employeeID, resourceName string) bool {
	if strings.HasPrefix(employeeID, PoolEmployeeIDPrefix) {
		return true
	}

	name := strings.ToLower(resourceName)
	for _, p := range PoolNamePatterns {
		if strings.Contains(name, strings.ToLower(p)) {
			return true
		}
	}

	return false
}

// ResourceLabel returns the pool-vs-named class of a resource.
func ResourceLabel(employeeID, resourceName string) string {
	if IsPoolResource(employeeID, resourceName) {
		return PoolLabel
	}
	return NamedLabel
}
