package search

import (
	"math"
	"strconv"
	"strings"
)

// costTolerance absorbs floating-point rounding when comparing costs for
// equality.
const costTolerance = 0.01

// Roll is the view of a film roll the evaluator needs: its derived status
// and derived total cost (nil when the cost cannot be computed).
type Roll interface {
	Status() string
	TotalCost() *float64
}

// ApplyComputedFilters evaluates computed filters against already-fetched
// records. With no filters the input is returned unchanged. Otherwise a
// record is retained only if every filter holds; evaluation short-circuits
// on the first failing predicate. Relative order is preserved.
//
// The caller must recompute any reported total as len(result): the store's
// count is no longer valid once computed filters have been applied.
func ApplyComputedFilters[R Roll](records []R, filters []ComputedFilter) []R {
	if len(filters) == 0 {
		return records
	}

	var filtered []R

	for _, record := range records {
		if matchesAll(record, filters) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

func matchesAll(record Roll, filters []ComputedFilter) bool {
	for _, filter := range filters {
		switch filter.Field {
		case ComputedStatus:
			if !matchStatus(record.Status(), filter.Operator, filter.Value) {
				return false
			}
		case ComputedTotalCost:
			if !matchCost(record.TotalCost(), filter.Operator, filter.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// matchStatus compares derived status strings case-insensitively. Only
// equality is meaningful for statuses; any other operator never matches.
func matchStatus(actual string, operator Operator, expected string) bool {
	if operator != OpEquals {
		return false
	}
	return strings.EqualFold(actual, expected)
}

// matchCost excludes records with no computable cost and targets that do
// not parse as numbers.
func matchCost(actual *float64, operator Operator, expected string) bool {
	if actual == nil {
		return false
	}

	target, err := strconv.ParseFloat(expected, 64)
	if err != nil {
		return false
	}

	switch operator {
	case OpEquals:
		return math.Abs(*actual-target) < costTolerance
	case OpGreater:
		return *actual > target
	case OpLess:
		return *actual < target
	case OpGreaterEq:
		return *actual >= target
	case OpLessEq:
		return *actual <= target
	default:
		return false
	}
}
