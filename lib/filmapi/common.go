package filmapi

import (
	"github.com/FSXAC/Emulsion/lib/filmerror"
)

// ErrorResponse is the envelope for all error replies.
type ErrorResponse struct {
	Error filmerror.PublicErrorDetail `json:"error"`
}

// OkResponse acknowledges an operation with no other payload, e.g. a
// delete.
type OkResponse struct {
	Ok bool `json:"ok"`
}

// StatsResponse summarizes the database contents.
type StatsResponse struct {
	Rolls            int            `json:"rolls"`
	ChemistryBatches int            `json:"chemistry_batches"`
	DevChartEntries  int            `json:"dev_chart_entries"`
	RollsByStatus    map[string]int `json:"rolls_by_status"`
}
