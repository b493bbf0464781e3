package filmapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/FSXAC/Emulsion/lib/emulsiondb"
)

// ChemistryBatchRequest creates a new chemistry batch.
type ChemistryBatchRequest struct {
	Name          string  `json:"name"`
	ChemistryType string  `json:"chemistry_type"`
	DateMixed     *Date   `json:"date_mixed"`
	DeveloperCost float64 `json:"developer_cost"`
	FixerCost     float64 `json:"fixer_cost"`
	OtherCost     float64 `json:"other_cost"`
	RollsOffset   int     `json:"rolls_offset"`
	Notes         *string `json:"notes"`
}

func (r ChemistryBatchRequest) Validate() error {
	var result *multierror.Error

	if r.Name == "" {
		result = multierror.Append(result, fmt.Errorf("name is required"))
	}
	if r.ChemistryType == "" {
		result = multierror.Append(result, fmt.Errorf("chemistry_type is required"))
	}
	if r.DeveloperCost < 0 || r.FixerCost < 0 || r.OtherCost < 0 {
		result = multierror.Append(result, fmt.Errorf("costs must not be negative"))
	}
	if r.RollsOffset < 0 {
		result = multierror.Append(result, fmt.Errorf("rolls_offset must not be negative"))
	}

	return result.ErrorOrNil()
}

func (r ChemistryBatchRequest) ToModel() *emulsiondb.ChemistryBatch {
	return &emulsiondb.ChemistryBatch{
		Name:          r.Name,
		ChemistryType: strings.ToUpper(r.ChemistryType),
		DateMixed:     timeOrNil(r.DateMixed),
		DeveloperCost: r.DeveloperCost,
		FixerCost:     r.FixerCost,
		OtherCost:     r.OtherCost,
		RollsOffset:   r.RollsOffset,
		Notes:         r.Notes,
	}
}

// ChemistryBatchUpdate partially updates a batch; only set fields are
// applied. DateRetired set to a value retires the batch.
type ChemistryBatchUpdate struct {
	Name          *string  `json:"name"`
	ChemistryType *string  `json:"chemistry_type"`
	DateMixed     *Date    `json:"date_mixed"`
	DateRetired   *Date    `json:"date_retired"`
	DeveloperCost *float64 `json:"developer_cost"`
	FixerCost     *float64 `json:"fixer_cost"`
	OtherCost     *float64 `json:"other_cost"`
	RollsOffset   *int     `json:"rolls_offset"`
	Notes         *string  `json:"notes"`
}

func (u ChemistryBatchUpdate) ApplyTo(batch *emulsiondb.ChemistryBatch) {
	if u.Name != nil {
		batch.Name = *u.Name
	}
	if u.ChemistryType != nil {
		batch.ChemistryType = strings.ToUpper(*u.ChemistryType)
	}
	if u.DateMixed != nil {
		batch.DateMixed = timeOrNil(u.DateMixed)
	}
	if u.DateRetired != nil {
		batch.DateRetired = timeOrNil(u.DateRetired)
	}
	if u.DeveloperCost != nil {
		batch.DeveloperCost = *u.DeveloperCost
	}
	if u.FixerCost != nil {
		batch.FixerCost = *u.FixerCost
	}
	if u.OtherCost != nil {
		batch.OtherCost = *u.OtherCost
	}
	if u.RollsOffset != nil {
		batch.RollsOffset = *u.RollsOffset
	}
	if u.Notes != nil {
		batch.Notes = u.Notes
	}
}

// ChemistryBatchItem is a batch as served to clients, with the derived
// cost and timing attributes included.
type ChemistryBatchItem struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	ChemistryType            string    `json:"chemistry_type"`
	DateMixed                *Date     `json:"date_mixed"`
	DateRetired              *Date     `json:"date_retired"`
	DeveloperCost            float64   `json:"developer_cost"`
	FixerCost                float64   `json:"fixer_cost"`
	OtherCost                float64   `json:"other_cost"`
	RollsOffset              int       `json:"rolls_offset"`
	Notes                    *string   `json:"notes"`
	BatchCost                float64   `json:"batch_cost"`
	RollsDeveloped           int       `json:"rolls_developed"`
	CostPerRoll              *float64  `json:"cost_per_roll"`
	DevelopmentTimeSeconds   *int      `json:"development_time_seconds"`
	DevelopmentTimeFormatted *string   `json:"development_time_formatted"`
	IsActive                 bool      `json:"is_active"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func NewChemistryBatchItem(batch *emulsiondb.ChemistryBatch) ChemistryBatchItem {
	return ChemistryBatchItem{
		ID:                       batch.ID,
		Name:                     batch.Name,
		ChemistryType:            batch.ChemistryType,
		DateMixed:                dateOrNil(batch.DateMixed),
		DateRetired:              dateOrNil(batch.DateRetired),
		DeveloperCost:            batch.DeveloperCost,
		FixerCost:                batch.FixerCost,
		OtherCost:                batch.OtherCost,
		RollsOffset:              batch.RollsOffset,
		Notes:                    batch.Notes,
		BatchCost:                batch.BatchCost(),
		RollsDeveloped:           batch.RollsDeveloped(),
		CostPerRoll:              batch.CostPerRoll(),
		DevelopmentTimeSeconds:   batch.DevelopmentTimeSeconds(),
		DevelopmentTimeFormatted: batch.DevelopmentTimeFormatted(),
		IsActive:                 batch.IsActive(),
		CreatedAt:                batch.CreatedAt,
		UpdatedAt:                batch.UpdatedAt,
	}
}

type ChemistryBatchList struct {
	Batches []ChemistryBatchItem `json:"batches"`
	Total   int                  `json:"total"`
}

func NewChemistryBatchList(batches []*emulsiondb.ChemistryBatch, total int) ChemistryBatchList {
	items := make([]ChemistryBatchItem, 0, len(batches))
	for _, batch := range batches {
		items = append(items, NewChemistryBatchItem(batch))
	}
	return ChemistryBatchList{Batches: items, Total: total}
}
