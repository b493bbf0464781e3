// Package filmapi defines the JSON wire types of the HTTP API: request
// schemas with validation, and response schemas carrying both stored and
// derived attributes.
package filmapi

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/FSXAC/Emulsion/lib/emulsiondb"
)

// FilmRollRequest creates a new roll. Optional lifecycle fields may be
// provided up front when importing existing history.
type FilmRollRequest struct {
	OrderID           string   `json:"order_id"`
	FilmStockName     string   `json:"film_stock_name"`
	FilmFormat        string   `json:"film_format"`
	ExpectedExposures int      `json:"expected_exposures"`
	ActualExposures   *int     `json:"actual_exposures"`
	DateLoaded        *Date    `json:"date_loaded"`
	DateUnloaded      *Date    `json:"date_unloaded"`
	PushPullStops     *float64 `json:"push_pull_stops"`
	ChemistryID       *string  `json:"chemistry_id"`
	LabDevCost        *float64 `json:"lab_dev_cost"`
	Stars             *int     `json:"stars"`
	FilmCost          float64  `json:"film_cost"`
	NotMine           bool     `json:"not_mine"`
	Notes             *string  `json:"notes"`
}

func (r FilmRollRequest) Validate() error {
	var result *multierror.Error

	if r.OrderID == "" {
		result = multierror.Append(result, fmt.Errorf("order_id is required"))
	}
	if r.FilmStockName == "" {
		result = multierror.Append(result, fmt.Errorf("film_stock_name is required"))
	}
	if r.FilmFormat == "" {
		result = multierror.Append(result, fmt.Errorf("film_format is required"))
	}
	if r.ExpectedExposures <= 0 {
		result = multierror.Append(result, fmt.Errorf("expected_exposures must be positive"))
	}
	if r.ActualExposures != nil && *r.ActualExposures <= 0 {
		result = multierror.Append(result, fmt.Errorf("actual_exposures must be positive"))
	}
	if r.PushPullStops != nil && (*r.PushPullStops < -3 || *r.PushPullStops > 3) {
		result = multierror.Append(result, fmt.Errorf("push_pull_stops must be between -3 and 3"))
	}
	if r.Stars != nil && (*r.Stars < 0 || *r.Stars > 5) {
		result = multierror.Append(result, fmt.Errorf("stars must be between 0 and 5"))
	}
	if r.FilmCost < 0 {
		result = multierror.Append(result, fmt.Errorf("film_cost must not be negative"))
	}

	return result.ErrorOrNil()
}

func (r FilmRollRequest) ToModel() *emulsiondb.FilmRoll {
	return &emulsiondb.FilmRoll{
		OrderID:           r.OrderID,
		FilmStockName:     r.FilmStockName,
		FilmFormat:        r.FilmFormat,
		ExpectedExposures: r.ExpectedExposures,
		ActualExposures:   r.ActualExposures,
		DateLoaded:        timeOrNil(r.DateLoaded),
		DateUnloaded:      timeOrNil(r.DateUnloaded),
		PushPullStops:     r.PushPullStops,
		ChemistryID:       r.ChemistryID,
		LabDevCost:        r.LabDevCost,
		Stars:             r.Stars,
		FilmCost:          r.FilmCost,
		NotMine:           r.NotMine,
		Notes:             r.Notes,
	}
}

// FilmRollUpdate partially updates a roll; only set fields are applied.
type FilmRollUpdate struct {
	OrderID           *string  `json:"order_id"`
	FilmStockName     *string  `json:"film_stock_name"`
	FilmFormat        *string  `json:"film_format"`
	ExpectedExposures *int     `json:"expected_exposures"`
	ActualExposures   *int     `json:"actual_exposures"`
	DateLoaded        *Date    `json:"date_loaded"`
	DateUnloaded      *Date    `json:"date_unloaded"`
	PushPullStops     *float64 `json:"push_pull_stops"`
	ChemistryID       *string  `json:"chemistry_id"`
	LabDevCost        *float64 `json:"lab_dev_cost"`
	Stars             *int     `json:"stars"`
	FilmCost          *float64 `json:"film_cost"`
	NotMine           *bool    `json:"not_mine"`
	Notes             *string  `json:"notes"`
}

// ApplyTo copies the set fields onto the model.
func (u FilmRollUpdate) ApplyTo(roll *emulsiondb.FilmRoll) {
	if u.OrderID != nil {
		roll.OrderID = *u.OrderID
	}
	if u.FilmStockName != nil {
		roll.FilmStockName = *u.FilmStockName
	}
	if u.FilmFormat != nil {
		roll.FilmFormat = *u.FilmFormat
	}
	if u.ExpectedExposures != nil {
		roll.ExpectedExposures = *u.ExpectedExposures
	}
	if u.ActualExposures != nil {
		roll.ActualExposures = u.ActualExposures
	}
	if u.DateLoaded != nil {
		roll.DateLoaded = timeOrNil(u.DateLoaded)
	}
	if u.DateUnloaded != nil {
		roll.DateUnloaded = timeOrNil(u.DateUnloaded)
	}
	if u.PushPullStops != nil {
		roll.PushPullStops = u.PushPullStops
	}
	if u.ChemistryID != nil {
		roll.ChemistryID = u.ChemistryID
	}
	if u.LabDevCost != nil {
		roll.LabDevCost = u.LabDevCost
	}
	if u.Stars != nil {
		roll.Stars = u.Stars
	}
	if u.FilmCost != nil {
		roll.FilmCost = *u.FilmCost
	}
	if u.NotMine != nil {
		roll.NotMine = *u.NotMine
	}
	if u.Notes != nil {
		roll.Notes = u.Notes
	}
}

// FilmRollItem is a roll as served to clients, including the derived
// attributes computed at read time.
type FilmRollItem struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"order_id"`
	FilmStockName     string    `json:"film_stock_name"`
	FilmFormat        string    `json:"film_format"`
	ExpectedExposures int       `json:"expected_exposures"`
	ActualExposures   *int      `json:"actual_exposures"`
	DateLoaded        *Date     `json:"date_loaded"`
	DateUnloaded      *Date     `json:"date_unloaded"`
	PushPullStops     *float64  `json:"push_pull_stops"`
	ChemistryID       *string   `json:"chemistry_id"`
	LabDevCost        *float64  `json:"lab_dev_cost"`
	Stars             *int      `json:"stars"`
	FilmCost          float64   `json:"film_cost"`
	NotMine           bool      `json:"not_mine"`
	Notes             *string   `json:"notes"`
	Status            string    `json:"status"`
	DevCost           *float64  `json:"dev_cost"`
	TotalCost         *float64  `json:"total_cost"`
	CostPerShot       *float64  `json:"cost_per_shot"`
	DurationDays      *int      `json:"duration_days"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewFilmRollItem(roll *emulsiondb.FilmRoll) FilmRollItem {
	return FilmRollItem{
		ID:                roll.ID,
		OrderID:           roll.OrderID,
		FilmStockName:     roll.FilmStockName,
		FilmFormat:        roll.FilmFormat,
		ExpectedExposures: roll.ExpectedExposures,
		ActualExposures:   roll.ActualExposures,
		DateLoaded:        dateOrNil(roll.DateLoaded),
		DateUnloaded:      dateOrNil(roll.DateUnloaded),
		PushPullStops:     roll.PushPullStops,
		ChemistryID:       roll.ChemistryID,
		LabDevCost:        roll.LabDevCost,
		Stars:             roll.Stars,
		FilmCost:          roll.FilmCost,
		NotMine:           roll.NotMine,
		Notes:             roll.Notes,
		Status:            roll.Status(),
		DevCost:           roll.DevCost(),
		TotalCost:         roll.TotalCost(),
		CostPerShot:       roll.CostPerShot(),
		DurationDays:      roll.DurationDays(),
		CreatedAt:         roll.CreatedAt,
		UpdatedAt:         roll.UpdatedAt,
	}
}

type FilmRollList struct {
	Rolls []FilmRollItem `json:"rolls"`
	Total int            `json:"total"`
}

func NewFilmRollList(rolls []*emulsiondb.FilmRoll, total int) FilmRollList {
	items := make([]FilmRollItem, 0, len(rolls))
	for _, roll := range rolls {
		items = append(items, NewFilmRollItem(roll))
	}
	return FilmRollList{Rolls: items, Total: total}
}

// Lifecycle actions, each backing one PATCH route.

type LoadRollRequest struct {
	DateLoaded Date `json:"date_loaded"`
}

type UnloadRollRequest struct {
	DateUnloaded Date `json:"date_unloaded"`
}

// AssignChemistryRequest assigns either a chemistry batch or a flat lab
// development cost; exactly one must be provided.
type AssignChemistryRequest struct {
	ChemistryID *string  `json:"chemistry_id"`
	LabDevCost  *float64 `json:"lab_dev_cost"`
}

func (r AssignChemistryRequest) Validate() error {
	if (r.ChemistryID == nil) == (r.LabDevCost == nil) {
		return fmt.Errorf("exactly one of chemistry_id or lab_dev_cost must be provided")
	}
	if r.LabDevCost != nil && *r.LabDevCost < 0 {
		return fmt.Errorf("lab_dev_cost must not be negative")
	}
	return nil
}

type RateRollRequest struct {
	Stars           int  `json:"stars"`
	ActualExposures *int `json:"actual_exposures"`
}

func (r RateRollRequest) Validate() error {
	var result *multierror.Error

	if r.Stars < 1 || r.Stars > 5 {
		result = multierror.Append(result, fmt.Errorf("stars must be between 1 and 5"))
	}
	if r.ActualExposures != nil && *r.ActualExposures <= 0 {
		result = multierror.Append(result, fmt.Errorf("actual_exposures must be positive"))
	}

	return result.ErrorOrNil()
}
