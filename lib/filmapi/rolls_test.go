package filmapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FSXAC/Emulsion/lib/emulsiondb"
)

func TestFilmRollRequestValidation(t *testing.T) {
	valid := FilmRollRequest{
		OrderID:           "film-0001",
		FilmStockName:     "Portra 400",
		FilmFormat:        "120",
		ExpectedExposures: 10,
		FilmCost:          12.5,
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.OrderID = ""
	assert.Error(t, missing.Validate())

	badStars := valid
	stars := 6
	badStars.Stars = &stars
	assert.Error(t, badStars.Validate())

	badPush := valid
	push := 4.0
	badPush.PushPullStops = &push
	assert.Error(t, badPush.Validate())

	negativeCost := valid
	negativeCost.FilmCost = -1
	assert.Error(t, negativeCost.Validate())
}

func TestAssignChemistryRequestValidation(t *testing.T) {
	id := "batch-1"
	cost := 8.0

	assert.NoError(t, AssignChemistryRequest{ChemistryID: &id}.Validate())
	assert.NoError(t, AssignChemistryRequest{LabDevCost: &cost}.Validate())
	assert.Error(t, AssignChemistryRequest{}.Validate())
	assert.Error(t, AssignChemistryRequest{ChemistryID: &id, LabDevCost: &cost}.Validate())
}

func TestRateRollRequestValidation(t *testing.T) {
	assert.NoError(t, RateRollRequest{Stars: 3}.Validate())
	assert.Error(t, RateRollRequest{Stars: 0}.Validate())
	assert.Error(t, RateRollRequest{Stars: 6}.Validate())
}

func TestFilmRollUpdateAppliesOnlySetFields(t *testing.T) {
	stars := 4
	roll := &emulsiondb.FilmRoll{
		OrderID:       "film-0001",
		FilmStockName: "Portra 400",
		FilmCost:      12.5,
	}

	stock := "Portra 160"
	update := FilmRollUpdate{FilmStockName: &stock, Stars: &stars}
	update.ApplyTo(roll)

	assert.Equal(t, "Portra 160", roll.FilmStockName)
	assert.Equal(t, "film-0001", roll.OrderID)
	assert.Equal(t, 12.5, roll.FilmCost)
	require.NotNil(t, roll.Stars)
	assert.Equal(t, 4, *roll.Stars)
}

func TestNewFilmRollItemIncludesDerivedFields(t *testing.T) {
	loaded := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	unloaded := time.Date(2023, time.May, 11, 0, 0, 0, 0, time.UTC)
	labCost := 8.0
	exposures := 40

	item := NewFilmRollItem(&emulsiondb.FilmRoll{
		ID:              "roll-1",
		OrderID:         "film-0001",
		FilmStockName:   "Portra 400",
		FilmCost:        12.0,
		LabDevCost:      &labCost,
		ActualExposures: &exposures,
		DateLoaded:      &loaded,
		DateUnloaded:    &unloaded,
	})

	assert.Equal(t, "DEVELOPED", item.Status)
	require.NotNil(t, item.DevCost)
	assert.Equal(t, 8.0, *item.DevCost)
	require.NotNil(t, item.TotalCost)
	assert.Equal(t, 20.0, *item.TotalCost)
	require.NotNil(t, item.CostPerShot)
	assert.InDelta(t, 0.5, *item.CostPerShot, 0.0001)
	require.NotNil(t, item.DurationDays)
	assert.Equal(t, 10, *item.DurationDays)
}
