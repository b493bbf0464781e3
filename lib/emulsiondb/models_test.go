package emulsiondb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(value string) *time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &t
}

func intOf(v int) *int           { return &v }
func floatOf(v float64) *float64 { return &v }
func strOf(v string) *string     { return &v }

func TestRollStatusPrecedence(t *testing.T) {
	for _, tc := range []struct {
		name string
		roll FilmRoll
		want string
	}{
		{"empty", FilmRoll{}, StatusNew},
		{"loaded", FilmRoll{DateLoaded: datePtr("2023-05-01")}, StatusLoaded},
		{"unloaded", FilmRoll{DateLoaded: datePtr("2023-05-01"), DateUnloaded: datePtr("2023-05-20")}, StatusExposed},
		{"unloaded without load date", FilmRoll{DateUnloaded: datePtr("2023-05-20")}, StatusExposed},
		{"chemistry assigned", FilmRoll{ChemistryID: strOf("batch-1")}, StatusDeveloped},
		{"lab developed", FilmRoll{LabDevCost: floatOf(8)}, StatusDeveloped},
		{"rated", FilmRoll{Stars: intOf(4)}, StatusScanned},
		{"rated outranks everything", FilmRoll{
			Stars:        intOf(3),
			ChemistryID:  strOf("batch-1"),
			DateLoaded:   datePtr("2023-05-01"),
			DateUnloaded: datePtr("2023-05-20"),
		}, StatusScanned},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.roll.Status())
		})
	}
}

func TestRollDevCostPrefersLabCost(t *testing.T) {
	batch := &ChemistryBatch{DeveloperCost: 30, RollCount: 10}
	roll := FilmRoll{LabDevCost: floatOf(8), Chemistry: batch}

	cost := roll.DevCost()
	require.NotNil(t, cost)
	assert.Equal(t, 8.0, *cost)
}

func TestRollDevCostFromBatch(t *testing.T) {
	batch := &ChemistryBatch{DeveloperCost: 20, FixerCost: 10, RollCount: 10}
	roll := FilmRoll{Chemistry: batch}

	cost := roll.DevCost()
	require.NotNil(t, cost)
	assert.InDelta(t, 3.0, *cost, 0.0001)
}

func TestRollDevCostNilWhenUndeveloped(t *testing.T) {
	roll := FilmRoll{}
	assert.Nil(t, roll.DevCost())
}

func TestRollTotalCost(t *testing.T) {
	roll := FilmRoll{FilmCost: 12, LabDevCost: floatOf(8)}

	total := roll.TotalCost()
	require.NotNil(t, total)
	assert.Equal(t, 20.0, *total)
}

func TestRollTotalCostNotMineExcludesFilmCost(t *testing.T) {
	roll := FilmRoll{FilmCost: 12, LabDevCost: floatOf(8), NotMine: true}

	total := roll.TotalCost()
	require.NotNil(t, total)
	assert.Equal(t, 8.0, *total)
}

func TestRollTotalCostNilWithoutDevCost(t *testing.T) {
	roll := FilmRoll{FilmCost: 12}
	assert.Nil(t, roll.TotalCost())
}

func TestRollCostPerShot(t *testing.T) {
	roll := FilmRoll{FilmCost: 12, LabDevCost: floatOf(8), ActualExposures: intOf(40)}

	perShot := roll.CostPerShot()
	require.NotNil(t, perShot)
	assert.InDelta(t, 0.5, *perShot, 0.0001)
}

func TestRollCostPerShotNilCases(t *testing.T) {
	assert.Nil(t, (&FilmRoll{FilmCost: 12, ActualExposures: intOf(36)}).CostPerShot())
	assert.Nil(t, (&FilmRoll{LabDevCost: floatOf(8)}).CostPerShot())
	assert.Nil(t, (&FilmRoll{LabDevCost: floatOf(8), ActualExposures: intOf(0)}).CostPerShot())
}

func TestRollDurationDays(t *testing.T) {
	roll := FilmRoll{
		DateLoaded:   datePtr("2023-05-01"),
		DateUnloaded: datePtr("2023-05-21"),
	}

	days := roll.DurationDays()
	require.NotNil(t, days)
	assert.Equal(t, 20, *days)
}

func TestRollDurationDaysNilWhenIncomplete(t *testing.T) {
	assert.Nil(t, (&FilmRoll{DateLoaded: datePtr("2023-05-01")}).DurationDays())
	assert.Nil(t, (&FilmRoll{}).DurationDays())
}

func TestBatchCostComputations(t *testing.T) {
	batch := ChemistryBatch{
		DeveloperCost: 20,
		FixerCost:     15,
		OtherCost:     5,
		RollCount:     6,
		RollsOffset:   2,
	}

	assert.Equal(t, 40.0, batch.BatchCost())
	assert.Equal(t, 8, batch.RollsDeveloped())

	perRoll := batch.CostPerRoll()
	require.NotNil(t, perRoll)
	assert.Equal(t, 5.0, *perRoll)
}

func TestBatchCostPerRollNilWithZeroRolls(t *testing.T) {
	batch := ChemistryBatch{DeveloperCost: 20}
	assert.Nil(t, batch.CostPerRoll())
}

func TestC41DevelopmentTime(t *testing.T) {
	fresh := ChemistryBatch{ChemistryType: "C41"}
	seconds := fresh.DevelopmentTimeSeconds()
	require.NotNil(t, seconds)
	assert.Equal(t, 210, *seconds)

	// Five developed rolls add 5 * 2% of the base time.
	used := ChemistryBatch{ChemistryType: "C41", RollCount: 5}
	seconds = used.DevelopmentTimeSeconds()
	require.NotNil(t, seconds)
	assert.Equal(t, 231, *seconds)
}

func TestC41DevelopmentTimeCaseInsensitive(t *testing.T) {
	batch := ChemistryBatch{ChemistryType: "c41"}
	assert.NotNil(t, batch.DevelopmentTimeSeconds())
}

func TestDevelopmentTimeNilForOtherChemistry(t *testing.T) {
	batch := ChemistryBatch{ChemistryType: "BW"}
	assert.Nil(t, batch.DevelopmentTimeSeconds())
	assert.Nil(t, batch.DevelopmentTimeFormatted())
}

func TestDevelopmentTimeFormatted(t *testing.T) {
	batch := ChemistryBatch{ChemistryType: "C41", RollCount: 5}
	formatted := batch.DevelopmentTimeFormatted()
	require.NotNil(t, formatted)
	assert.Equal(t, "3:51", *formatted)
}

func TestBatchIsActive(t *testing.T) {
	assert.True(t, (&ChemistryBatch{}).IsActive())
	assert.False(t, (&ChemistryBatch{DateRetired: datePtr("2023-06-01")}).IsActive())
}

func TestDevChartEntryFormatted(t *testing.T) {
	entry := DevChartEntry{DevelopmentTimeSeconds: 368}
	assert.Equal(t, "6:08", entry.DevelopmentTimeFormatted())
}
