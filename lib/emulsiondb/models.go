package emulsiondb

import (
	"fmt"
	"strings"
	"time"
)

// Roll lifecycle statuses, derived from field presence rather than stored.
const (
	StatusNew       = "NEW"
	StatusLoaded    = "LOADED"
	StatusExposed   = "EXPOSED"
	StatusDeveloped = "DEVELOPED"
	StatusScanned   = "SCANNED"
)

// FilmRoll is a film roll record. Chemistry is populated on reads when the
// roll has an assigned batch.
type FilmRoll struct {
	ID                string
	OrderID           string
	FilmStockName     string
	FilmFormat        string
	ExpectedExposures int
	ActualExposures   *int
	DateLoaded        *time.Time
	DateUnloaded      *time.Time
	PushPullStops     *float64
	ChemistryID       *string
	LabDevCost        *float64
	Stars             *int
	FilmCost          float64
	NotMine           bool
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Chemistry *ChemistryBatch
}

// Status derives the lifecycle status from field presence. The checks run
// from latest stage to earliest: a rated roll is SCANNED no matter what
// else is set.
func (r *FilmRoll) Status() string {
	switch {
	case r.Stars != nil:
		return StatusScanned
	case r.ChemistryID != nil || r.LabDevCost != nil:
		return StatusDeveloped
	case r.DateUnloaded != nil:
		return StatusExposed
	case r.DateLoaded != nil:
		return StatusLoaded
	default:
		return StatusNew
	}
}

// DevCost is the development cost: the lab cost when the roll was lab
// developed, otherwise the assigned batch's per-roll cost. Nil when the
// roll has not been developed or the batch cost cannot be computed.
func (r *FilmRoll) DevCost() *float64 {
	if r.LabDevCost != nil {
		v := *r.LabDevCost
		return &v
	}
	if r.Chemistry == nil {
		return nil
	}
	return r.Chemistry.CostPerRoll()
}

// TotalCost is film cost plus development cost. Rolls flagged not_mine
// only carry the development cost, since the film was not paid for.
func (r *FilmRoll) TotalCost() *float64 {
	devCost := r.DevCost()
	if devCost == nil {
		return nil
	}

	if r.NotMine {
		return devCost
	}

	total := r.FilmCost + *devCost
	return &total
}

// CostPerShot is TotalCost divided by actual exposures; nil when either is
// unavailable or exposures is zero.
func (r *FilmRoll) CostPerShot() *float64 {
	total := r.TotalCost()
	if total == nil || r.ActualExposures == nil || *r.ActualExposures == 0 {
		return nil
	}
	v := *total / float64(*r.ActualExposures)
	return &v
}

// DurationDays is the number of days the roll spent loaded in a camera.
func (r *FilmRoll) DurationDays() *int {
	if r.DateLoaded == nil || r.DateUnloaded == nil {
		return nil
	}
	days := int(r.DateUnloaded.Sub(*r.DateLoaded).Hours() / 24)
	return &days
}

// c41BaseSeconds is the base C41 development time (3:30). Each developed
// roll exhausts the developer slightly, adding 2% of the base time.
const c41BaseSeconds = 210

// ChemistryBatch tracks a mixed batch of developer/fixer chemistry.
// RollCount is filled in by the store from the referencing rolls;
// RollsOffset is a manual adjustment (e.g. to simulate stale chemistry).
type ChemistryBatch struct {
	ID            string
	Name          string
	ChemistryType string
	DateMixed     *time.Time
	DateRetired   *time.Time
	DeveloperCost float64
	FixerCost     float64
	OtherCost     float64
	RollsOffset   int
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	RollCount int
}

func (b *ChemistryBatch) BatchCost() float64 {
	return b.DeveloperCost + b.FixerCost + b.OtherCost
}

func (b *ChemistryBatch) RollsDeveloped() int {
	return b.RollCount + b.RollsOffset
}

// CostPerRoll is batch cost spread over developed rolls; nil before the
// batch has developed anything.
func (b *ChemistryBatch) CostPerRoll() *float64 {
	rolls := b.RollsDeveloped()
	if rolls == 0 {
		return nil
	}
	v := b.BatchCost() / float64(rolls)
	return &v
}

// DevelopmentTimeSeconds calculates the C41 development time based on how
// many rolls the batch has seen. Nil for non-C41 chemistry.
func (b *ChemistryBatch) DevelopmentTimeSeconds() *int {
	if !strings.EqualFold(b.ChemistryType, "C41") {
		return nil
	}

	additional := float64(b.RollsDeveloped()) * 0.02 * c41BaseSeconds
	total := int(c41BaseSeconds + additional)
	return &total
}

func (b *ChemistryBatch) DevelopmentTimeFormatted() *string {
	seconds := b.DevelopmentTimeSeconds()
	if seconds == nil {
		return nil
	}
	v := formatSeconds(*seconds)
	return &v
}

func (b *ChemistryBatch) IsActive() bool {
	return b.DateRetired == nil
}

// DevChartEntry is one row of the B&W development timing chart: the time
// for a specific film stock, developer, ISO, dilution and temperature.
type DevChartEntry struct {
	ID                     string
	FilmStock              string
	Developer              string
	ISORating              int
	DilutionRatio          string
	TemperatureCelsius     float64
	DevelopmentTimeSeconds int
	AgitationNotes         *string
	Notes                  *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (e *DevChartEntry) DevelopmentTimeFormatted() string {
	return formatSeconds(e.DevelopmentTimeSeconds)
}

func formatSeconds(total int) string {
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
