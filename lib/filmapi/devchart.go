package filmapi

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/FSXAC/Emulsion/lib/emulsiondb"
)

// DevChartRequest creates a development chart entry.
type DevChartRequest struct {
	FilmStock              string  `json:"film_stock"`
	Developer              string  `json:"developer"`
	ISORating              int     `json:"iso_rating"`
	DilutionRatio          string  `json:"dilution_ratio"`
	TemperatureCelsius     float64 `json:"temperature_celsius"`
	DevelopmentTimeSeconds int     `json:"development_time_seconds"`
	AgitationNotes         *string `json:"agitation_notes"`
	Notes                  *string `json:"notes"`
}

func (r DevChartRequest) Validate() error {
	var result *multierror.Error

	if r.FilmStock == "" {
		result = multierror.Append(result, fmt.Errorf("film_stock is required"))
	}
	if r.Developer == "" {
		result = multierror.Append(result, fmt.Errorf("developer is required"))
	}
	if r.ISORating <= 0 {
		result = multierror.Append(result, fmt.Errorf("iso_rating must be positive"))
	}
	if r.DilutionRatio == "" {
		result = multierror.Append(result, fmt.Errorf("dilution_ratio is required"))
	}
	if r.DevelopmentTimeSeconds <= 0 {
		result = multierror.Append(result, fmt.Errorf("development_time_seconds must be positive"))
	}

	return result.ErrorOrNil()
}

func (r DevChartRequest) ToModel() *emulsiondb.DevChartEntry {
	return &emulsiondb.DevChartEntry{
		FilmStock:              r.FilmStock,
		Developer:              r.Developer,
		ISORating:              r.ISORating,
		DilutionRatio:          r.DilutionRatio,
		TemperatureCelsius:     r.TemperatureCelsius,
		DevelopmentTimeSeconds: r.DevelopmentTimeSeconds,
		AgitationNotes:         r.AgitationNotes,
		Notes:                  r.Notes,
	}
}

// DevChartUpdate partially updates an entry; only set fields are applied.
type DevChartUpdate struct {
	FilmStock              *string  `json:"film_stock"`
	Developer              *string  `json:"developer"`
	ISORating              *int     `json:"iso_rating"`
	DilutionRatio          *string  `json:"dilution_ratio"`
	TemperatureCelsius     *float64 `json:"temperature_celsius"`
	DevelopmentTimeSeconds *int     `json:"development_time_seconds"`
	AgitationNotes         *string  `json:"agitation_notes"`
	Notes                  *string  `json:"notes"`
}

func (u DevChartUpdate) ApplyTo(entry *emulsiondb.DevChartEntry) {
	if u.FilmStock != nil {
		entry.FilmStock = *u.FilmStock
	}
	if u.Developer != nil {
		entry.Developer = *u.Developer
	}
	if u.ISORating != nil {
		entry.ISORating = *u.ISORating
	}
	if u.DilutionRatio != nil {
		entry.DilutionRatio = *u.DilutionRatio
	}
	if u.TemperatureCelsius != nil {
		entry.TemperatureCelsius = *u.TemperatureCelsius
	}
	if u.DevelopmentTimeSeconds != nil {
		entry.DevelopmentTimeSeconds = *u.DevelopmentTimeSeconds
	}
	if u.AgitationNotes != nil {
		entry.AgitationNotes = u.AgitationNotes
	}
	if u.Notes != nil {
		entry.Notes = u.Notes
	}
}

type DevChartItem struct {
	ID                       string    `json:"id"`
	FilmStock                string    `json:"film_stock"`
	Developer                string    `json:"developer"`
	ISORating                int       `json:"iso_rating"`
	DilutionRatio            string    `json:"dilution_ratio"`
	TemperatureCelsius       float64   `json:"temperature_celsius"`
	DevelopmentTimeSeconds   int       `json:"development_time_seconds"`
	DevelopmentTimeFormatted string    `json:"development_time_formatted"`
	AgitationNotes           *string   `json:"agitation_notes"`
	Notes                    *string   `json:"notes"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func NewDevChartItem(entry *emulsiondb.DevChartEntry) DevChartItem {
	return DevChartItem{
		ID:                       entry.ID,
		FilmStock:                entry.FilmStock,
		Developer:                entry.Developer,
		ISORating:                entry.ISORating,
		DilutionRatio:            entry.DilutionRatio,
		TemperatureCelsius:       entry.TemperatureCelsius,
		DevelopmentTimeSeconds:   entry.DevelopmentTimeSeconds,
		DevelopmentTimeFormatted: entry.DevelopmentTimeFormatted(),
		AgitationNotes:           entry.AgitationNotes,
		Notes:                    entry.Notes,
		CreatedAt:                entry.CreatedAt,
		UpdatedAt:                entry.UpdatedAt,
	}
}

type DevChartList struct {
	Entries []DevChartItem `json:"entries"`
	Total   int            `json:"total"`
}

func NewDevChartList(entries []*emulsiondb.DevChartEntry, total int) DevChartList {
	items := make([]DevChartItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, NewDevChartItem(entry))
	}
	return DevChartList{Entries: items, Total: total}
}

// DevTimeLookupResponse answers a timing lookup: an exact match when one
// exists, otherwise up to a handful of nearby suggestions for the same
// film and developer.
type DevTimeLookupResponse struct {
	Match       *DevChartItem  `json:"match"`
	Suggestions []DevChartItem `json:"suggestions"`
}

type AutocompleteResponse struct {
	Values []string `json:"values"`
}
