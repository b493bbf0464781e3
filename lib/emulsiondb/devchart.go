package emulsiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
)

const devChartColumns = `id, film_stock, developer, iso_rating, dilution_ratio,
temperature_celsius, development_time_seconds, agitation_notes, notes,
created_at, updated_at`

func scanDevChartEntry(row rowScanner) (*DevChartEntry, error) {
	var entry DevChartEntry
	var agitationNotes, notes sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(
		&entry.ID,
		&entry.FilmStock,
		&entry.Developer,
		&entry.ISORating,
		&entry.DilutionRatio,
		&entry.TemperatureCelsius,
		&entry.DevelopmentTimeSeconds,
		&agitationNotes,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	entry.AgitationNotes = stringPtr(agitationNotes)
	entry.Notes = stringPtr(notes)

	var err error
	if entry.CreatedAt, err = scanTimestamp(createdAt); err != nil {
		return nil, err
	}
	if entry.UpdatedAt, err = scanTimestamp(updatedAt); err != nil {
		return nil, err
	}

	return &entry, nil
}

// CreateDevChartEntry inserts a timing datapoint. A collision with the
// uniqueness constraint over (film, developer, ISO, dilution, temperature)
// is reported as a DuplicateEntryError carrying the existing entry's ID.
func (d *DB) CreateDevChartEntry(ctx context.Context, entry *DevChartEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO development_chart (`+devChartColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.FilmStock,
		entry.Developer,
		entry.ISORating,
		entry.DilutionRatio,
		entry.TemperatureCelsius,
		entry.DevelopmentTimeSeconds,
		nullString(entry.AgitationNotes),
		nullString(entry.Notes),
		storeTimestamp(entry.CreatedAt),
		storeTimestamp(entry.UpdatedAt),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			existingID := "unknown"
			if existing, lookupErr := d.lookupExactDevChartEntry(ctx, entry); lookupErr == nil && existing != nil {
				existingID = existing.ID
			}
			return DuplicateEntryError{ExistingID: existingID}
		}
		return fmt.Errorf("error inserting development chart entry: %w", err)
	}

	return nil
}

func (d *DB) GetDevChartEntry(ctx context.Context, entryID string) (*DevChartEntry, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+devChartColumns+" FROM development_chart WHERE id = ?", entryID)

	entry, err := scanDevChartEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFoundError{Kind: "development chart entry", ID: entryID}
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching development chart entry: %w", err)
	}

	return entry, nil
}

func (d *DB) UpdateDevChartEntry(ctx context.Context, entry *DevChartEntry) error {
	entry.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	result, err := d.db.ExecContext(ctx,
		`UPDATE development_chart SET
			film_stock = ?, developer = ?, iso_rating = ?, dilution_ratio = ?,
			temperature_celsius = ?, development_time_seconds = ?,
			agitation_notes = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		entry.FilmStock,
		entry.Developer,
		entry.ISORating,
		entry.DilutionRatio,
		entry.TemperatureCelsius,
		entry.DevelopmentTimeSeconds,
		nullString(entry.AgitationNotes),
		nullString(entry.Notes),
		storeTimestamp(entry.UpdatedAt),
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating development chart entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return NotFoundError{Kind: "development chart entry", ID: entry.ID}
	}

	return nil
}

func (d *DB) DeleteDevChartEntry(ctx context.Context, entryID string) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM development_chart WHERE id = ?", entryID)
	if err != nil {
		return fmt.Errorf("error deleting development chart entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return NotFoundError{Kind: "development chart entry", ID: entryID}
	}

	return nil
}

type ListDevChartOptions struct {
	Skip      int
	Limit     int
	FilmStock string
	Developer string
	ISORating *int
}

func (d *DB) ListDevChartEntries(ctx context.Context, opts ListDevChartOptions) ([]*DevChartEntry, int, error) {
	qb := newQueryBuilder("development_chart", devChartColumns)
	if opts.FilmStock != "" {
		qb.addContainsFilter("film_stock", opts.FilmStock)
	}
	if opts.Developer != "" {
		qb.addContainsFilter("developer", opts.Developer)
	}
	if opts.ISORating != nil {
		qb.addEqualsFilter("iso_rating", *opts.ISORating)
	}
	qb.setOrderBy("film_stock ASC, developer ASC, iso_rating ASC")
	qb.setPagination(opts.Skip, opts.Limit)

	countQuery, countArgs := qb.buildCountQuery()
	var total int
	if err := d.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting development chart entries: %w", err)
	}

	query, args := qb.buildQuery()
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying development chart: %w", err)
	}
	defer rows.Close()

	var entries []*DevChartEntry
	for rows.Next() {
		entry, err := scanDevChartEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning development chart entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// DevTimeLookup describes a development-time lookup. Dilution and
// temperature narrow the match when provided.
type DevTimeLookup struct {
	FilmStock          string
	Developer          string
	ISORating          int
	DilutionRatio      string
	TemperatureCelsius *float64
}

// LookupDevTime finds an exact chart match. When none exists it returns up
// to five entries for the same film and developer as suggestions.
func (d *DB) LookupDevTime(ctx context.Context, lookup DevTimeLookup) (*DevChartEntry, []*DevChartEntry, error) {
	qb := newQueryBuilder("development_chart", devChartColumns)
	qb.addEqualsFilter("film_stock", lookup.FilmStock)
	qb.addEqualsFilter("developer", lookup.Developer)
	qb.addEqualsFilter("iso_rating", lookup.ISORating)
	if lookup.DilutionRatio != "" {
		qb.addEqualsFilter("dilution_ratio", lookup.DilutionRatio)
	}
	if lookup.TemperatureCelsius != nil {
		qb.addEqualsFilter("temperature_celsius", *lookup.TemperatureCelsius)
	}
	qb.setPagination(0, 1)

	query, args := qb.buildQuery()
	row := d.db.QueryRowContext(ctx, query, args...)

	entry, err := scanDevChartEntry(row)
	if err == nil {
		return entry, nil, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("error looking up development time: %w", err)
	}

	suggestQB := newQueryBuilder("development_chart", devChartColumns)
	suggestQB.addEqualsFilter("film_stock", lookup.FilmStock)
	suggestQB.addEqualsFilter("developer", lookup.Developer)
	suggestQB.setOrderBy("iso_rating ASC, dilution_ratio ASC, temperature_celsius ASC")
	suggestQB.setPagination(0, 5)

	query, args = suggestQB.buildQuery()
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying development time suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []*DevChartEntry
	for rows.Next() {
		suggestion, err := scanDevChartEntry(rows)
		if err != nil {
			return nil, nil, err
		}
		suggestions = append(suggestions, suggestion)
	}

	return nil, suggestions, rows.Err()
}

func (d *DB) lookupExactDevChartEntry(ctx context.Context, entry *DevChartEntry) (*DevChartEntry, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+devChartColumns+` FROM development_chart
		 WHERE film_stock = ? AND developer = ? AND iso_rating = ?
		 AND dilution_ratio = ? AND temperature_celsius = ?`,
		entry.FilmStock, entry.Developer, entry.ISORating,
		entry.DilutionRatio, entry.TemperatureCelsius)

	found, err := scanDevChartEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return found, err
}

// AutocompleteFilmStocks returns distinct film stock names matching the
// query substring, ordered alphabetically.
func (d *DB) AutocompleteFilmStocks(ctx context.Context, q string, limit int) ([]string, error) {
	return d.autocompleteColumn(ctx, "film_stock", q, limit)
}

func (d *DB) AutocompleteDevelopers(ctx context.Context, q string, limit int) ([]string, error) {
	return d.autocompleteColumn(ctx, "developer", q, limit)
}

func (d *DB) autocompleteColumn(ctx context.Context, column, q string, limit int) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM development_chart WHERE LOWER(%s) LIKE ? ORDER BY %s LIMIT ?",
		column, column, column)

	rows, err := d.db.QueryContext(ctx, query, "%"+strings.ToLower(q)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("error querying autocomplete values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, rows.Err()
}
