// Package emulsiondb is the record store: film rolls, chemistry batches
// and the development chart, persisted in SQLite.
package emulsiondb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/FSXAC/Emulsion/lib/logging"
	"go.uber.org/zap"
)

type Params struct {
	DatabasePath string
	Verbosity    int
}

func (p *Params) validateAndSetDefaults() error {
	if p.DatabasePath == "" {
		return fmt.Errorf("no database path specified")
	}
	return nil
}

type DB struct {
	db     *sql.DB
	params Params
}

// NotFoundError is returned by lookups and mutations addressing a record
// that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no such %s: %s", e.Kind, e.ID)
}

// DuplicateEntryError is returned when an insert collides with the
// development chart's uniqueness constraint. ExistingID points at the
// entry already covering the combination.
type DuplicateEntryError struct {
	ExistingID string
}

func (e DuplicateEntryError) Error() string {
	return fmt.Sprintf("entry already exists (id %s)", e.ExistingID)
}

// Open opens (creating if necessary) the SQLite database at the
// configured path and brings the schema up to date.
func Open(ctx context.Context, params Params) (*DB, error) {
	if err := params.validateAndSetDefaults(); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)

	// The pragma goes in the DSN so every pooled connection gets it.
	dsn := params.DatabasePath + "?_foreign_keys=on"

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database %q: %w", params.DatabasePath, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error connecting to database %q: %w", params.DatabasePath, err)
	}

	d := &DB{db: sqlDB, params: params}

	if err := d.runMigrations(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Info("opened database", zap.String("path", params.DatabasePath))

	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

type Stats struct {
	NumRolls            int
	NumChemistryBatches int
	NumDevChartEntries  int
	RollsByStatus       map[string]int
}

// GetStats reports record counts for the admin CLI. Status counts are
// derived in memory since status is not a stored attribute.
func (d *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{RollsByStatus: map[string]int{}}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM film_rolls", &stats.NumRolls},
		{"SELECT COUNT(*) FROM chemistry_batches", &stats.NumChemistryBatches},
		{"SELECT COUNT(*) FROM development_chart", &stats.NumDevChartEntries},
	}

	for _, c := range counts {
		if err := d.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("error counting records: %w", err)
		}
	}

	rolls, _, err := d.SearchRolls(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, roll := range rolls {
		stats.RollsByStatus[roll.Status()]++
	}

	return stats, nil
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

func storeDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func storeTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func scanDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return nil, fmt.Errorf("malformed stored date %q: %w", ns.String, err)
	}
	return &t, nil
}

func scanTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
