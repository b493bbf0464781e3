package emulsiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FSXAC/Emulsion/lib/search"
)

const rollColumns = `id, order_id, film_stock_name, film_format, expected_exposures,
actual_exposures, date_loaded, date_unloaded, push_pull_stops, chemistry_id,
lab_dev_cost, stars, film_cost, not_mine, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoll(row rowScanner) (*FilmRoll, error) {
	var roll FilmRoll
	var actualExposures, stars sql.NullInt64
	var dateLoaded, dateUnloaded, chemistryID, notes sql.NullString
	var pushPullStops, labDevCost sql.NullFloat64
	var createdAt, updatedAt string

	if err := row.Scan(
		&roll.ID,
		&roll.OrderID,
		&roll.FilmStockName,
		&roll.FilmFormat,
		&roll.ExpectedExposures,
		&actualExposures,
		&dateLoaded,
		&dateUnloaded,
		&pushPullStops,
		&chemistryID,
		&labDevCost,
		&stars,
		&roll.FilmCost,
		&roll.NotMine,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	roll.ActualExposures = intPtr(actualExposures)
	roll.Stars = intPtr(stars)
	roll.ChemistryID = stringPtr(chemistryID)
	roll.Notes = stringPtr(notes)
	roll.PushPullStops = floatPtr(pushPullStops)
	roll.LabDevCost = floatPtr(labDevCost)

	var err error
	if roll.DateLoaded, err = scanDate(dateLoaded); err != nil {
		return nil, err
	}
	if roll.DateUnloaded, err = scanDate(dateUnloaded); err != nil {
		return nil, err
	}
	if roll.CreatedAt, err = scanTimestamp(createdAt); err != nil {
		return nil, err
	}
	if roll.UpdatedAt, err = scanTimestamp(updatedAt); err != nil {
		return nil, err
	}

	return &roll, nil
}

// CreateRoll inserts a new roll, assigning an ID and timestamps. The
// caller is responsible for having validated any chemistry reference.
func (d *DB) CreateRoll(ctx context.Context, roll *FilmRoll) error {
	if roll.ID == "" {
		roll.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	roll.CreatedAt = now
	roll.UpdatedAt = now

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO film_rolls (`+rollColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		roll.ID,
		roll.OrderID,
		roll.FilmStockName,
		roll.FilmFormat,
		roll.ExpectedExposures,
		nullInt(roll.ActualExposures),
		storeDate(roll.DateLoaded),
		storeDate(roll.DateUnloaded),
		nullFloat(roll.PushPullStops),
		nullString(roll.ChemistryID),
		nullFloat(roll.LabDevCost),
		nullInt(roll.Stars),
		roll.FilmCost,
		roll.NotMine,
		nullString(roll.Notes),
		storeTimestamp(roll.CreatedAt),
		storeTimestamp(roll.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("error inserting film roll: %w", err)
	}

	return d.attachChemistry(ctx, []*FilmRoll{roll})
}

func (d *DB) GetRoll(ctx context.Context, rollID string) (*FilmRoll, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+rollColumns+" FROM film_rolls WHERE id = ?", rollID)

	roll, err := scanRoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFoundError{Kind: "film roll", ID: rollID}
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching film roll: %w", err)
	}

	if err := d.attachChemistry(ctx, []*FilmRoll{roll}); err != nil {
		return nil, err
	}

	return roll, nil
}

// UpdateRoll writes all mutable columns of the roll and bumps updated_at.
func (d *DB) UpdateRoll(ctx context.Context, roll *FilmRoll) error {
	roll.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	result, err := d.db.ExecContext(ctx,
		`UPDATE film_rolls SET
			order_id = ?, film_stock_name = ?, film_format = ?,
			expected_exposures = ?, actual_exposures = ?,
			date_loaded = ?, date_unloaded = ?, push_pull_stops = ?,
			chemistry_id = ?, lab_dev_cost = ?, stars = ?, film_cost = ?,
			not_mine = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		roll.OrderID,
		roll.FilmStockName,
		roll.FilmFormat,
		roll.ExpectedExposures,
		nullInt(roll.ActualExposures),
		storeDate(roll.DateLoaded),
		storeDate(roll.DateUnloaded),
		nullFloat(roll.PushPullStops),
		nullString(roll.ChemistryID),
		nullFloat(roll.LabDevCost),
		nullInt(roll.Stars),
		roll.FilmCost,
		roll.NotMine,
		nullString(roll.Notes),
		storeTimestamp(roll.UpdatedAt),
		roll.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating film roll: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return NotFoundError{Kind: "film roll", ID: roll.ID}
	}

	return d.attachChemistry(ctx, []*FilmRoll{roll})
}

func (d *DB) DeleteRoll(ctx context.Context, rollID string) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM film_rolls WHERE id = ?", rollID)
	if err != nil {
		return fmt.Errorf("error deleting film roll: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return NotFoundError{Kind: "film roll", ID: rollID}
	}

	return nil
}

// SearchRolls executes compiled store filters, AND-conjoined, and returns
// all matching rolls with the store-level count. The count is only valid
// until computed filters are applied; the caller recounts after that.
func (d *DB) SearchRolls(ctx context.Context, filters []search.Filter) ([]*FilmRoll, int, error) {
	qb := newQueryBuilder("film_rolls", rollColumns)
	qb.addSearchFilters(filters)
	qb.setOrderBy("created_at ASC, id ASC")

	return d.queryRolls(ctx, qb)
}

type ListRollsOptions struct {
	Skip    int
	Limit   int
	OrderID string
}

// ListRolls is the plain paginated listing. The total reflects all rows
// matching the filter, not just the returned page.
func (d *DB) ListRolls(ctx context.Context, opts ListRollsOptions) ([]*FilmRoll, int, error) {
	qb := newQueryBuilder("film_rolls", rollColumns)
	if opts.OrderID != "" {
		qb.addEqualsFilter("order_id", opts.OrderID)
	}
	qb.setOrderBy("created_at ASC, id ASC")
	qb.setPagination(opts.Skip, opts.Limit)

	return d.queryRolls(ctx, qb)
}

func (d *DB) queryRolls(ctx context.Context, qb *queryBuilder) ([]*FilmRoll, int, error) {
	countQuery, countArgs := qb.buildCountQuery()
	var total int
	if err := d.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting film rolls: %w", err)
	}

	query, args := qb.buildQuery()
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying film rolls: %w", err)
	}
	defer rows.Close()

	var rolls []*FilmRoll
	for rows.Next() {
		roll, err := scanRoll(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning film roll: %w", err)
		}
		rolls = append(rolls, roll)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := d.attachChemistry(ctx, rolls); err != nil {
		return nil, 0, err
	}

	return rolls, total, nil
}

// attachChemistry populates the Chemistry field of rolls with an assigned
// batch, fetching each distinct batch once.
func (d *DB) attachChemistry(ctx context.Context, rolls []*FilmRoll) error {
	idSet := map[string]struct{}{}
	for _, roll := range rolls {
		if roll.ChemistryID != nil {
			idSet[*roll.ChemistryID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	var ids []string
	for id := range idSet {
		ids = append(ids, id)
	}

	batches, err := d.getChemistryBatchesByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := map[string]*ChemistryBatch{}
	for _, batch := range batches {
		byID[batch.ID] = batch
	}

	for _, roll := range rolls {
		if roll.ChemistryID != nil {
			roll.Chemistry = byID[*roll.ChemistryID]
		}
	}

	return nil
}
