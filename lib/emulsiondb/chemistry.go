package emulsiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// chemistryColumns includes a correlated count of referencing rolls, so
// derived per-roll costs and C41 times can be computed without further
// queries.
const chemistryColumns = `cb.id, cb.name, cb.chemistry_type, cb.date_mixed, cb.date_retired,
cb.developer_cost, cb.fixer_cost, cb.other_cost, cb.rolls_offset, cb.notes,
cb.created_at, cb.updated_at,
(SELECT COUNT(*) FROM film_rolls fr WHERE fr.chemistry_id = cb.id) AS roll_count`

func scanChemistryBatch(row rowScanner) (*ChemistryBatch, error) {
	var batch ChemistryBatch
	var dateMixed, dateRetired, notes sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(
		&batch.ID,
		&batch.Name,
		&batch.ChemistryType,
		&dateMixed,
		&dateRetired,
		&batch.DeveloperCost,
		&batch.FixerCost,
		&batch.OtherCost,
		&batch.RollsOffset,
		&notes,
		&createdAt,
		&updatedAt,
		&batch.RollCount,
	); err != nil {
		return nil, err
	}

	batch.Notes = stringPtr(notes)

	var err error
	if batch.DateMixed, err = scanDate(dateMixed); err != nil {
		return nil, err
	}
	if batch.DateRetired, err = scanDate(dateRetired); err != nil {
		return nil, err
	}
	if batch.CreatedAt, err = scanTimestamp(createdAt); err != nil {
		return nil, err
	}
	if batch.UpdatedAt, err = scanTimestamp(updatedAt); err != nil {
		return nil, err
	}

	return &batch, nil
}

func (d *DB) CreateChemistryBatch(ctx context.Context, batch *ChemistryBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	batch.CreatedAt = now
	batch.UpdatedAt = now

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO chemistry_batches
			(id, name, chemistry_type, date_mixed, date_retired,
			 developer_cost, fixer_cost, other_cost, rolls_offset, notes,
			 created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.Name,
		batch.ChemistryType,
		storeDate(batch.DateMixed),
		storeDate(batch.DateRetired),
		batch.DeveloperCost,
		batch.FixerCost,
		batch.OtherCost,
		batch.RollsOffset,
		nullString(batch.Notes),
		storeTimestamp(batch.CreatedAt),
		storeTimestamp(batch.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("error inserting chemistry batch: %w", err)
	}

	return nil
}

func (d *DB) GetChemistryBatch(ctx context.Context, batchID string) (*ChemistryBatch, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+chemistryColumns+" FROM chemistry_batches cb WHERE cb.id = ?", batchID)

	batch, err := scanChemistryBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFoundError{Kind: "chemistry batch", ID: batchID}
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching chemistry batch: %w", err)
	}

	return batch, nil
}

func (d *DB) UpdateChemistryBatch(ctx context.Context, batch *ChemistryBatch) error {
	batch.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	result, err := d.db.ExecContext(ctx,
		`UPDATE chemistry_batches SET
			name = ?, chemistry_type = ?, date_mixed = ?, date_retired = ?,
			developer_cost = ?, fixer_cost = ?, other_cost = ?,
			rolls_offset = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		batch.Name,
		batch.ChemistryType,
		storeDate(batch.DateMixed),
		storeDate(batch.DateRetired),
		batch.DeveloperCost,
		batch.FixerCost,
		batch.OtherCost,
		batch.RollsOffset,
		nullString(batch.Notes),
		storeTimestamp(batch.UpdatedAt),
		batch.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating chemistry batch: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return NotFoundError{Kind: "chemistry batch", ID: batch.ID}
	}

	return nil
}

// DeleteChemistryBatch removes a batch. Rolls referencing it have their
// chemistry_id cleared by the schema's ON DELETE SET NULL.
func (d *DB) DeleteChemistryBatch(ctx context.Context, batchID string) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM chemistry_batches WHERE id = ?", batchID)
	if err != nil {
		return fmt.Errorf("error deleting chemistry batch: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return NotFoundError{Kind: "chemistry batch", ID: batchID}
	}

	return nil
}

type ListChemistryBatchesOptions struct {
	Skip          int
	Limit         int
	ActiveOnly    bool
	ChemistryType string
}

func (d *DB) ListChemistryBatches(ctx context.Context, opts ListChemistryBatchesOptions) ([]*ChemistryBatch, int, error) {
	qb := newQueryBuilder("chemistry_batches cb", chemistryColumns)
	if opts.ActiveOnly {
		qb.addWhere("cb.date_retired IS NULL")
	}
	if opts.ChemistryType != "" {
		qb.addEqualsFilter("cb.chemistry_type", strings.ToUpper(opts.ChemistryType))
	}
	qb.setOrderBy("cb.created_at ASC, cb.id ASC")
	qb.setPagination(opts.Skip, opts.Limit)

	countQuery, countArgs := qb.buildCountQuery()
	var total int
	if err := d.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting chemistry batches: %w", err)
	}

	query, args := qb.buildQuery()
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying chemistry batches: %w", err)
	}
	defer rows.Close()

	var batches []*ChemistryBatch
	for rows.Next() {
		batch, err := scanChemistryBatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning chemistry batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}

func (d *DB) getChemistryBatchesByIDs(ctx context.Context, ids []string) ([]*ChemistryBatch, error) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := "SELECT " + chemistryColumns +
		" FROM chemistry_batches cb WHERE cb.id IN (" + strings.Join(placeholders, ", ") + ")"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying chemistry batches: %w", err)
	}
	defer rows.Close()

	var batches []*ChemistryBatch
	for rows.Next() {
		batch, err := scanChemistryBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning chemistry batch: %w", err)
		}
		batches = append(batches, batch)
	}

	return batches, rows.Err()
}

// ChemistryBatchIDsByName implements the search compiler's resolver
// contract: batch IDs whose name contains the substring, case-insensitive.
func (d *DB) ChemistryBatchIDsByName(ctx context.Context, nameSubstring string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id FROM chemistry_batches WHERE LOWER(name) LIKE ?",
		"%"+strings.ToLower(nameSubstring)+"%")
	if err != nil {
		return nil, fmt.Errorf("error querying chemistry batches by name: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// FindChemistryBatchByName returns the first batch whose name contains the
// substring; used by the CSV importer to resolve references.
func (d *DB) FindChemistryBatchByName(ctx context.Context, nameSubstring string) (*ChemistryBatch, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+chemistryColumns+" FROM chemistry_batches cb WHERE LOWER(cb.name) LIKE ? ORDER BY cb.created_at ASC LIMIT 1",
		"%"+strings.ToLower(nameSubstring)+"%")

	batch, err := scanChemistryBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFoundError{Kind: "chemistry batch", ID: nameSubstring}
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching chemistry batch by name: %w", err)
	}

	return batch, nil
}
