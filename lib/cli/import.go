package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FSXAC/Emulsion/lib/emulsiondb"
)

// csvRow is one data row keyed by the lowercased header names.
type csvRow map[string]string

func readCSVFile(filename string) ([]csvRow, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no data rows", filename)
	}

	header := records[0]
	for i, name := range header {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	var rows []csvRow
	for _, record := range records[1:] {
		row := csvRow{}
		for i, value := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// dateLayouts are tried in order; exports from spreadsheets are not
// consistent about formats.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

func parseFlexibleDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", value)
}

func optionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	value = strings.TrimPrefix(value, "$")
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", value)
	}
	return &v, nil
}

func optionalInt(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", value)
	}
	return &v, nil
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "yes", "1", "t", "y":
		return true
	default:
		return false
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

type importFunc func(ctx context.Context, db *emulsiondb.DB, rows []csvRow, dryRun bool) error

func mkImportCommand(use, short string, run importFunc) *cobra.Command {
	var configValue string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   use + " <file.csv>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			rows, err := readCSVFile(args[0])
			if err != nil {
				return err
			}

			_, db, err := openDB(ctx, configValue)
			if err != nil {
				return err
			}
			defer db.Close()

			return run(ctx, db, rows, dryRun)
		},
	}
	cmd.Flags().StringVar(&configValue, "config", "", "config filename or inline YAML")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate without writing")

	return cmd
}

func mkImportCommandGroup() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from CSV exports",
	}

	importCmd.AddCommand(
		mkImportCommand("chemistry", "Import chemistry batches", importChemistry),
		mkImportCommand("rolls", "Import film rolls", importRolls),
		mkImportCommand("devchart", "Import development chart entries", importDevChart),
	)

	return importCmd
}

func importChemistry(ctx context.Context, db *emulsiondb.DB, rows []csvRow, dryRun bool) error {
	var result *multierror.Error
	imported := 0

	for i, row := range rows {
		batch, err := chemistryFromRow(row)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("row %d: %w", i+2, err))
			continue
		}

		if !dryRun {
			if err := db.CreateChemistryBatch(ctx, batch); err != nil {
				result = multierror.Append(result, fmt.Errorf("row %d: %w", i+2, err))
				continue
			}
		}
		imported++
	}

	zap.L().Info("chemistry import finished",
		zap.Int("imported", imported),
		zap.Int("failed", len(rows)-imported),
		zap.Bool("dry_run", dryRun))

	return result.ErrorOrNil()
}

func chemistryFromRow(row csvRow) (*emulsiondb.ChemistryBatch, error) {
	if row["name"] == "" {
		return nil, fmt.Errorf("missing name")
	}
	if row["chemistry_type"] == "" {
		return nil, fmt.Errorf("missing chemistry_type")
	}

	dateMixed, err := parseFlexibleDate(row["date_mixed"])
	if err != nil {
		return nil, err
	}

	developerCost, err := optionalFloat(row["developer_cost"])
	if err != nil {
		return nil, err
	}
	fixerCost, err := optionalFloat(row["fixer_cost"])
	if err != nil {
		return nil, err
	}
	otherCost, err := optionalFloat(row["other_cost"])
	if err != nil {
		return nil, err
	}
	rollsOffset, err := optionalInt(row["rolls_offset"])
	if err != nil {
		return nil, err
	}

	batch := &emulsiondb.ChemistryBatch{
		Name:          row["name"],
		ChemistryType: strings.ToUpper(row["chemistry_type"]),
		DateMixed:     dateMixed,
		Notes:         optionalString(row["notes"]),
	}
	if developerCost != nil {
		batch.DeveloperCost = *developerCost
	}
	if fixerCost != nil {
		batch.FixerCost = *fixerCost
	}
	if otherCost != nil {
		batch.OtherCost = *otherCost
	}
	if rollsOffset != nil {
		batch.RollsOffset = *rollsOffset
	}

	return batch, nil
}

func importRolls(ctx context.Context, db *emulsiondb.DB, rows []csvRow, dryRun bool) error {
	var result *multierror.Error
	imported := 0

	for i, row := range rows {
		roll, err := rollFromRow(ctx, db, row)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("row %d: %w", i+2, err))
			continue
		}

		if !dryRun {
			if err := db.CreateRoll(ctx, roll); err != nil {
				result = multierror.Append(result, fmt.Errorf("row %d: %w", i+2, err))
				continue
			}
		}
		imported++
	}

	zap.L().Info("roll import finished",
		zap.Int("imported", imported),
		zap.Int("failed", len(rows)-imported),
		zap.Bool("dry_run", dryRun))

	return result.ErrorOrNil()
}

func rollFromRow(ctx context.Context, db *emulsiondb.DB, row csvRow) (*emulsiondb.FilmRoll, error) {
	if row["order_id"] == "" {
		return nil, fmt.Errorf("missing order_id")
	}
	if row["film_stock_name"] == "" {
		return nil, fmt.Errorf("missing film_stock_name")
	}

	expectedExposures, err := optionalInt(row["expected_exposures"])
	if err != nil {
		return nil, err
	}
	if expectedExposures == nil {
		return nil, fmt.Errorf("missing expected_exposures")
	}

	actualExposures, err := optionalInt(row["actual_exposures"])
	if err != nil {
		return nil, err
	}
	dateLoaded, err := parseFlexibleDate(row["date_loaded"])
	if err != nil {
		return nil, err
	}
	dateUnloaded, err := parseFlexibleDate(row["date_unloaded"])
	if err != nil {
		return nil, err
	}
	pushPull, err := optionalFloat(strings.TrimPrefix(row["push_pull_stops"], "+"))
	if err != nil {
		return nil, err
	}
	labDevCost, err := optionalFloat(row["lab_dev_cost"])
	if err != nil {
		return nil, err
	}
	stars, err := optionalInt(row["stars"])
	if err != nil {
		return nil, err
	}
	filmCost, err := optionalFloat(row["film_cost"])
	if err != nil {
		return nil, err
	}

	roll := &emulsiondb.FilmRoll{
		OrderID:           row["order_id"],
		FilmStockName:     row["film_stock_name"],
		FilmFormat:        row["film_format"],
		ExpectedExposures: *expectedExposures,
		ActualExposures:   actualExposures,
		DateLoaded:        dateLoaded,
		DateUnloaded:      dateUnloaded,
		PushPullStops:     pushPull,
		LabDevCost:        labDevCost,
		Stars:             stars,
		NotMine:           parseBool(row["not_mine"]),
		Notes:             optionalString(row["notes"]),
	}
	if roll.FilmFormat == "" {
		roll.FilmFormat = "35mm"
	}
	if filmCost != nil {
		roll.FilmCost = *filmCost
	}

	// Spreadsheets refer to chemistry by name, not ID.
	if name := row["chemistry"]; name != "" {
		batch, err := db.FindChemistryBatchByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("chemistry %q: %w", name, err)
		}
		roll.ChemistryID = &batch.ID
	}

	return roll, nil
}

func importDevChart(ctx context.Context, db *emulsiondb.DB, rows []csvRow, dryRun bool) error {
	var result *multierror.Error
	imported := 0

	for i, row := range rows {
		entry, err := devChartFromRow(row)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("row %d: %w", i+2, err))
			continue
		}

		if !dryRun {
			if err := db.CreateDevChartEntry(ctx, entry); err != nil {
				result = multierror.Append(result, fmt.Errorf("row %d: %w", i+2, err))
				continue
			}
		}
		imported++
	}

	zap.L().Info("dev chart import finished",
		zap.Int("imported", imported),
		zap.Int("failed", len(rows)-imported),
		zap.Bool("dry_run", dryRun))

	return result.ErrorOrNil()
}

func devChartFromRow(row csvRow) (*emulsiondb.DevChartEntry, error) {
	if row["film_stock"] == "" || row["developer"] == "" {
		return nil, fmt.Errorf("missing film_stock or developer")
	}

	iso, err := optionalInt(row["iso_rating"])
	if err != nil {
		return nil, err
	}
	if iso == nil {
		return nil, fmt.Errorf("missing iso_rating")
	}

	seconds, err := optionalInt(row["development_time_seconds"])
	if err != nil {
		return nil, err
	}
	if seconds == nil {
		return nil, fmt.Errorf("missing development_time_seconds")
	}

	temperature, err := optionalFloat(row["temperature_celsius"])
	if err != nil {
		return nil, err
	}

	entry := &emulsiondb.DevChartEntry{
		FilmStock:              row["film_stock"],
		Developer:              row["developer"],
		ISORating:              *iso,
		DilutionRatio:          row["dilution_ratio"],
		DevelopmentTimeSeconds: *seconds,
		AgitationNotes:         optionalString(row["agitation_notes"]),
		Notes:                  optionalString(row["notes"]),
	}
	if temperature != nil {
		entry.TemperatureCelsius = *temperature
	} else {
		entry.TemperatureCelsius = 20
	}

	return entry, nil
}
