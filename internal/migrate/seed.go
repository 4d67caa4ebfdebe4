package migrate

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type csvTable struct {
	name     string
	required []string
	optional []string
}

// Header layouts of hawaii_stations.csv and hawaii_measurements.csv.
var (
	stationsTable = csvTable{
		name:     "station",
		required: []string{"station", "name"},
		optional: []string{"latitude", "longitude", "elevation"},
	}
	measurementsTable = csvTable{
		name:     "measurement",
		required: []string{"station", "date", "tobs"},
		optional: []string{"prcp"},
	}
)

var textColumns = map[string]bool{"station": true, "name": true, "date": true}

// SeedStations loads station rows from CSV and returns how many were inserted.
func SeedStations(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	return seedCSV(ctx, db, r, stationsTable)
}

// SeedMeasurements loads measurement rows from CSV. An empty prcp cell is
// stored as NULL, which is how the dataset marks an unrecorded value.
func SeedMeasurements(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	return seedCSV(ctx, db, r, measurementsTable)
}

func seedCSV(ctx context.Context, db *sql.DB, r io.Reader, table csvTable) (n int, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("%s csv header: %w", table.name, err)
	}
	cols, idx, err := table.resolve(header)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", table.name, strings.Join(cols, ", "), placeholders,
	))
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	line := 1
	for {
		record, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			return n, fmt.Errorf("%s csv line %d: %w", table.name, line, readErr)
		}
		args := make([]any, len(cols))
		for i, col := range cols {
			v, convErr := convertCell(col, record[idx[i]])
			if convErr != nil {
				return n, fmt.Errorf("%s csv line %d: %w", table.name, line, convErr)
			}
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return n, fmt.Errorf("%s csv line %d: insert: %w", table.name, line, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// resolve maps the known columns present in header to their positions.
func (t csvTable) resolve(header []string) (cols []string, idx []int, err error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range t.required {
		i, ok := pos[c]
		if !ok {
			return nil, nil, fmt.Errorf("%s csv: missing column %q", t.name, c)
		}
		cols, idx = append(cols, c), append(idx, i)
	}
	for _, c := range t.optional {
		if i, ok := pos[c]; ok {
			cols, idx = append(cols, c), append(idx, i)
		}
	}
	return cols, idx, nil
}

func convertCell(col, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if textColumns[col] {
		return raw, nil
	}
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return f, nil
}
