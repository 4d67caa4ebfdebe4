package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrSchemaMismatch is wrapped by CheckSchema when the dataset lacks a table
// or column the queries rely on.
var ErrSchemaMismatch = errors.New("schema mismatch")

type tableSpec struct {
	name    string
	columns []string
}

// expectedSchema mirrors the Station and Measurement types. Extra tables and
// columns in the dataset (ids, coordinates, elevation) are fine.
var expectedSchema = []tableSpec{
	{name: "measurement", columns: []string{"station", "date", "prcp", "tobs"}},
	{name: "station", columns: []string{"station", "name"}},
}

const tableColumnsSQL = `SELECT name FROM pragma_table_info(?)`

// CheckSchema fails fast when the dataset cannot serve the climate queries.
func CheckSchema(ctx context.Context, q DBTX) error {
	for _, table := range expectedSchema {
		cols, err := tableColumns(ctx, q, table.name)
		if err != nil {
			return fmt.Errorf("inspect table %s: %w", table.name, err)
		}
		if len(cols) == 0 {
			return fmt.Errorf("%w: table %q not found", ErrSchemaMismatch, table.name)
		}
		var missing []string
		for _, c := range table.columns {
			if !cols[c] {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: table %q missing columns %s", ErrSchemaMismatch, table.name, strings.Join(missing, ", "))
		}
	}
	return nil
}

func tableColumns(ctx context.Context, q DBTX, table string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, tableColumnsSQL, table)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close table_info rows", "table", table, "error", err)
		}
	}()
	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = true
	}
	return out, rows.Err()
}
