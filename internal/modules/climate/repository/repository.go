package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"log/slog"

	"surfsup-server/internal/db"
	"surfsup-server/internal/modules/climate/types"
)

//go:embed sql/get-latest-date.sql
var getLatestDateSQL string

//go:embed sql/get-precipitation-since.sql
var getPrecipitationSinceSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-station-activity.sql
var getStationActivitySQL string

//go:embed sql/get-temperature-observations.sql
var getTemperatureObservationsSQL string

//go:embed sql/get-temperature-stats-until.sql
var getTemperatureStatsUntilSQL string

//go:embed sql/get-temperature-stats-between.sql
var getTemperatureStatsBetweenSQL string

// ClimateRepository runs the climate queries on whatever session it is given.
// Dates are ISO YYYY-MM-DD strings compared as text, so a malformed date
// simply matches a different (usually empty) set of rows.
type ClimateRepository interface {
	GetLatestDate(ctx context.Context, q db.DBTX) (string, error)
	GetPrecipitationSince(ctx context.Context, q db.DBTX, start string) ([]types.Precipitation, error)
	GetStations(ctx context.Context, q db.DBTX) ([]types.Station, error)
	GetStationActivity(ctx context.Context, q db.DBTX) ([]types.StationActivity, error)
	GetTemperatureObservations(ctx context.Context, q db.DBTX, station string, start string) ([]float64, error)
	GetTemperatureStatsUntil(ctx context.Context, q db.DBTX, end string) (types.TemperatureStats, error)
	GetTemperatureStatsBetween(ctx context.Context, q db.DBTX, start string, end string) (types.TemperatureStats, error)
}

type repositoryImpl struct{}

func NewRepository() ClimateRepository {
	return &repositoryImpl{}
}

// GetLatestDate returns "" when the measurement table is empty.
func (r *repositoryImpl) GetLatestDate(ctx context.Context, q db.DBTX) (string, error) {
	var date sql.NullString
	err := q.QueryRowContext(ctx, getLatestDateSQL).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return date.String, nil
}

func (r *repositoryImpl) GetPrecipitationSince(ctx context.Context, q db.DBTX, start string) ([]types.Precipitation, error) {
	rows, err := q.QueryContext(ctx, getPrecipitationSinceSQL, start)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close precipitation rows", "error", err)
		}
	}()
	out := []types.Precipitation{}
	for rows.Next() {
		var p types.Precipitation
		if err := rows.Scan(&p.Date, &p.Prcp); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetStations(ctx context.Context, q db.DBTX) ([]types.Station, error) {
	rows, err := q.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()
	out := []types.Station{}
	for rows.Next() {
		var id, name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out = append(out, types.Station{Station: id.String, Name: name.String})
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetStationActivity(ctx context.Context, q db.DBTX) ([]types.StationActivity, error) {
	rows, err := q.QueryContext(ctx, getStationActivitySQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close station activity rows", "error", err)
		}
	}()
	out := []types.StationActivity{}
	for rows.Next() {
		var id sql.NullString
		var a types.StationActivity
		if err := rows.Scan(&id, &a.Count); err != nil {
			return nil, err
		}
		a.Station = id.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetTemperatureObservations(ctx context.Context, q db.DBTX, station string, start string) ([]float64, error) {
	rows, err := q.QueryContext(ctx, getTemperatureObservationsSQL, start, station)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close temperature rows", "error", err)
		}
	}()
	out := []float64{}
	for rows.Next() {
		var tobs float64
		if err := rows.Scan(&tobs); err != nil {
			return nil, err
		}
		out = append(out, tobs)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetTemperatureStatsUntil(ctx context.Context, q db.DBTX, end string) (types.TemperatureStats, error) {
	return scanStats(q.QueryRowContext(ctx, getTemperatureStatsUntilSQL, end))
}

func (r *repositoryImpl) GetTemperatureStatsBetween(ctx context.Context, q db.DBTX, start string, end string) (types.TemperatureStats, error) {
	return scanStats(q.QueryRowContext(ctx, getTemperatureStatsBetweenSQL, start, end))
}

// scanStats keeps SQL NULL aggregates (empty input set) as nil.
func scanStats(row *sql.Row) (types.TemperatureStats, error) {
	var lo, avg, hi sql.NullFloat64
	if err := row.Scan(&lo, &avg, &hi); err != nil {
		return types.TemperatureStats{}, err
	}
	return types.TemperatureStats{
		Min: nullableFloat(lo),
		Avg: nullableFloat(avg),
		Max: nullableFloat(hi),
	}, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
