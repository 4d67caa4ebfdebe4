package repository

import (
	"context"
	"database/sql"
	"testing"

	"surfsup-server/internal/migrate"
	"surfsup-server/internal/modules/climate/types"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Fatalf("close db: %v", closeErr)
		}
	})
	if err := migrate.Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func ptr(f float64) *float64 { return &f }

func insertMeasurements(t *testing.T, db *sql.DB, rows ...types.Measurement) {
	t.Helper()
	for _, m := range rows {
		_, err := db.Exec(`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`,
			m.Station, m.Date, m.Prcp, m.Tobs)
		if err != nil {
			t.Fatalf("insert measurement: %v", err)
		}
	}
}

func insertStation(t *testing.T, db *sql.DB, station, name string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO station (station, name) VALUES (?, ?)`, station, name); err != nil {
		t.Fatalf("insert station: %v", err)
	}
}

func TestNewRepository(t *testing.T) {
	if NewRepository() == nil {
		t.Fatal("NewRepository returned nil")
	}
}

func TestGetLatestDate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	ctx := context.Background()

	got, err := repo.GetLatestDate(ctx, db)
	if err != nil {
		t.Fatalf("GetLatestDate (empty): %v", err)
	}
	if got != "" {
		t.Fatalf("GetLatestDate (empty) = %q; want \"\"", got)
	}

	insertMeasurements(t, db,
		types.Measurement{Station: "A", Date: "2017-08-22", Tobs: 70},
		types.Measurement{Station: "A", Date: "2017-08-23", Tobs: 71},
		types.Measurement{Station: "B", Date: "2010-01-01", Tobs: 60},
	)
	got, err = repo.GetLatestDate(ctx, db)
	if err != nil {
		t.Fatalf("GetLatestDate: %v", err)
	}
	if got != "2017-08-23" {
		t.Fatalf("GetLatestDate = %q; want 2017-08-23", got)
	}
}

func TestGetPrecipitationSince(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	insertMeasurements(t, db,
		types.Measurement{Station: "A", Date: "2017-01-02", Prcp: ptr(0.5), Tobs: 70},
		types.Measurement{Station: "B", Date: "2016-08-23", Prcp: ptr(0.1), Tobs: 70},
		types.Measurement{Station: "A", Date: "2016-09-01", Prcp: nil, Tobs: 70},
		types.Measurement{Station: "C", Date: "2016-08-22", Prcp: ptr(9.9), Tobs: 70},
		types.Measurement{Station: "C", Date: "2017-01-02", Prcp: ptr(0.0), Tobs: 70},
	)

	got, err := repo.GetPrecipitationSince(context.Background(), db, "2016-08-23")
	if err != nil {
		t.Fatalf("GetPrecipitationSince: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetPrecipitationSince: got %d rows (%v), want 3", len(got), got)
	}
	if got[0].Date != "2016-08-23" || got[0].Prcp != 0.1 {
		t.Errorf("first row = %+v; want {2016-08-23 0.1}", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date > got[i].Date {
			t.Errorf("rows not ordered by date: %q before %q", got[i-1].Date, got[i].Date)
		}
	}
	// Two stations on the same date are both kept.
	if got[1].Date != "2017-01-02" || got[2].Date != "2017-01-02" {
		t.Errorf("expected both 2017-01-02 rows, got %+v", got[1:])
	}
}

func TestGetPrecipitationSince_EmptyIsNonNil(t *testing.T) {
	db := setupTestDB(t)
	got, err := NewRepository().GetPrecipitationSince(context.Background(), db, "2016-08-23")
	if err != nil {
		t.Fatalf("GetPrecipitationSince: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("GetPrecipitationSince = %#v; want empty non-nil slice", got)
	}
}

func TestGetStations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	stations, err := repo.GetStations(context.Background(), db)
	if err != nil {
		t.Fatalf("GetStations (empty): %v", err)
	}
	if stations == nil || len(stations) != 0 {
		t.Fatalf("GetStations (empty) = %#v; want empty non-nil slice", stations)
	}

	insertStation(t, db, "USC00519397", "WAIKIKI 717.2, HI US")
	insertStation(t, db, "USC00513117", "KANEOHE 838.1, HI US")

	stations, err = repo.GetStations(context.Background(), db)
	if err != nil {
		t.Fatalf("GetStations: %v", err)
	}
	want := []types.Station{
		{Station: "USC00519397", Name: "WAIKIKI 717.2, HI US"},
		{Station: "USC00513117", Name: "KANEOHE 838.1, HI US"},
	}
	if len(stations) != len(want) {
		t.Fatalf("GetStations: got %d, want %d", len(stations), len(want))
	}
	for i := range want {
		if stations[i] != want[i] {
			t.Errorf("stations[%d] = %+v; want %+v", i, stations[i], want[i])
		}
	}
}

func TestGetStationActivity(t *testing.T) {
	db := setupTestDB(t)
	insertMeasurements(t, db,
		types.Measurement{Station: "A", Date: "2017-01-01", Tobs: 70},
		types.Measurement{Station: "B", Date: "2017-01-01", Tobs: 70},
		types.Measurement{Station: "B", Date: "2017-01-02", Tobs: 70},
		types.Measurement{Station: "B", Date: "2017-01-03", Tobs: 70},
		types.Measurement{Station: "C", Date: "2017-01-01", Tobs: 70},
		types.Measurement{Station: "C", Date: "2017-01-02", Tobs: 70},
	)

	got, err := NewRepository().GetStationActivity(context.Background(), db)
	if err != nil {
		t.Fatalf("GetStationActivity: %v", err)
	}
	want := []types.StationActivity{{Station: "B", Count: 3}, {Station: "C", Count: 2}, {Station: "A", Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("GetStationActivity: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("activity[%d] = %+v; want %+v", i, got[i], want[i])
		}
	}
}

func TestGetTemperatureObservations(t *testing.T) {
	db := setupTestDB(t)
	insertMeasurements(t, db,
		types.Measurement{Station: "USC00519281", Date: "2016-09-01", Tobs: 70},
		types.Measurement{Station: "USC00519281", Date: "2016-10-01", Tobs: 65},
		types.Measurement{Station: "USC00519281", Date: "2017-01-01", Tobs: 80},
		types.Measurement{Station: "USC00519281", Date: "2016-08-22", Tobs: 50},
		types.Measurement{Station: "OTHER", Date: "2017-01-01", Tobs: 90},
	)

	got, err := NewRepository().GetTemperatureObservations(context.Background(), db, "USC00519281", "2016-08-23")
	if err != nil {
		t.Fatalf("GetTemperatureObservations: %v", err)
	}
	want := []float64{65, 70, 80}
	if len(got) != len(want) {
		t.Fatalf("GetTemperatureObservations = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tobs[%d] = %v; want %v", i, got[i], want[i])
		}
	}
}

func TestGetTemperatureStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	ctx := context.Background()
	insertMeasurements(t, db,
		types.Measurement{Station: "A", Date: "2010-01-01", Tobs: 60},
		types.Measurement{Station: "A", Date: "2016-08-23", Tobs: 70},
		types.Measurement{Station: "B", Date: "2017-08-23", Tobs: 80},
	)

	until, err := repo.GetTemperatureStatsUntil(ctx, db, "2016-08-23")
	if err != nil {
		t.Fatalf("GetTemperatureStatsUntil: %v", err)
	}
	if until.Min == nil || until.Avg == nil || until.Max == nil {
		t.Fatalf("GetTemperatureStatsUntil = %+v; want all values set", until)
	}
	if *until.Min != 60 || *until.Avg != 65 || *until.Max != 70 {
		t.Errorf("until = [%v %v %v]; want [60 65 70]", *until.Min, *until.Avg, *until.Max)
	}

	between, err := repo.GetTemperatureStatsBetween(ctx, db, "2016-08-23", "2017-08-23")
	if err != nil {
		t.Fatalf("GetTemperatureStatsBetween: %v", err)
	}
	if between.Min == nil || between.Avg == nil || between.Max == nil {
		t.Fatalf("GetTemperatureStatsBetween = %+v; want all values set", between)
	}
	if *between.Min != 70 || *between.Avg != 75 || *between.Max != 80 {
		t.Errorf("between = [%v %v %v]; want [70 75 80]", *between.Min, *between.Avg, *between.Max)
	}
}

func TestGetTemperatureStats_NoRowsIsNull(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	ctx := context.Background()

	until, err := repo.GetTemperatureStatsUntil(ctx, db, "2017-01-01")
	if err != nil {
		t.Fatalf("GetTemperatureStatsUntil: %v", err)
	}
	if until.Min != nil || until.Avg != nil || until.Max != nil {
		t.Errorf("until = %+v; want all nil", until)
	}

	// Malformed dates are compared as text and simply match nothing.
	between, err := repo.GetTemperatureStatsBetween(ctx, db, "not-a-date", "also-not")
	if err != nil {
		t.Fatalf("GetTemperatureStatsBetween: %v", err)
	}
	if between.Min != nil || between.Avg != nil || between.Max != nil {
		t.Errorf("between = %+v; want all nil", between)
	}
}
