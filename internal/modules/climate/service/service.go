package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"surfsup-server/internal/db"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/types"
)

const (
	// AnchorDate is the last day of the dataset. It is fixed, not derived
	// from the data.
	AnchorDate = "2017-08-23"
	// TobsStation is the station whose observations /tobs returns.
	TobsStation = "USC00519281"

	dateLayout = "2006-01-02"
)

// Routes is the discovery index served at "/".
var Routes = []string{
	"/api/v1.0/precipitation",
	"/api/v1.0/stations",
	"/api/v1.0/tobs",
	"/api/v1.0/temp/<start>",
	"/api/v1.0/temp/<start>/<end>",
}

// windowStart is one calendar year before AnchorDate.
var windowStart = mustYearBefore(AnchorDate)

func mustYearBefore(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		panic(fmt.Sprintf("anchor date %q: %v", date, err))
	}
	return t.AddDate(-1, 0, 0).Format(dateLayout)
}

type Service struct {
	sessions   db.SessionProvider
	repository repository.ClimateRepository
	logger     *slog.Logger
}

func NewService(sessions db.SessionProvider, repository repository.ClimateRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sessions: sessions, repository: repository, logger: logger}
}

func (s *Service) ListRoutes() []string {
	out := make([]string, len(Routes))
	copy(out, Routes)
	return out
}

// PrecipitationLastYear returns every recorded (date, prcp) pair in the year
// ending at AnchorDate, ordered by date. Rows from several stations may share
// a date.
func (s *Service) PrecipitationLastYear(ctx context.Context) ([]types.Precipitation, error) {
	var out []types.Precipitation
	err := s.sessions.WithSession(ctx, func(q db.DBTX) error {
		latest, err := s.repository.GetLatestDate(ctx, q)
		if err != nil {
			return fmt.Errorf("latest date: %w", err)
		}
		s.logger.DebugContext(ctx, "precipitation window",
			"latest_date", latest, "anchor_date", AnchorDate, "start", windowStart)

		out, err = s.repository.GetPrecipitationSince(ctx, q, windowStart)
		if err != nil {
			return fmt.Errorf("precipitation since %s: %w", windowStart, err)
		}
		return nil
	})
	return out, err
}

// ListStations returns [station1, name1, station2, name2, ...].
func (s *Service) ListStations(ctx context.Context) ([]string, error) {
	var stations []types.Station
	err := s.sessions.WithSession(ctx, func(q db.DBTX) error {
		var err error
		stations, err = s.repository.GetStations(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}
	out := make([]string, 0, 2*len(stations))
	for _, st := range stations {
		out = append(out, st.Station, st.Name)
	}
	return out, nil
}

// MostActiveStationTemperatures ranks stations by observation count, then
// returns the last year of tobs for TobsStation sorted by value. The ranking
// only feeds the debug log; the queried station stays fixed.
func (s *Service) MostActiveStationTemperatures(ctx context.Context) ([]float64, error) {
	var out []float64
	err := s.sessions.WithSession(ctx, func(q db.DBTX) error {
		activity, err := s.repository.GetStationActivity(ctx, q)
		if err != nil {
			return fmt.Errorf("station activity: %w", err)
		}
		if len(activity) > 0 {
			s.logger.DebugContext(ctx, "station activity",
				"most_active", activity[0].Station,
				"observations", activity[0].Count,
				"stations", len(activity),
				"queried", TobsStation)
		}

		out, err = s.repository.GetTemperatureObservations(ctx, q, TobsStation, windowStart)
		if err != nil {
			return fmt.Errorf("temperature observations for %s: %w", TobsStation, err)
		}
		return nil
	})
	return out, err
}

// TemperatureStats computes MIN/AVG/MAX of tobs. With end nil or empty the
// filter is date <= start; otherwise start <= date <= end and the summary is
// marked ranged. Dates are passed through unvalidated.
func (s *Service) TemperatureStats(ctx context.Context, start string, end *string) (types.TemperatureSummary, error) {
	ranged := end != nil && *end != ""
	var stats types.TemperatureStats
	err := s.sessions.WithSession(ctx, func(q db.DBTX) error {
		var err error
		if ranged {
			stats, err = s.repository.GetTemperatureStatsBetween(ctx, q, start, *end)
		} else {
			stats, err = s.repository.GetTemperatureStatsUntil(ctx, q, start)
		}
		return err
	})
	if err != nil {
		return types.TemperatureSummary{}, fmt.Errorf("temperature stats: %w", err)
	}
	return types.TemperatureSummary{Stats: stats, Ranged: ranged}, nil
}
