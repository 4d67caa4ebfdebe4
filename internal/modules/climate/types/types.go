package types

import (
	"github.com/goccy/go-json"
)

// Station is one row of the station table.
type Station struct {
	Station string `json:"station"`
	Name    string `json:"name"`
}

// Measurement is one row of the measurement table. Prcp is nil when the
// precipitation was not recorded.
type Measurement struct {
	Station string   `json:"station"`
	Date    string   `json:"date"`
	Prcp    *float64 `json:"prcp"`
	Tobs    float64  `json:"tobs"`
}

// Precipitation is a (date, prcp) pair from the trailing-year window.
type Precipitation struct {
	Date string  `json:"date"`
	Prcp float64 `json:"prcp"`
}

// StationActivity is a station with its number of measurement rows.
type StationActivity struct {
	Station string `json:"station"`
	Count   int    `json:"count"`
}

// TemperatureStats holds MIN/AVG/MAX of tobs. A nil field means the
// aggregate ran over zero rows.
type TemperatureStats struct {
	Min *float64
	Avg *float64
	Max *float64
}

// Values returns the aggregates in [min, avg, max] order.
func (s TemperatureStats) Values() []*float64 {
	return []*float64{s.Min, s.Avg, s.Max}
}

// TemperatureSummary is the response of the stats routes. An open-ended
// query (start only) encodes as a bare [min, avg, max] array; a ranged one
// as {"temp": [min, avg, max]}. Clients depend on both shapes.
type TemperatureSummary struct {
	Stats  TemperatureStats
	Ranged bool
}

type rangedSummary struct {
	Temp []*float64 `json:"temp"`
}

func (s TemperatureSummary) MarshalJSON() ([]byte, error) {
	if s.Ranged {
		return json.Marshal(rangedSummary{Temp: s.Stats.Values()})
	}
	return json.Marshal(s.Stats.Values())
}
