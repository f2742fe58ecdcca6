package entity

import (
	"time"
)

// WeatherObservationTimeLayout normalizes observation timestamps for
// existence-set keys and log output.
const WeatherObservationTimeLayout = "2006-01-02 15:04:05"

// WeatherObservation represents one hourly station observation, keyed by
// (AirportCode, ObservationTime). Observation generation is not
// deterministic across runs, so loads dedup through both the conflict
// target and an explicit pre-check existence set.
type WeatherObservation struct {
	ID              uint
	AirportCode     string
	ObservationDate time.Time
	ObservationTime time.Time
	AvgTemperature  *float64
	MaxTemperature  *float64
	MinTemperature  *float64
	AvgWindSpeed    *float64
	MaxWindSpeed    *float64
	AvgVisibility   *float64
	Precipitation   *float64
	SnowDepth       *float64
	DewPoint        *float64
	Humidity        *float64
	Conditions      string
}

// Key returns the existence-set key for the observation's natural key
func (w *WeatherObservation) Key() string {
	return WeatherKey(w.AirportCode, w.ObservationTime)
}

// WeatherKey builds the existence-set key for an (airport, time) pair
func WeatherKey(airportCode string, observationTime time.Time) string {
	return airportCode + "|" + observationTime.UTC().Format(WeatherObservationTimeLayout)
}

// WeatherStats summarizes the observations table for the post-run report
type WeatherStats struct {
	TotalObservations int64
	AirportsCovered   int64
	AvgTemperature    *float64
	PrecipDays        int64
	SnowDays          int64
}
