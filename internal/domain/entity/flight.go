package entity

import (
	"time"
)

// Flight represents one row of the flights fact table. The natural key is
// (FlightDate, CarrierCode, FlightNumber, OriginAirport); a row is inserted
// once and never updated, duplicate inserts are absorbed by the conflict
// target. Nullable metrics are pointers so failed parses load as NULL.
type Flight struct {
	ID            uint
	FlightDate    time.Time
	CarrierCode   string
	TailNumber    *string
	FlightNumber  *int
	OriginAirport string
	OriginCity    *string
	OriginState   *string
	DestAirport   string
	DestCity      *string
	DestState     *string

	ScheduledDep    *string
	ActualDep       *string
	DepDelay        *float64
	DepDelayMinutes *float64
	DepDelay15      bool
	ScheduledArr    *string
	ActualArr       *string
	ArrDelay        *float64
	ArrDelayMinutes *float64
	ArrDelay15      bool

	Cancelled        bool
	CancellationCode *string
	Diverted         bool

	Distance         *float64
	AirTime          *float64
	ScheduledElapsed *float64
	ActualElapsed    *float64

	CarrierDelay      *float64
	WeatherDelay      *float64
	NasDelay          *float64
	SecurityDelay     *float64
	LateAircraftDelay *float64
}

// FlightStats summarizes the fact table for the post-run report
type FlightStats struct {
	TotalFlights  int64
	Carriers      int64
	Origins       int64
	Dests         int64
	AvgArrDelay   *float64
	Cancellations int64
}
