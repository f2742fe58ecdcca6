package repository

import (
	"context"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// Flights GORM model for database mapping. The unique index over
// (flight_date, carrier_code, flight_number, origin_airport) is the
// natural key and conflict target for idempotent loads.
type Flights struct {
	ID            uint      `gorm:"primaryKey"`
	FlightDate    time.Time `gorm:"column:flight_date;type:date;uniqueIndex:idx_flights_natural_key;not null"`
	CarrierCode   string    `gorm:"column:carrier_code;type:varchar(10);uniqueIndex:idx_flights_natural_key;not null"`
	TailNumber    *string   `gorm:"column:tail_number"`
	FlightNumber  *int      `gorm:"column:flight_number;uniqueIndex:idx_flights_natural_key"`
	OriginAirport string    `gorm:"column:origin_airport;type:varchar(3);uniqueIndex:idx_flights_natural_key;not null"`
	OriginCity    *string   `gorm:"column:origin_city"`
	OriginState   *string   `gorm:"column:origin_state"`
	DestAirport   string    `gorm:"column:dest_airport;type:varchar(3);not null"`
	DestCity      *string   `gorm:"column:dest_city"`
	DestState     *string   `gorm:"column:dest_state"`

	ScheduledDep    *string  `gorm:"column:scheduled_dep"`
	ActualDep       *string  `gorm:"column:actual_dep"`
	DepDelay        *float64 `gorm:"column:dep_delay"`
	DepDelayMinutes *float64 `gorm:"column:dep_delay_minutes"`
	DepDelay15      bool     `gorm:"column:dep_delay_15"`
	ScheduledArr    *string  `gorm:"column:scheduled_arr"`
	ActualArr       *string  `gorm:"column:actual_arr"`
	ArrDelay        *float64 `gorm:"column:arr_delay"`
	ArrDelayMinutes *float64 `gorm:"column:arr_delay_minutes"`
	ArrDelay15      bool     `gorm:"column:arr_delay_15"`

	Cancelled        bool    `gorm:"column:cancelled"`
	CancellationCode *string `gorm:"column:cancellation_code"`
	Diverted         bool    `gorm:"column:diverted"`

	Distance         *float64 `gorm:"column:distance"`
	AirTime          *float64 `gorm:"column:air_time"`
	ScheduledElapsed *float64 `gorm:"column:scheduled_elapsed"`
	ActualElapsed    *float64 `gorm:"column:actual_elapsed"`

	CarrierDelay      *float64 `gorm:"column:carrier_delay"`
	WeatherDelay      *float64 `gorm:"column:weather_delay"`
	NasDelay          *float64 `gorm:"column:nas_delay"`
	SecurityDelay     *float64 `gorm:"column:security_delay"`
	LateAircraftDelay *float64 `gorm:"column:late_aircraft_delay"`
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "flights"
}

// BulkInsert writes a chunk of accepted rows in batched statements with
// conflict do-nothing on the natural key. Duplicate rows within or across
// runs are silently absorbed.
func (r *GormFlightRepository) BulkInsert(ctx context.Context, flights []entity.Flight) error {
	if len(flights) == 0 {
		return nil
	}

	models := make([]Flights, 0, len(flights))
	for _, f := range flights {
		models = append(models, Flights{
			FlightDate:        f.FlightDate,
			CarrierCode:       f.CarrierCode,
			TailNumber:        f.TailNumber,
			FlightNumber:      f.FlightNumber,
			OriginAirport:     f.OriginAirport,
			OriginCity:        f.OriginCity,
			OriginState:       f.OriginState,
			DestAirport:       f.DestAirport,
			DestCity:          f.DestCity,
			DestState:         f.DestState,
			ScheduledDep:      f.ScheduledDep,
			ActualDep:         f.ActualDep,
			DepDelay:          f.DepDelay,
			DepDelayMinutes:   f.DepDelayMinutes,
			DepDelay15:        f.DepDelay15,
			ScheduledArr:      f.ScheduledArr,
			ActualArr:         f.ActualArr,
			ArrDelay:          f.ArrDelay,
			ArrDelayMinutes:   f.ArrDelayMinutes,
			ArrDelay15:        f.ArrDelay15,
			Cancelled:         f.Cancelled,
			CancellationCode:  f.CancellationCode,
			Diverted:          f.Diverted,
			Distance:          f.Distance,
			AirTime:           f.AirTime,
			ScheduledElapsed:  f.ScheduledElapsed,
			ActualElapsed:     f.ActualElapsed,
			CarrierDelay:      f.CarrierDelay,
			WeatherDelay:      f.WeatherDelay,
			NasDelay:          f.NasDelay,
			SecurityDelay:     f.SecurityDelay,
			LateAircraftDelay: f.LateAircraftDelay,
		})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "flight_date"},
			{Name: "carrier_code"},
			{Name: "flight_number"},
			{Name: "origin_airport"},
		},
		DoNothing: true,
	}).CreateInBatches(models, 1000)

	return result.Error
}

// Count returns the number of rows in the fact table
func (r *GormFlightRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Flights{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// CountUnknownOrigins returns the number of fact rows whose origin airport
// is missing from the airports dimension
func (r *GormFlightRepository) CountUnknownOrigins(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Flights{}).
		Joins("LEFT JOIN airports ON airports.airport_code = flights.origin_airport").
		Where("airports.airport_code IS NULL").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// CountUnknownDests returns the number of fact rows whose destination
// airport is missing from the airports dimension
func (r *GormFlightRepository) CountUnknownDests(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Flights{}).
		Joins("LEFT JOIN airports ON airports.airport_code = flights.dest_airport").
		Where("airports.airport_code IS NULL").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// CountArrDelaysOutOfRange returns the number of fact rows with an arrival
// delay outside [floor, ceil]
func (r *GormFlightRepository) CountArrDelaysOutOfRange(ctx context.Context, floor, ceil float64) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Flights{}).
		Where("arr_delay IS NOT NULL AND (arr_delay < ? OR arr_delay > ?)", floor, ceil).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// Stats aggregates the fact table for the post-run report
func (r *GormFlightRepository) Stats(ctx context.Context) (*entity.FlightStats, error) {
	var row struct {
		TotalFlights  int64
		Carriers      int64
		Origins       int64
		Dests         int64
		AvgArrDelay   *float64
		Cancellations int64
	}

	result := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_flights,
			COUNT(DISTINCT carrier_code) AS carriers,
			COUNT(DISTINCT origin_airport) AS origins,
			COUNT(DISTINCT dest_airport) AS dests,
			AVG(arr_delay) AS avg_arr_delay,
			COALESCE(SUM(CASE WHEN cancelled THEN 1 ELSE 0 END), 0) AS cancellations
		FROM flights
	`).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entity.FlightStats{
		TotalFlights:  row.TotalFlights,
		Carriers:      row.Carriers,
		Origins:       row.Origins,
		Dests:         row.Dests,
		AvgArrDelay:   row.AvgArrDelay,
		Cancellations: row.Cancellations,
	}, nil
}
