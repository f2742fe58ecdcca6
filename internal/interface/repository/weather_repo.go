package repository

import (
	"context"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWeatherRepository implements the WeatherRepository interface
type GormWeatherRepository struct {
	db *gorm.DB
}

// NewGormWeatherRepository creates a new GORM weather repository
func NewGormWeatherRepository(db *gorm.DB) repository.WeatherRepository {
	return &GormWeatherRepository{
		db: db,
	}
}

// WeatherObservations GORM model for database mapping
type WeatherObservations struct {
	ID              uint      `gorm:"primaryKey"`
	AirportCode     string    `gorm:"column:airport_code;type:varchar(3);uniqueIndex:idx_weather_natural_key;not null"`
	ObservationDate time.Time `gorm:"column:observation_date;type:date;not null"`
	ObservationTime time.Time `gorm:"column:observation_time;uniqueIndex:idx_weather_natural_key;not null"`
	AvgTemperature  *float64  `gorm:"column:avg_temperature"`
	MaxTemperature  *float64  `gorm:"column:max_temperature"`
	MinTemperature  *float64  `gorm:"column:min_temperature"`
	AvgWindSpeed    *float64  `gorm:"column:avg_wind_speed"`
	MaxWindSpeed    *float64  `gorm:"column:max_wind_speed"`
	AvgVisibility   *float64  `gorm:"column:avg_visibility"`
	Precipitation   *float64  `gorm:"column:precipitation"`
	SnowDepth       *float64  `gorm:"column:snow_depth"`
	DewPoint        *float64  `gorm:"column:dew_point"`
	Humidity        *float64  `gorm:"column:humidity"`
	Conditions      string    `gorm:"column:conditions"`
}

// TableName overrides the default table name
func (WeatherObservations) TableName() string {
	return "weather_observations"
}

// BulkInsert writes observations with conflict do-nothing on
// (airport_code, observation_time)
func (r *GormWeatherRepository) BulkInsert(ctx context.Context, observations []entity.WeatherObservation) error {
	if len(observations) == 0 {
		return nil
	}

	models := make([]WeatherObservations, 0, len(observations))
	for _, o := range observations {
		models = append(models, WeatherObservations{
			AirportCode:     o.AirportCode,
			ObservationDate: o.ObservationDate,
			ObservationTime: o.ObservationTime,
			AvgTemperature:  o.AvgTemperature,
			MaxTemperature:  o.MaxTemperature,
			MinTemperature:  o.MinTemperature,
			AvgWindSpeed:    o.AvgWindSpeed,
			MaxWindSpeed:    o.MaxWindSpeed,
			AvgVisibility:   o.AvgVisibility,
			Precipitation:   o.Precipitation,
			SnowDepth:       o.SnowDepth,
			DewPoint:        o.DewPoint,
			Humidity:        o.Humidity,
			Conditions:      o.Conditions,
		})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "airport_code"},
			{Name: "observation_time"},
		},
		DoNothing: true,
	}).CreateInBatches(models, 1000)

	return result.Error
}

// ExistingKeys returns the set of (airport, observation time) pairs already
// loaded, used as the pre-check existence set before inserting
func (r *GormWeatherRepository) ExistingKeys(ctx context.Context) (map[string]struct{}, error) {
	var rows []struct {
		AirportCode     string
		ObservationTime time.Time
	}
	result := r.db.WithContext(ctx).Model(&WeatherObservations{}).
		Select("airport_code", "observation_time").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	keys := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		keys[entity.WeatherKey(row.AirportCode, row.ObservationTime)] = struct{}{}
	}
	return keys, nil
}

// Count returns the number of weather observations
func (r *GormWeatherRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&WeatherObservations{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// CountAirportsCovered returns how many distinct airports present in the
// airports dimension have at least one observation
func (r *GormWeatherRepository) CountAirportsCovered(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&WeatherObservations{}).
		Joins("JOIN airports ON airports.airport_code = weather_observations.airport_code").
		Distinct("weather_observations.airport_code").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// CountDatesCovered returns how many distinct dates present in the date
// dimension have at least one observation
func (r *GormWeatherRepository) CountDatesCovered(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&WeatherObservations{}).
		Joins("JOIN date_dim ON date_dim.date_id = weather_observations.observation_date").
		Distinct("weather_observations.observation_date").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// Stats aggregates the observations table for the post-run report
func (r *GormWeatherRepository) Stats(ctx context.Context) (*entity.WeatherStats, error) {
	var row struct {
		TotalObservations int64
		AirportsCovered   int64
		AvgTemperature    *float64
		PrecipDays        int64
		SnowDays          int64
	}

	result := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_observations,
			COUNT(DISTINCT airport_code) AS airports_covered,
			AVG(avg_temperature) AS avg_temperature,
			COALESCE(SUM(CASE WHEN precipitation > 0 THEN 1 ELSE 0 END), 0) AS precip_days,
			COALESCE(SUM(CASE WHEN snow_depth > 0 THEN 1 ELSE 0 END), 0) AS snow_days
		FROM weather_observations
	`).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entity.WeatherStats{
		TotalObservations: row.TotalObservations,
		AirportsCovered:   row.AirportsCovered,
		AvgTemperature:    row.AvgTemperature,
		PrecipDays:        row.PrecipDays,
		SnowDays:          row.SnowDays,
	}, nil
}
