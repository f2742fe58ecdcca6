package repository

import (
	"context"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Airports GORM model for database mapping
type Airports struct {
	ID          uint     `gorm:"primaryKey"`
	AirportCode string   `gorm:"column:airport_code;type:varchar(3);uniqueIndex;not null"`
	AirportName string   `gorm:"column:airport_name"`
	City        string   `gorm:"column:city"`
	Country     string   `gorm:"column:country"`
	Latitude    *float64 `gorm:"column:latitude"`
	Longitude   *float64 `gorm:"column:longitude"`
	Altitude    *int     `gorm:"column:altitude"`
	Timezone    *string  `gorm:"column:timezone"`
	CreatedAt   time.Time
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "airports"
}

// BulkUpsert inserts airports with conflict do-nothing on the IATA code,
// so the first-seen row for a code wins. Returns the number of rows the
// database actually inserted.
func (r *GormAirportRepository) BulkUpsert(ctx context.Context, airports []entity.Airport) (int, error) {
	if len(airports) == 0 {
		return 0, nil
	}

	models := make([]Airports, 0, len(airports))
	for _, a := range airports {
		models = append(models, Airports{
			AirportCode: a.Code,
			AirportName: a.Name,
			City:        a.City,
			Country:     a.Country,
			Latitude:    a.Latitude,
			Longitude:   a.Longitude,
			Altitude:    a.Altitude,
			Timezone:    a.Timezone,
		})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "airport_code"}},
		DoNothing: true,
	}).CreateInBatches(models, 1000)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(result.RowsAffected), nil
}

// Codes returns every known airport code in deterministic order
func (r *GormAirportRepository) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	result := r.db.WithContext(ctx).Model(&Airports{}).
		Order("airport_code").
		Pluck("airport_code", &codes)
	if result.Error != nil {
		return nil, result.Error
	}
	return codes, nil
}

// Count returns the number of airports in the dimension
func (r *GormAirportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Airports{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetByCode finds an airport by IATA code
func (r *GormAirportRepository) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	var airport Airports
	result := r.db.WithContext(ctx).Where("airport_code = ?", code).First(&airport)

	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Airport{
		ID:        airport.ID,
		Code:      airport.AirportCode,
		Name:      airport.AirportName,
		City:      airport.City,
		Country:   airport.Country,
		Latitude:  airport.Latitude,
		Longitude: airport.Longitude,
		Altitude:  airport.Altitude,
		Timezone:  airport.Timezone,
		CreatedAt: airport.CreatedAt,
	}, nil
}
