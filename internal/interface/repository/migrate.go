package repository

import (
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the warehouse schema for every model this
// package maps
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Airports{},
		&Carriers{},
		&DateDim{},
		&Flights{},
		&WeatherObservations{},
		&PipelineRuns{},
		&RejectedRecords{},
	)
}
