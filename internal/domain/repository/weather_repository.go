package repository

import (
	"context"

	"flight-pipeline-service/internal/domain/entity"
)

// WeatherRepository defines the interface for weather observation operations
type WeatherRepository interface {
	BulkInsert(ctx context.Context, observations []entity.WeatherObservation) error
	ExistingKeys(ctx context.Context) (map[string]struct{}, error)
	Count(ctx context.Context) (int64, error)
	CountAirportsCovered(ctx context.Context) (int64, error)
	CountDatesCovered(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*entity.WeatherStats, error)
}
