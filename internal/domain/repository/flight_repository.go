package repository

import (
	"context"

	"flight-pipeline-service/internal/domain/entity"
)

// FlightRepository defines the interface for flight fact table operations
type FlightRepository interface {
	BulkInsert(ctx context.Context, flights []entity.Flight) error
	Count(ctx context.Context) (int64, error)
	CountUnknownOrigins(ctx context.Context) (int64, error)
	CountUnknownDests(ctx context.Context) (int64, error)
	CountArrDelaysOutOfRange(ctx context.Context, floor, ceil float64) (int64, error)
	Stats(ctx context.Context) (*entity.FlightStats, error)
}
