package repository

import (
	"context"

	"flight-pipeline-service/internal/domain/entity"
)

// AirportRepository defines the interface for airport dimension operations
type AirportRepository interface {
	BulkUpsert(ctx context.Context, airports []entity.Airport) (int, error)
	Codes(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	GetByCode(ctx context.Context, code string) (*entity.Airport, error)
}
