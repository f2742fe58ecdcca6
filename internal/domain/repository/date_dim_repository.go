package repository

import (
	"context"
	"time"

	"flight-pipeline-service/internal/domain/entity"
)

// DateDimRepository defines the interface for date dimension operations
type DateDimRepository interface {
	BulkUpsert(ctx context.Context, dates []entity.DateDim) (int, error)
	DateIDs(ctx context.Context) ([]time.Time, error)
	Count(ctx context.Context) (int64, error)
}
