package repository

import (
	"context"

	"flight-pipeline-service/internal/domain/entity"
)

// CarrierRepository defines the interface for carrier dimension operations
type CarrierRepository interface {
	BulkUpsert(ctx context.Context, carriers []entity.Carrier) (int, error)
	Codes(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}
