package repository

import (
	"context"

	"flight-pipeline-service/internal/domain/entity"
)

// RejectedRecordRepository defines the interface for the reject audit sink
type RejectedRecordRepository interface {
	BulkInsert(ctx context.Context, records []entity.RejectedRecord) error
	CountByFile(ctx context.Context, source, fileName string) (int64, error)
}
