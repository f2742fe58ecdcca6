package repository

import (
	"context"

	"flight-pipeline-service/internal/domain/entity"
)

// PipelineRunRepository defines the interface for ledger operations.
// Upsert must never create a second row for the same (file, source) pair.
type PipelineRunRepository interface {
	Upsert(ctx context.Context, run *entity.PipelineRun) error
	CompletedFileNames(ctx context.Context, source string) ([]string, error)
	LatestCompleted(ctx context.Context, source string) (*entity.PipelineRun, error)
	GetByFileAndSource(ctx context.Context, fileName, source string) (*entity.PipelineRun, error)
}
