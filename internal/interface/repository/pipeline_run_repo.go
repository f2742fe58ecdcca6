package repository

import (
	"context"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPipelineRunRepository implements the PipelineRunRepository interface
type GormPipelineRunRepository struct {
	db *gorm.DB
}

// NewGormPipelineRunRepository creates a new GORM pipeline run repository
func NewGormPipelineRunRepository(db *gorm.DB) repository.PipelineRunRepository {
	return &GormPipelineRunRepository{
		db: db,
	}
}

// PipelineRuns GORM model for database mapping
type PipelineRuns struct {
	ID            uint       `gorm:"primaryKey"`
	FileName      string     `gorm:"column:file_name;uniqueIndex:idx_pipeline_runs_file_source;not null"`
	Source        string     `gorm:"column:source;uniqueIndex:idx_pipeline_runs_file_source;not null"`
	RowsProcessed int        `gorm:"column:rows_processed"`
	RowsLoaded    int        `gorm:"column:rows_loaded"`
	RowsRejected  int        `gorm:"column:rows_rejected"`
	Status        string     `gorm:"column:status"`
	StartedAt     time.Time  `gorm:"column:started_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
}

// TableName overrides the default table name
func (PipelineRuns) TableName() string {
	return "pipeline_runs"
}

// Upsert writes the ledger row for a (file, source) pair. On conflict the
// counters, status and completion time are updated in place; started_at
// keeps the value from the first attempt.
func (r *GormPipelineRunRepository) Upsert(ctx context.Context, run *entity.PipelineRun) error {
	model := PipelineRuns{
		FileName:      run.FileName,
		Source:        run.Source,
		RowsProcessed: run.RowsProcessed,
		RowsLoaded:    run.RowsLoaded,
		RowsRejected:  run.RowsRejected,
		Status:        run.Status,
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "file_name"}, {Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rows_processed", "rows_loaded", "rows_rejected", "status", "completed_at",
		}),
	}).Create(&model)

	return result.Error
}

// CompletedFileNames returns the names of files already fully ingested for
// a source, in deterministic order
func (r *GormPipelineRunRepository) CompletedFileNames(ctx context.Context, source string) ([]string, error) {
	var names []string
	result := r.db.WithContext(ctx).Model(&PipelineRuns{}).
		Where("source = ? AND status = ?", source, entity.RunStatusCompleted).
		Order("file_name").
		Pluck("file_name", &names)
	if result.Error != nil {
		return nil, result.Error
	}
	return names, nil
}

// LatestCompleted returns the most recently completed ledger row for a
// source, or nil when the source has no completed rows yet
func (r *GormPipelineRunRepository) LatestCompleted(ctx context.Context, source string) (*entity.PipelineRun, error) {
	var model PipelineRuns
	result := r.db.WithContext(ctx).
		Where("source = ? AND status = ?", source, entity.RunStatusCompleted).
		Order("completed_at DESC").
		First(&model)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return toPipelineRunEntity(&model), nil
}

// GetByFileAndSource finds the ledger row for a (file, source) pair
func (r *GormPipelineRunRepository) GetByFileAndSource(ctx context.Context, fileName, source string) (*entity.PipelineRun, error) {
	var model PipelineRuns
	result := r.db.WithContext(ctx).
		Where("file_name = ? AND source = ?", fileName, source).
		First(&model)

	if result.Error != nil {
		return nil, result.Error
	}

	return toPipelineRunEntity(&model), nil
}

// Convert GORM model to domain entity
func toPipelineRunEntity(model *PipelineRuns) *entity.PipelineRun {
	return &entity.PipelineRun{
		ID:            model.ID,
		FileName:      model.FileName,
		Source:        model.Source,
		RowsProcessed: model.RowsProcessed,
		RowsLoaded:    model.RowsLoaded,
		RowsRejected:  model.RowsRejected,
		Status:        model.Status,
		StartedAt:     model.StartedAt,
		CompletedAt:   model.CompletedAt,
	}
}
