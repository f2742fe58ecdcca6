package repository

import (
	"context"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormRejectedRecordRepository implements the RejectedRecordRepository interface
type GormRejectedRecordRepository struct {
	db *gorm.DB
}

// NewGormRejectedRecordRepository creates a new GORM rejected record repository
func NewGormRejectedRecordRepository(db *gorm.DB) repository.RejectedRecordRepository {
	return &GormRejectedRecordRepository{
		db: db,
	}
}

// RejectedRecords GORM model for database mapping. Deliberately has no
// unique key: the audit sink is append-only and re-processing a file that
// failed mid-run double-logs its rejects.
type RejectedRecords struct {
	ID              uint   `gorm:"primaryKey"`
	Source          string `gorm:"column:source;index"`
	FileName        string `gorm:"column:file_name;index"`
	RowNumber       int    `gorm:"column:row_number"`
	RawData         string `gorm:"column:raw_data;type:text"`
	RejectionReason string `gorm:"column:rejection_reason;type:text"`
	CreatedAt       time.Time
}

// TableName overrides the default table name
func (RejectedRecords) TableName() string {
	return "rejected_records"
}

// BulkInsert appends a chunk of rejects to the audit sink
func (r *GormRejectedRecordRepository) BulkInsert(ctx context.Context, records []entity.RejectedRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]RejectedRecords, 0, len(records))
	for _, rec := range records {
		models = append(models, RejectedRecords{
			Source:          rec.Source,
			FileName:        rec.FileName,
			RowNumber:       rec.RowNumber,
			RawData:         rec.RawData,
			RejectionReason: rec.RejectionReason,
		})
	}

	result := r.db.WithContext(ctx).CreateInBatches(models, 1000)
	return result.Error
}

// CountByFile returns how many rejects have been logged for a file
func (r *GormRejectedRecordRepository) CountByFile(ctx context.Context, source, fileName string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&RejectedRecords{}).
		Where("source = ? AND file_name = ?", source, fileName).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
