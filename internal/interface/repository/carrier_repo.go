package repository

import (
	"context"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCarrierRepository implements the CarrierRepository interface
type GormCarrierRepository struct {
	db *gorm.DB
}

// NewGormCarrierRepository creates a new GORM carrier repository
func NewGormCarrierRepository(db *gorm.DB) repository.CarrierRepository {
	return &GormCarrierRepository{
		db: db,
	}
}

// Carriers GORM model for database mapping
type Carriers struct {
	ID          uint   `gorm:"primaryKey"`
	CarrierCode string `gorm:"column:carrier_code;type:varchar(10);uniqueIndex;not null"`
	CarrierName string `gorm:"column:carrier_name"`
	DotID       *int   `gorm:"column:dot_id"`
	CreatedAt   time.Time
}

// TableName overrides the default table name
func (Carriers) TableName() string {
	return "carriers"
}

// BulkUpsert inserts carriers with conflict do-nothing on the carrier code
func (r *GormCarrierRepository) BulkUpsert(ctx context.Context, carriers []entity.Carrier) (int, error) {
	if len(carriers) == 0 {
		return 0, nil
	}

	models := make([]Carriers, 0, len(carriers))
	for _, c := range carriers {
		models = append(models, Carriers{
			CarrierCode: c.Code,
			CarrierName: c.Name,
			DotID:       c.DotID,
		})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "carrier_code"}},
		DoNothing: true,
	}).CreateInBatches(models, 1000)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(result.RowsAffected), nil
}

// Codes returns every known carrier code in deterministic order
func (r *GormCarrierRepository) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	result := r.db.WithContext(ctx).Model(&Carriers{}).
		Order("carrier_code").
		Pluck("carrier_code", &codes)
	if result.Error != nil {
		return nil, result.Error
	}
	return codes, nil
}

// Count returns the number of carriers in the dimension
func (r *GormCarrierRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Carriers{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
