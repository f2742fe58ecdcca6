package repository

import (
	"context"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDateDimRepository implements the DateDimRepository interface
type GormDateDimRepository struct {
	db *gorm.DB
}

// NewGormDateDimRepository creates a new GORM date dimension repository
func NewGormDateDimRepository(db *gorm.DB) repository.DateDimRepository {
	return &GormDateDimRepository{
		db: db,
	}
}

// DateDim GORM model for database mapping
type DateDim struct {
	DateID     time.Time `gorm:"column:date_id;type:date;primaryKey"`
	Year       int       `gorm:"column:year"`
	Quarter    int       `gorm:"column:quarter"`
	Month      int       `gorm:"column:month"`
	DayOfMonth int       `gorm:"column:day_of_month"`
	DayOfWeek  int       `gorm:"column:day_of_week"`
	DayName    string    `gorm:"column:day_name"`
	MonthName  string    `gorm:"column:month_name"`
	IsWeekend  bool      `gorm:"column:is_weekend"`
	Season     string    `gorm:"column:season"`
}

// TableName overrides the default table name
func (DateDim) TableName() string {
	return "date_dim"
}

// BulkUpsert inserts dates with conflict do-nothing on the date id. Rows
// are immutable once present, so regenerating a date is always safe.
func (r *GormDateDimRepository) BulkUpsert(ctx context.Context, dates []entity.DateDim) (int, error) {
	if len(dates) == 0 {
		return 0, nil
	}

	models := make([]DateDim, 0, len(dates))
	for _, d := range dates {
		models = append(models, DateDim{
			DateID:     d.DateID,
			Year:       d.Year,
			Quarter:    d.Quarter,
			Month:      d.Month,
			DayOfMonth: d.DayOfMonth,
			DayOfWeek:  d.DayOfWeek,
			DayName:    d.DayName,
			MonthName:  d.MonthName,
			IsWeekend:  d.IsWeekend,
			Season:     d.Season,
		})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date_id"}},
		DoNothing: true,
	}).CreateInBatches(models, 1000)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(result.RowsAffected), nil
}

// DateIDs returns every date in the dimension in ascending order
func (r *GormDateDimRepository) DateIDs(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time
	result := r.db.WithContext(ctx).Model(&DateDim{}).
		Order("date_id").
		Pluck("date_id", &dates)
	if result.Error != nil {
		return nil, result.Error
	}
	return dates, nil
}

// Count returns the number of dates in the dimension
func (r *GormDateDimRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&DateDim{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
