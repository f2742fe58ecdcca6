package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flight-pipeline-service/internal/domain/entity"
)

// testDB opens the database named by TEST_POSTGRES_DSN and hands each
// test its own transaction, rolled back on cleanup. Skips when the
// variable is unset.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("failed to begin transaction: %v", tx.Error)
	}
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func TestPipelineRunUpsertNeverDuplicates(t *testing.T) {
	db := testDB(t)
	repo := NewGormPipelineRunRepository(db)
	ctx := context.Background()

	started := time.Now().UTC()
	run := &entity.PipelineRun{
		FileName:      "flights.csv",
		Source:        entity.SourceFlights,
		RowsProcessed: 100,
		RowsLoaded:    90,
		RowsRejected:  10,
		Status:        entity.RunStatusRunning,
		StartedAt:     started,
	}
	if err := repo.Upsert(ctx, run); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	completed := time.Now().UTC()
	run.RowsLoaded = 95
	run.RowsRejected = 5
	run.Status = entity.RunStatusCompleted
	run.CompletedAt = &completed
	if err := repo.Upsert(ctx, run); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&PipelineRuns{}).Where("file_name = ? AND source = ?", "flights.csv", entity.SourceFlights).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("ledger rows = %d, want 1", count)
	}

	got, err := repo.GetByFileAndSource(ctx, "flights.csv", entity.SourceFlights)
	if err != nil {
		t.Fatalf("GetByFileAndSource: %v", err)
	}
	if got.RowsLoaded != 95 || got.RowsRejected != 5 || got.Status != entity.RunStatusCompleted {
		t.Errorf("updated row = %+v", got)
	}
}

func TestPipelineRunCompletedFileNames(t *testing.T) {
	db := testDB(t)
	repo := NewGormPipelineRunRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, r := range []entity.PipelineRun{
		{FileName: "b.csv", Source: entity.SourceFlights, Status: entity.RunStatusCompleted, StartedAt: now, CompletedAt: &now},
		{FileName: "a.csv", Source: entity.SourceFlights, Status: entity.RunStatusCompleted, StartedAt: now, CompletedAt: &now},
		{FileName: "c.csv", Source: entity.SourceFlights, Status: entity.RunStatusRunning, StartedAt: now},
		{FileName: "a.csv", Source: entity.SourceAirports, Status: entity.RunStatusCompleted, StartedAt: now, CompletedAt: &now},
	} {
		r := r
		if err := repo.Upsert(ctx, &r); err != nil {
			t.Fatal(err)
		}
	}

	names, err := repo.CompletedFileNames(ctx, entity.SourceFlights)
	if err != nil {
		t.Fatalf("CompletedFileNames: %v", err)
	}
	if len(names) != 2 || names[0] != "a.csv" || names[1] != "b.csv" {
		t.Errorf("names = %v, want [a.csv b.csv]", names)
	}
}

func TestFlightNaturalKeyDedup(t *testing.T) {
	db := testDB(t)
	repo := NewGormFlightRepository(db)
	ctx := context.Background()

	num := 100
	flight := entity.Flight{
		FlightDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CarrierCode:   "AA",
		FlightNumber:  &num,
		OriginAirport: "JFK",
		DestAirport:   "LAX",
	}
	if err := repo.BulkInsert(ctx, []entity.Flight{flight, flight}); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	if err := repo.BulkInsert(ctx, []entity.Flight{flight}); err != nil {
		t.Fatalf("re-insert: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("fact rows = %d, want 1", count)
	}
}

func TestAirportConflictKeepsFirstSeen(t *testing.T) {
	db := testDB(t)
	repo := NewGormAirportRepository(db)
	ctx := context.Background()

	if _, err := repo.BulkUpsert(ctx, []entity.Airport{{Code: "JFK", Name: "Original", City: "New York"}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := repo.BulkUpsert(ctx, []entity.Airport{{Code: "JFK", Name: "Renamed", City: "Elsewhere"}}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.GetByCode(ctx, "JFK")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.Name != "Original" || got.City != "New York" {
		t.Errorf("airport = %+v, want first-seen values", got)
	}
}

func TestWeatherExistingKeys(t *testing.T) {
	db := testDB(t)
	repo := NewGormWeatherRepository(db)
	ctx := context.Background()

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	obs := entity.WeatherObservation{
		AirportCode:     "JFK",
		ObservationDate: day,
		ObservationTime: day.Add(10 * time.Hour),
		Conditions:      "Clear",
	}
	if err := repo.BulkInsert(ctx, []entity.WeatherObservation{obs}); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	// Conflict target absorbs the duplicate pair
	if err := repo.BulkInsert(ctx, []entity.WeatherObservation{obs}); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	keys, err := repo.ExistingKeys(ctx)
	if err != nil {
		t.Fatalf("ExistingKeys: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("existing keys = %d, want 1", len(keys))
	}
	if _, ok := keys[obs.Key()]; !ok {
		t.Errorf("key %q missing from existence set", obs.Key())
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("observations = %d, want 1", count)
	}
}
