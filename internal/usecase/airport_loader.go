package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/pkg/logger"
	"flight-pipeline-service/pkg/metrics"
	"flight-pipeline-service/pkg/utils"
)

// AirportLoader ingests the airports reference file into the airports
// dimension
type AirportLoader struct {
	airportRepo repository.AirportRepository
	runRepo     repository.PipelineRunRepository
	storageRepo repository.StorageRepository
	logger      logger.Logger
	metrics     *metrics.Metrics
	airportsKey string
}

// NewAirportLoader creates a new airport loader
func NewAirportLoader(
	airportRepo repository.AirportRepository,
	runRepo repository.PipelineRunRepository,
	storageRepo repository.StorageRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
	airportsKey string,
) *AirportLoader {
	return &AirportLoader{
		airportRepo: airportRepo,
		runRepo:     runRepo,
		storageRepo: storageRepo,
		logger:      logger,
		metrics:     metrics,
		airportsKey: airportsKey,
	}
}

// Load downloads and parses the airports reference, keeping the first
// occurrence of each IATA code, and upserts conflict do-nothing so rows
// already present keep their original values
func (l *AirportLoader) Load(ctx context.Context) error {
	startedAt := time.Now().UTC()
	l.logger.Info("Starting airports dimension load", "key", l.airportsKey)

	rc, err := l.storageRepo.Download(ctx, l.airportsKey)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", l.airportsKey, err)
	}
	defer rc.Close()

	airports, err := parseAirportsDat(rc)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", l.airportsKey, err)
	}
	if len(airports) == 0 {
		return fmt.Errorf("no usable airports in %s", l.airportsKey)
	}

	inserted, err := l.airportRepo.BulkUpsert(ctx, airports)
	if err != nil {
		return fmt.Errorf("failed to upsert airports: %w", err)
	}

	completedAt := time.Now().UTC()
	run := &entity.PipelineRun{
		FileName:      path.Base(l.airportsKey),
		Source:        entity.SourceAirports,
		RowsProcessed: len(airports),
		RowsLoaded:    len(airports),
		RowsRejected:  0,
		Status:        entity.RunStatusCompleted,
		StartedAt:     startedAt,
		CompletedAt:   &completedAt,
	}
	if err := l.runRepo.Upsert(ctx, run); err != nil {
		return fmt.Errorf("failed to record airports run: %w", err)
	}

	if l.metrics != nil {
		l.metrics.FilesProcessed.Inc()
	}
	l.logger.Info("Airports dimension loaded", "parsed", len(airports), "inserted", inserted)
	return nil
}

// parseAirportsDat reads the headerless reference file. Columns: id,
// name, city, country, IATA, ICAO, latitude, longitude, altitude,
// tz offset, dst, timezone, type, source. Rows without a 3-letter IATA
// code are dropped; duplicate codes keep the first occurrence.
func parseAirportsDat(rd io.Reader) ([]entity.Airport, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	seen := make(map[string]struct{})
	var airports []entity.Airport
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 12 {
			continue
		}
		code := strings.TrimSpace(record[4])
		if len(code) != 3 {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		airports = append(airports, entity.Airport{
			Code:      code,
			Name:      strings.TrimSpace(record[1]),
			City:      strings.TrimSpace(record[2]),
			Country:   strings.TrimSpace(record[3]),
			Latitude:  utils.SafeFloat(record[6]),
			Longitude: utils.SafeFloat(record[7]),
			Altitude:  utils.SafeInt(record[8]),
			Timezone:  timezoneField(record[11]),
		})
	}
	return airports, nil
}

// timezoneField maps the reference file's \N marker to NULL
func timezoneField(val string) *string {
	val = strings.TrimSpace(val)
	if val == "" || val == "\\N" {
		return nil
	}
	return &val
}
