package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/internal/infrastructure/router"
	"flight-pipeline-service/pkg/logger"
	"flight-pipeline-service/pkg/utils"
)

// DateLoader aggregates flight dates across every raw fact file and
// regenerates the date dimension rows for them. Regeneration is safe:
// every attribute is a pure function of the date and existing rows are
// left untouched by the conflict target.
type DateLoader struct {
	dateRepo    repository.DateDimRepository
	storageRepo repository.StorageRepository
	router      *router.SourceRouter
	logger      logger.Logger
	prefix      string
}

// NewDateLoader creates a new date dimension loader
func NewDateLoader(
	dateRepo repository.DateDimRepository,
	storageRepo repository.StorageRepository,
	sourceRouter *router.SourceRouter,
	logger logger.Logger,
	prefix string,
) *DateLoader {
	return &DateLoader{
		dateRepo:    dateRepo,
		storageRepo: storageRepo,
		router:      sourceRouter,
		logger:      logger,
		prefix:      prefix,
	}
}

// Load scans every fact file for flight dates, merges them in calendar
// order, and upserts the derived dimension rows
func (l *DateLoader) Load(ctx context.Context) error {
	keys, err := l.storageRepo.List(ctx, l.prefix)
	if err != nil {
		return fmt.Errorf("failed to list raw files: %w", err)
	}

	dates := make(map[string]time.Time)
	scanned := 0
	for _, file := range l.router.Classify(keys) {
		if file.Source != entity.SourceFlights {
			continue
		}
		rc, err := l.storageRepo.Download(ctx, file.Key)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", file.Key, err)
		}
		fileDates, err := scanFlightDates(rc, file.Name)
		rc.Close()
		if err != nil {
			return err
		}
		for k, v := range fileDates {
			dates[k] = v
		}
		scanned++
	}
	if len(dates) == 0 {
		l.logger.Warn("No flight dates found in raw files", "filesScanned", scanned)
		return nil
	}

	dims := buildDateDims(dates)
	inserted, err := l.dateRepo.BulkUpsert(ctx, dims)
	if err != nil {
		return fmt.Errorf("failed to upsert date dimension: %w", err)
	}
	l.logger.Info("Date dimension loaded", "filesScanned", scanned, "distinct", len(dims), "inserted", inserted)
	return nil
}

// scanFlightDates reads the FlightDate column of one fact file.
// Unparseable values are skipped here; the rows carrying them surface
// later as fact rejects.
func scanFlightDates(rd io.Reader, name string) (map[string]time.Time, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	dateIdx := -1
	for i, col := range header {
		if strings.TrimSpace(col) == "FlightDate" {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("file %s: missing required columns: FlightDate", name)
	}

	dates := make(map[string]time.Time)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if dateIdx >= len(record) {
			continue
		}
		t, perr := utils.ParseDate(record[dateIdx])
		if perr != nil {
			continue
		}
		dates[t.Format(utils.DateLayout)] = t
	}
	return dates, nil
}

// buildDateDims derives dimension rows for a date set in calendar order
func buildDateDims(dates map[string]time.Time) []entity.DateDim {
	keys := make([]string, 0, len(dates))
	for k := range dates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dims := make([]entity.DateDim, 0, len(keys))
	for _, k := range keys {
		dims = append(dims, entity.NewDateDim(dates[k]))
	}
	return dims
}
