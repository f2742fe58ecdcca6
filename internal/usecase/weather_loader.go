package usecase

import (
	"context"
	"fmt"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/pkg/logger"
	"flight-pipeline-service/pkg/metrics"
	"flight-pipeline-service/pkg/utils"
)

// weatherFileName is the synthetic ledger file name for weather loads;
// observations are generated, not read from an uploaded file
const weatherFileName = "iem_hourly_weather"

// WeatherLoader fetches hourly observations for every warehouse airport
// with a station mapping, over the warehouse date range, and loads only
// pairs not already present. The explicit existence set is needed on
// top of the conflict target because generation may produce different
// or duplicate content across runs and must not inflate load counts.
type WeatherLoader struct {
	weatherRepo repository.WeatherRepository
	airportRepo repository.AirportRepository
	dateRepo    repository.DateDimRepository
	runRepo     repository.PipelineRunRepository
	source      repository.WeatherSourceRepository
	logger      logger.Logger
	metrics     *metrics.Metrics
}

// NewWeatherLoader creates a new weather loader
func NewWeatherLoader(
	weatherRepo repository.WeatherRepository,
	airportRepo repository.AirportRepository,
	dateRepo repository.DateDimRepository,
	runRepo repository.PipelineRunRepository,
	source repository.WeatherSourceRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *WeatherLoader {
	return &WeatherLoader{
		weatherRepo: weatherRepo,
		airportRepo: airportRepo,
		dateRepo:    dateRepo,
		runRepo:     runRepo,
		source:      source,
		logger:      logger,
		metrics:     metrics,
	}
}

// Load generates and inserts observations. A fetch failure for one
// airport skips that airport and continues; coverage gaps surface at the
// quality gate instead of failing the stage.
func (l *WeatherLoader) Load(ctx context.Context) error {
	startedAt := time.Now().UTC()

	airports, err := l.mappedWarehouseAirports(ctx)
	if err != nil {
		return err
	}
	if len(airports) == 0 {
		l.logger.Warn("No warehouse airports with a station mapping, skipping weather load")
		return nil
	}

	dateIDs, err := l.dateRepo.DateIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load date ids: %w", err)
	}
	if len(dateIDs) == 0 {
		l.logger.Warn("Date dimension is empty, skipping weather load")
		return nil
	}
	dateSet := make(map[string]struct{}, len(dateIDs))
	for _, d := range dateIDs {
		dateSet[d.Format(utils.DateLayout)] = struct{}{}
	}
	start, end := dateIDs[0], dateIDs[len(dateIDs)-1]

	existing, err := l.weatherRepo.ExistingKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to load existing observation keys: %w", err)
	}
	l.logger.Info("Starting weather load",
		"airports", len(airports),
		"start", start.Format(utils.DateLayout),
		"end", end.Format(utils.DateLayout),
		"existing", len(existing))

	var generated, duplicates int
	var toInsert []entity.WeatherObservation
	for _, code := range airports {
		observations, err := l.source.FetchObservations(ctx, code, start, end)
		if err != nil {
			l.logger.Warn("Failed to fetch observations, skipping airport", "airport", code, "error", err)
			continue
		}
		for _, obs := range observations {
			// Only dates the warehouse dimensions know about
			if _, ok := dateSet[obs.ObservationDate.Format(utils.DateLayout)]; !ok {
				continue
			}
			generated++
			key := obs.Key()
			if _, dup := existing[key]; dup {
				duplicates++
				continue
			}
			existing[key] = struct{}{}
			toInsert = append(toInsert, obs)
		}
	}

	if len(toInsert) > 0 {
		if err := l.weatherRepo.BulkInsert(ctx, toInsert); err != nil {
			return fmt.Errorf("failed to insert observations: %w", err)
		}
	}

	completedAt := time.Now().UTC()
	run := &entity.PipelineRun{
		FileName:      weatherFileName,
		Source:        entity.SourceWeather,
		RowsProcessed: len(toInsert),
		RowsLoaded:    len(toInsert),
		RowsRejected:  0,
		Status:        entity.RunStatusCompleted,
		StartedAt:     startedAt,
		CompletedAt:   &completedAt,
	}
	if err := l.runRepo.Upsert(ctx, run); err != nil {
		return fmt.Errorf("failed to record weather run: %w", err)
	}

	if l.metrics != nil {
		l.metrics.FilesProcessed.Inc()
		l.metrics.RowsLoaded.Add(float64(len(toInsert)))
	}
	l.logger.Info("Weather observations loaded",
		"airports", len(airports),
		"generated", generated,
		"duplicates", duplicates,
		"loaded", len(toInsert))
	return nil
}

// mappedWarehouseAirports intersects warehouse airports with the
// source's station map, keeping the source's deterministic order
func (l *WeatherLoader) mappedWarehouseAirports(ctx context.Context) ([]string, error) {
	codes, err := l.airportRepo.Codes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load airport codes: %w", err)
	}
	inWarehouse := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		inWarehouse[code] = struct{}{}
	}

	var airports []string
	for _, code := range l.source.MappedAirports() {
		if _, ok := inWarehouse[code]; ok {
			airports = append(airports, code)
		}
	}
	return airports, nil
}
