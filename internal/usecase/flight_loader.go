package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/internal/infrastructure/router"
	"flight-pipeline-service/pkg/logger"
	"flight-pipeline-service/pkg/metrics"
	"flight-pipeline-service/pkg/utils"
)

// requiredFlightColumns must be present in every fact file header;
// a missing one fails the file before any row is read
var requiredFlightColumns = []string{
	"FlightDate",
	"Reporting_Airline",
	"Flight_Number_Reporting_Airline",
	"Origin",
	"Dest",
}

// FlightLoader ingests fact files into the flights table in bounded
// chunks with per-row referential validation. Files already completed in
// the ledger are skipped; a structural failure mid-file leaves the
// ledger row incomplete so the next run reprocesses the whole file,
// relying on the natural-key conflict target for row idempotence.
type FlightLoader struct {
	flightRepo  repository.FlightRepository
	airportRepo repository.AirportRepository
	carrierRepo repository.CarrierRepository
	dateRepo    repository.DateDimRepository
	rejectRepo  repository.RejectedRecordRepository
	runRepo     repository.PipelineRunRepository
	storageRepo repository.StorageRepository
	router      *router.SourceRouter
	logger      logger.Logger
	metrics     *metrics.Metrics
	prefix      string
	chunkSize   int
}

// NewFlightLoader creates a new flight fact loader
func NewFlightLoader(
	flightRepo repository.FlightRepository,
	airportRepo repository.AirportRepository,
	carrierRepo repository.CarrierRepository,
	dateRepo repository.DateDimRepository,
	rejectRepo repository.RejectedRecordRepository,
	runRepo repository.PipelineRunRepository,
	storageRepo repository.StorageRepository,
	sourceRouter *router.SourceRouter,
	logger logger.Logger,
	metrics *metrics.Metrics,
	prefix string,
	chunkSize int,
) *FlightLoader {
	return &FlightLoader{
		flightRepo:  flightRepo,
		airportRepo: airportRepo,
		carrierRepo: carrierRepo,
		dateRepo:    dateRepo,
		rejectRepo:  rejectRepo,
		runRepo:     runRepo,
		storageRepo: storageRepo,
		router:      sourceRouter,
		logger:      logger,
		metrics:     metrics,
		prefix:      prefix,
		chunkSize:   chunkSize,
	}
}

// LoadPending discovers fact files not yet completed in the ledger and
// processes them in key order
func (l *FlightLoader) LoadPending(ctx context.Context) error {
	keys, err := l.storageRepo.List(ctx, l.prefix)
	if err != nil {
		return fmt.Errorf("failed to list raw files: %w", err)
	}
	completed, err := l.runRepo.CompletedFileNames(ctx, entity.SourceFlights)
	if err != nil {
		return fmt.Errorf("failed to load completed file names: %w", err)
	}
	done := make(map[string]struct{}, len(completed))
	for _, name := range completed {
		done[name] = struct{}{}
	}

	var pending []entity.RawFile
	for _, file := range l.router.Classify(keys) {
		if file.Source != entity.SourceFlights {
			continue
		}
		if _, ok := done[file.Name]; ok {
			l.logger.Info("Skipping already processed file", "file", file.Name)
			continue
		}
		pending = append(pending, file)
	}
	l.logger.Info("Found pending flight files", "count", len(pending))

	for _, file := range pending {
		if err := l.loadFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (l *FlightLoader) loadFile(ctx context.Context, file entity.RawFile) error {
	startedAt := time.Now().UTC()
	l.logger.Info("Processing flight file", "file", file.Name, "chunkSize", l.chunkSize)

	// The file's dates go into the dimension first so rows referencing a
	// date new to the warehouse do not reject spuriously
	if err := l.ensureFileDates(ctx, file); err != nil {
		return err
	}

	snap, err := BuildRefSnapshot(ctx, l.airportRepo, l.carrierRepo, l.dateRepo)
	if err != nil {
		return fmt.Errorf("file %s: %w", file.Name, err)
	}

	rc, err := l.storageRepo.Download(ctx, file.Key)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", file.Key, err)
	}
	defer rc.Close()

	reader, err := utils.NewChunkReader(rc, l.chunkSize)
	if err != nil {
		return fmt.Errorf("file %s: %w", file.Name, err)
	}
	if err := reader.RequireColumns(requiredFlightColumns...); err != nil {
		return fmt.Errorf("file %s: %w", file.Name, err)
	}

	var processed, loaded, rejected int
	for chunk := 0; ; chunk++ {
		rows, err := reader.Next()
		if err != nil {
			return fmt.Errorf("file %s chunk %d: %w", file.Name, chunk, err)
		}
		if len(rows) == 0 {
			break
		}

		flights, rejects := l.splitChunk(reader, rows, snap, file.Name)
		if len(flights) > 0 {
			if err := l.flightRepo.BulkInsert(ctx, flights); err != nil {
				return fmt.Errorf("file %s chunk %d: failed to insert flights: %w", file.Name, chunk, err)
			}
		}
		if len(rejects) > 0 {
			if err := l.rejectRepo.BulkInsert(ctx, rejects); err != nil {
				return fmt.Errorf("file %s chunk %d: failed to record rejects: %w", file.Name, chunk, err)
			}
		}

		processed += len(rows)
		loaded += len(flights)
		rejected += len(rejects)
		if l.metrics != nil {
			l.metrics.RowsLoaded.Add(float64(len(flights)))
			l.metrics.RowsRejected.Add(float64(len(rejects)))
		}
		l.logger.Info("Chunk loaded",
			"file", file.Name,
			"chunk", chunk,
			"rows", len(rows),
			"loaded", len(flights),
			"rejected", len(rejects))
	}

	completedAt := time.Now().UTC()
	run := &entity.PipelineRun{
		FileName:      file.Name,
		Source:        entity.SourceFlights,
		RowsProcessed: processed,
		RowsLoaded:    loaded,
		RowsRejected:  rejected,
		Status:        entity.RunStatusCompleted,
		StartedAt:     startedAt,
		CompletedAt:   &completedAt,
	}
	if err := l.runRepo.Upsert(ctx, run); err != nil {
		return fmt.Errorf("failed to record run for %s: %w", file.Name, err)
	}
	if l.metrics != nil {
		l.metrics.FilesProcessed.Inc()
	}
	l.logger.Info("Flight file completed",
		"file", file.Name,
		"processed", processed,
		"loaded", loaded,
		"rejected", rejected)
	return nil
}

// ensureFileDates scans the file's date column in a first pass and
// extends the date dimension before validation starts
func (l *FlightLoader) ensureFileDates(ctx context.Context, file entity.RawFile) error {
	rc, err := l.storageRepo.Download(ctx, file.Key)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", file.Key, err)
	}
	defer rc.Close()

	dates, err := scanFlightDates(rc, file.Name)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		return nil
	}

	dims := buildDateDims(dates)
	inserted, err := l.dateRepo.BulkUpsert(ctx, dims)
	if err != nil {
		return fmt.Errorf("file %s: failed to extend date dimension: %w", file.Name, err)
	}
	if inserted > 0 {
		l.logger.Info("Extended date dimension", "file", file.Name, "new", inserted)
	}
	return nil
}

// splitChunk validates every row of a chunk against the snapshot and
// partitions it into fact entities and reject audit rows
func (l *FlightLoader) splitChunk(reader *utils.ChunkReader, rows []utils.Row, snap *RefSnapshot, fileName string) ([]entity.Flight, []entity.RejectedRecord) {
	flights := make([]entity.Flight, 0, len(rows))
	var rejects []entity.RejectedRecord
	for _, row := range rows {
		date := strings.TrimSpace(reader.Field(row, "FlightDate"))
		carrier := strings.TrimSpace(reader.Field(row, "Reporting_Airline"))
		origin := strings.TrimSpace(reader.Field(row, "Origin"))
		dest := strings.TrimSpace(reader.Field(row, "Dest"))

		if reason := snap.Validate(date, carrier, origin, dest); reason != "" {
			rejects = append(rejects, entity.RejectedRecord{
				Source:          entity.SourceFlights,
				FileName:        fileName,
				RowNumber:       row.Index,
				RawData:         fmt.Sprintf("%s,%s,%s,%s", date, carrier, origin, dest),
				RejectionReason: reason,
			})
			continue
		}
		flights = append(flights, buildFlight(reader, row, date, carrier, origin, dest))
	}
	return flights, rejects
}

// buildFlight maps an accepted row to the fact entity. Optional fields
// come through the null-safe coercions: unparseable numerics load as
// NULL, 0/1 flags as booleans, blank strings as NULL.
func buildFlight(reader *utils.ChunkReader, row utils.Row, date, carrier, origin, dest string) entity.Flight {
	flightDate, _ := utils.ParseDate(date)
	f := func(name string) string { return reader.Field(row, name) }

	return entity.Flight{
		FlightDate:    flightDate,
		CarrierCode:   carrier,
		TailNumber:    utils.SafeStr(f("Tail_Number")),
		FlightNumber:  utils.SafeInt(f("Flight_Number_Reporting_Airline")),
		OriginAirport: origin,
		OriginCity:    utils.SafeStr(f("OriginCityName")),
		OriginState:   utils.SafeStr(f("OriginState")),
		DestAirport:   dest,
		DestCity:      utils.SafeStr(f("DestCityName")),
		DestState:     utils.SafeStr(f("DestState")),

		ScheduledDep:    utils.SafeStr(f("CRSDepTime")),
		ActualDep:       utils.SafeStr(f("DepTime")),
		DepDelay:        utils.SafeFloat(f("DepDelay")),
		DepDelayMinutes: utils.SafeFloat(f("DepDelayMinutes")),
		DepDelay15:      utils.SafeBool(f("DepDel15")),
		ScheduledArr:    utils.SafeStr(f("CRSArrTime")),
		ActualArr:       utils.SafeStr(f("ArrTime")),
		ArrDelay:        utils.SafeFloat(f("ArrDelay")),
		ArrDelayMinutes: utils.SafeFloat(f("ArrDelayMinutes")),
		ArrDelay15:      utils.SafeBool(f("ArrDel15")),

		Cancelled:        utils.SafeBool(f("Cancelled")),
		CancellationCode: utils.SafeStr(f("CancellationCode")),
		Diverted:         utils.SafeBool(f("Diverted")),

		Distance:         utils.SafeFloat(f("Distance")),
		AirTime:          utils.SafeFloat(f("AirTime")),
		ScheduledElapsed: utils.SafeFloat(f("CRSElapsedTime")),
		ActualElapsed:    utils.SafeFloat(f("ActualElapsedTime")),

		CarrierDelay:      utils.SafeFloat(f("CarrierDelay")),
		WeatherDelay:      utils.SafeFloat(f("WeatherDelay")),
		NasDelay:          utils.SafeFloat(f("NASDelay")),
		SecurityDelay:     utils.SafeFloat(f("SecurityDelay")),
		LateAircraftDelay: utils.SafeFloat(f("LateAircraftDelay")),
	}
}
