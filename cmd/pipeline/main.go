package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-pipeline-service/internal/infrastructure/config"
	"flight-pipeline-service/internal/infrastructure/persistence"
	"flight-pipeline-service/internal/infrastructure/router"
	"flight-pipeline-service/internal/interface/iem"
	warehouseRepo "flight-pipeline-service/internal/interface/repository"
	"flight-pipeline-service/internal/orchestrator"
	"flight-pipeline-service/internal/usecase"
	"flight-pipeline-service/pkg/logger"
	"flight-pipeline-service/pkg/metrics"
	"flight-pipeline-service/templates"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Flight Pipeline Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up PostgreSQL connection and schema
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if err := warehouseRepo.AutoMigrate(gormDB); err != nil {
		log.Fatal("Failed to migrate warehouse schema", "error", err)
	}

	// Set up warehouse repositories
	airportRepository := warehouseRepo.NewGormAirportRepository(gormDB)
	carrierRepository := warehouseRepo.NewGormCarrierRepository(gormDB)
	dateRepository := warehouseRepo.NewGormDateDimRepository(gormDB)
	flightRepository := warehouseRepo.NewGormFlightRepository(gormDB)
	weatherRepository := warehouseRepo.NewGormWeatherRepository(gormDB)
	runRepository := warehouseRepo.NewGormPipelineRunRepository(gormDB)
	rejectRepository := warehouseRepo.NewGormRejectedRecordRepository(gormDB)

	// Set up object storage
	storageRepository, err := warehouseRepo.NewGCSStorageRepository(ctx, cfg.StorageBucket, cfg.GCSCredentialsFile, cfg.GCSAccessToken, log)
	if err != nil {
		log.Fatal("Failed to create storage client", "error", err)
	}

	m := metrics.NewMetrics("flight_pipeline")
	sourceRouter := router.NewSourceRouter()
	weatherSource := iem.NewClient(cfg.IEMBaseURL, cfg.IEMTimeout, log)

	// Set up pipeline stages
	uploader := usecase.NewUploader(storageRepository, sourceRouter, log, cfg.RawDataDir, cfg.StoragePrefix, cfg.AirportsKey)
	airportLoader := usecase.NewAirportLoader(airportRepository, runRepository, storageRepository, log, m, cfg.AirportsKey)
	carrierLoader := usecase.NewCarrierLoader(carrierRepository, storageRepository, sourceRouter, log, cfg.StoragePrefix)
	dateLoader := usecase.NewDateLoader(dateRepository, storageRepository, sourceRouter, log, cfg.StoragePrefix)
	flightLoader := usecase.NewFlightLoader(
		flightRepository, airportRepository, carrierRepository, dateRepository,
		rejectRepository, runRepository, storageRepository, sourceRouter,
		log, m, cfg.StoragePrefix, cfg.ChunkSize)
	weatherLoader := usecase.NewWeatherLoader(weatherRepository, airportRepository, dateRepository, runRepository, weatherSource, log, m)
	qualityGate := usecase.NewQualityGate(airportRepository, carrierRepository, flightRepository, weatherRepository, runRepository, log, m, cfg.RejectRateThreshold)

	engine := orchestrator.NewEngine(log, m)
	runner := usecase.NewPipelineRunner(
		uploader, airportLoader, carrierLoader, dateLoader, flightLoader,
		weatherLoader, qualityGate, engine, log,
		usecase.RunnerConfig{
			MaxAttempts:  cfg.MaxAttempts,
			RetryBackoff: cfg.RetryBackoff,
		})

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Run the pipeline; with an interval configured, keep running until
	// interrupted
	runDone := make(chan error, 1)
	go func() {
		runDone <- runLoop(ctx, runner, cfg.RunInterval, log)
	}()

	// Wait for the run to end or an interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var exitCode int
	select {
	case sig := <-sigChan:
		log.Info("Received signal", "signal", sig)
		cancel()
		<-runDone
	case err := <-runDone:
		if err != nil {
			exitCode = 1
		}
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("Flight Pipeline Service stopped")
	os.Exit(exitCode)
}

// runLoop executes pipeline runs until the context is cancelled. With a
// zero interval it runs once; the returned error is the last run's.
func runLoop(ctx context.Context, runner *usecase.PipelineRunner, interval time.Duration, log logger.Logger) error {
	for {
		state, err := runner.Run(ctx)
		log.Info("Run report", "report", "\n"+templates.RenderRunReport(state))

		if interval <= 0 {
			return err
		}

		log.Info("Waiting for next run", "interval", interval.String())
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
