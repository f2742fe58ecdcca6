package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flight-pipeline-service/internal/orchestrator"
	"flight-pipeline-service/pkg/logger"
)

// Stage names of the pipeline graph
const (
	StageUpload   = "upload"
	StageAirports = "airports"
	StageCarriers = "carriers"
	StageDates    = "dates"
	StageFlights  = "flights"
	StageWeather  = "weather"
	StageQuality  = "quality"
)

// RunnerConfig bounds stage execution
type RunnerConfig struct {
	MaxAttempts  int
	RetryBackoff time.Duration
	StageTimeout time.Duration
}

// PipelineRunner composes the loaders into the stage graph and executes
// it: upload, airports, then carriers and dates concurrently, then
// flights behind the fan-in barrier, weather, and the quality gate last.
type PipelineRunner struct {
	uploader      *Uploader
	airportLoader *AirportLoader
	carrierLoader *CarrierLoader
	dateLoader    *DateLoader
	flightLoader  *FlightLoader
	weatherLoader *WeatherLoader
	qualityGate   *QualityGate
	engine        *orchestrator.Engine
	logger        logger.Logger
	cfg           RunnerConfig
}

// NewPipelineRunner creates a new pipeline runner
func NewPipelineRunner(
	uploader *Uploader,
	airportLoader *AirportLoader,
	carrierLoader *CarrierLoader,
	dateLoader *DateLoader,
	flightLoader *FlightLoader,
	weatherLoader *WeatherLoader,
	qualityGate *QualityGate,
	engine *orchestrator.Engine,
	logger logger.Logger,
	cfg RunnerConfig,
) *PipelineRunner {
	return &PipelineRunner{
		uploader:      uploader,
		airportLoader: airportLoader,
		carrierLoader: carrierLoader,
		dateLoader:    dateLoader,
		flightLoader:  flightLoader,
		weatherLoader: weatherLoader,
		qualityGate:   qualityGate,
		engine:        engine,
		logger:        logger,
		cfg:           cfg,
	}
}

// Run executes one full pipeline run and returns the final stage state
// together with the first stage error, if any
func (r *PipelineRunner) Run(ctx context.Context) (*orchestrator.State, error) {
	runID := uuid.NewString()
	log := r.logger.With("runID", runID)
	log.Info("Pipeline run starting")

	started := time.Now()
	state, err := r.engine.Run(ctx, r.stages())
	elapsed := time.Since(started)

	if err != nil {
		log.Error("Pipeline run failed", "duration", elapsed.String(), "error", err)
		return state, err
	}
	log.Info("Pipeline run completed", "duration", elapsed.String())
	return state, nil
}

// stages builds the stage graph for one run. Load stages retry on
// structural errors; a quality gate failure is a verdict on the data,
// not a transient fault, so the gate never retries.
func (r *PipelineRunner) stages() []orchestrator.Stage {
	retry := orchestrator.RetryPolicy{
		MaxAttempts: r.cfg.MaxAttempts,
		MinBackoff:  r.cfg.RetryBackoff,
		MaxBackoff:  r.cfg.RetryBackoff,
	}
	gateRetry := orchestrator.RetryPolicy{
		MaxAttempts: r.cfg.MaxAttempts,
		MinBackoff:  r.cfg.RetryBackoff,
		MaxBackoff:  r.cfg.RetryBackoff,
		Retryable:   func(err error) bool { return !IsQualityFailure(err) },
	}

	return []orchestrator.Stage{
		{
			Name:    StageUpload,
			Timeout: r.cfg.StageTimeout,
			Retry:   retry,
			Run:     r.uploader.Upload,
		},
		{
			Name:    StageAirports,
			Deps:    []string{StageUpload},
			Timeout: r.cfg.StageTimeout,
			Retry:   retry,
			Run:     r.airportLoader.Load,
		},
		{
			Name:    StageCarriers,
			Deps:    []string{StageAirports},
			Timeout: r.cfg.StageTimeout,
			Retry:   retry,
			Run:     r.carrierLoader.Load,
		},
		{
			Name:    StageDates,
			Deps:    []string{StageAirports},
			Timeout: r.cfg.StageTimeout,
			Retry:   retry,
			Run:     r.dateLoader.Load,
		},
		{
			Name:    StageFlights,
			Deps:    []string{StageCarriers, StageDates},
			Timeout: r.cfg.StageTimeout,
			Retry:   retry,
			Run:     r.flightLoader.LoadPending,
		},
		{
			Name:    StageWeather,
			Deps:    []string{StageFlights},
			Timeout: r.cfg.StageTimeout,
			Retry:   retry,
			Run:     r.weatherLoader.Load,
		},
		{
			Name:    StageQuality,
			Deps:    []string{StageWeather},
			Timeout: r.cfg.StageTimeout,
			Retry:   gateRetry,
			Run:     r.qualityGate.Run,
		},
	}
}
