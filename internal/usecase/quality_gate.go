package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/pkg/logger"
	"flight-pipeline-service/pkg/metrics"
)

// Sane bounds for arrival delay minutes; values outside indicate data
// corruption rather than a long delay
const (
	arrDelayFloor   = -150.0
	arrDelayCeiling = 5000.0
)

// QualityCheck is one named gate check outcome
type QualityCheck struct {
	Name   string
	Passed bool
	Detail string
}

// QualityGateError reports a failed gate. It is terminal: re-running
// the load stages cannot fix bad data, so the orchestrator never
// retries it.
type QualityGateError struct {
	Failed []QualityCheck
}

func (e *QualityGateError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, c := range e.Failed {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("quality gate failed %d checks: %s", len(e.Failed), strings.Join(names, ", "))
}

// IsQualityFailure reports whether err is a quality gate failure
func IsQualityFailure(err error) bool {
	var qerr *QualityGateError
	return errors.As(err, &qerr)
}

// QualityGate runs the fixed post-load check battery. Every check runs
// even after one fails; any failure fails the whole run.
type QualityGate struct {
	airportRepo repository.AirportRepository
	carrierRepo repository.CarrierRepository
	flightRepo  repository.FlightRepository
	weatherRepo repository.WeatherRepository
	runRepo     repository.PipelineRunRepository
	logger      logger.Logger
	metrics     *metrics.Metrics
	threshold   float64
}

// NewQualityGate creates a new quality gate. The threshold is the
// maximum acceptable rejection rate in percent, exclusive.
func NewQualityGate(
	airportRepo repository.AirportRepository,
	carrierRepo repository.CarrierRepository,
	flightRepo repository.FlightRepository,
	weatherRepo repository.WeatherRepository,
	runRepo repository.PipelineRunRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
	threshold float64,
) *QualityGate {
	return &QualityGate{
		airportRepo: airportRepo,
		carrierRepo: carrierRepo,
		flightRepo:  flightRepo,
		weatherRepo: weatherRepo,
		runRepo:     runRepo,
		logger:      logger,
		metrics:     metrics,
		threshold:   threshold,
	}
}

// Run executes the battery, logs each outcome and the dataset
// summaries, and returns a QualityGateError when any check failed
func (g *QualityGate) Run(ctx context.Context) error {
	checks := []struct {
		name string
		fn   func(context.Context) (bool, string, error)
	}{
		{"airports_not_empty", g.checkAirportsNotEmpty},
		{"carriers_not_empty", g.checkCarriersNotEmpty},
		{"flights_not_empty", g.checkFlightsNotEmpty},
		{"flights_origin_resolved", g.checkOriginResolved},
		{"flights_dest_resolved", g.checkDestResolved},
		{"arr_delay_in_range", g.checkArrDelayRange},
		{"rejection_rate_below_threshold", g.checkRejectionRate},
		{"weather_not_empty", g.checkWeatherNotEmpty},
		{"weather_covers_airport", g.checkWeatherAirportCoverage},
		{"weather_covers_date", g.checkWeatherDateCoverage},
	}

	var failed []QualityCheck
	for _, c := range checks {
		passed, detail, err := c.fn(ctx)
		if err != nil {
			return fmt.Errorf("quality check %s: %w", c.name, err)
		}
		if passed {
			g.logger.Info("Quality check passed", "check", c.name, "detail", detail)
			continue
		}
		g.logger.Error("Quality check failed", "check", c.name, "detail", detail)
		if g.metrics != nil {
			g.metrics.QualityChecksFailed.Inc()
		}
		failed = append(failed, QualityCheck{Name: c.name, Passed: false, Detail: detail})
	}

	g.logger.Info("Quality gate finished",
		"total", len(checks),
		"passed", len(checks)-len(failed),
		"failed", len(failed))

	g.logSummaries(ctx)

	if len(failed) > 0 {
		return &QualityGateError{Failed: failed}
	}
	return nil
}

func (g *QualityGate) checkAirportsNotEmpty(ctx context.Context) (bool, string, error) {
	count, err := g.airportRepo.Count(ctx)
	if err != nil {
		return false, "", err
	}
	return count > 0, fmt.Sprintf("%d airports", count), nil
}

func (g *QualityGate) checkCarriersNotEmpty(ctx context.Context) (bool, string, error) {
	count, err := g.carrierRepo.Count(ctx)
	if err != nil {
		return false, "", err
	}
	return count > 0, fmt.Sprintf("%d carriers", count), nil
}

func (g *QualityGate) checkFlightsNotEmpty(ctx context.Context) (bool, string, error) {
	count, err := g.flightRepo.Count(ctx)
	if err != nil {
		return false, "", err
	}
	return count > 0, fmt.Sprintf("%d flights", count), nil
}

func (g *QualityGate) checkOriginResolved(ctx context.Context) (bool, string, error) {
	count, err := g.flightRepo.CountUnknownOrigins(ctx)
	if err != nil {
		return false, "", err
	}
	return count == 0, fmt.Sprintf("%d flights with unresolved origin", count), nil
}

func (g *QualityGate) checkDestResolved(ctx context.Context) (bool, string, error) {
	count, err := g.flightRepo.CountUnknownDests(ctx)
	if err != nil {
		return false, "", err
	}
	return count == 0, fmt.Sprintf("%d flights with unresolved destination", count), nil
}

func (g *QualityGate) checkArrDelayRange(ctx context.Context) (bool, string, error) {
	count, err := g.flightRepo.CountArrDelaysOutOfRange(ctx, arrDelayFloor, arrDelayCeiling)
	if err != nil {
		return false, "", err
	}
	return count == 0, fmt.Sprintf("%d flights with arr_delay outside [%.0f, %.0f]", count, arrDelayFloor, arrDelayCeiling), nil
}

// checkRejectionRate inspects the most recent completed flight load.
// Exactly at the threshold fails; the comparison is strict.
func (g *QualityGate) checkRejectionRate(ctx context.Context) (bool, string, error) {
	run, err := g.runRepo.LatestCompleted(ctx, entity.SourceFlights)
	if err != nil {
		return false, "", err
	}
	if run == nil {
		return true, "no completed flight loads", nil
	}
	total := run.RowsLoaded + run.RowsRejected
	if total == 0 {
		return true, fmt.Sprintf("no rows in latest load %s", run.FileName), nil
	}
	rate := float64(run.RowsRejected) / float64(total) * 100
	detail := fmt.Sprintf("%.2f%% rejected in %s (threshold %.1f%%)", rate, run.FileName, g.threshold)
	return rate < g.threshold, detail, nil
}

func (g *QualityGate) checkWeatherNotEmpty(ctx context.Context) (bool, string, error) {
	count, err := g.weatherRepo.Count(ctx)
	if err != nil {
		return false, "", err
	}
	return count > 0, fmt.Sprintf("%d observations", count), nil
}

func (g *QualityGate) checkWeatherAirportCoverage(ctx context.Context) (bool, string, error) {
	count, err := g.weatherRepo.CountAirportsCovered(ctx)
	if err != nil {
		return false, "", err
	}
	return count > 0, fmt.Sprintf("%d airports with observations", count), nil
}

func (g *QualityGate) checkWeatherDateCoverage(ctx context.Context) (bool, string, error) {
	count, err := g.weatherRepo.CountDatesCovered(ctx)
	if err != nil {
		return false, "", err
	}
	return count > 0, fmt.Sprintf("%d dimension dates with observations", count), nil
}

// logSummaries reports dataset statistics after the battery, pass or
// fail. Summary failures are logged, never fatal.
func (g *QualityGate) logSummaries(ctx context.Context) {
	if stats, err := g.flightRepo.Stats(ctx); err != nil {
		g.logger.Warn("Failed to compute flight summary", "error", err)
	} else {
		g.logger.Info("Dataset summary",
			"flights", stats.TotalFlights,
			"carriers", stats.Carriers,
			"origins", stats.Origins,
			"destinations", stats.Dests,
			"avgArrDelay", floatDetail(stats.AvgArrDelay),
			"cancellations", stats.Cancellations)
	}
	if stats, err := g.weatherRepo.Stats(ctx); err != nil {
		g.logger.Warn("Failed to compute weather summary", "error", err)
	} else {
		g.logger.Info("Weather summary",
			"observations", stats.TotalObservations,
			"airports", stats.AirportsCovered,
			"avgTemperature", floatDetail(stats.AvgTemperature),
			"precipDays", stats.PrecipDays,
			"snowDays", stats.SnowDays)
	}
}

func floatDetail(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
