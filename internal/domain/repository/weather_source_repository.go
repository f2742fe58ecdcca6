package repository

import (
	"context"
	"time"

	"flight-pipeline-service/internal/domain/entity"
)

// WeatherSourceRepository produces hourly weather observations for an
// airport over a date range from an external measurement source
type WeatherSourceRepository interface {
	// MappedAirports lists the airport codes the source can observe, in
	// deterministic order
	MappedAirports() []string
	// FetchObservations returns hourly observations for one airport over
	// an inclusive date range
	FetchObservations(ctx context.Context, airportCode string, start, end time.Time) ([]entity.WeatherObservation, error)
}
