package usecase

import (
	"context"
	"fmt"
	"strings"

	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/pkg/utils"
)

// RefSnapshot is an immutable view of the reference dimensions, taken
// once per fact file before any of its rows validate. Every chunk of a
// file validates against the same snapshot.
type RefSnapshot struct {
	Airports map[string]struct{}
	Carriers map[string]struct{}
	Dates    map[string]struct{}
}

// BuildRefSnapshot loads the current dimension keys from the warehouse
func BuildRefSnapshot(
	ctx context.Context,
	airportRepo repository.AirportRepository,
	carrierRepo repository.CarrierRepository,
	dateRepo repository.DateDimRepository,
) (*RefSnapshot, error) {
	airportCodes, err := airportRepo.Codes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load airport codes: %w", err)
	}
	carrierCodes, err := carrierRepo.Codes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load carrier codes: %w", err)
	}
	dateIDs, err := dateRepo.DateIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load date ids: %w", err)
	}

	snap := &RefSnapshot{
		Airports: make(map[string]struct{}, len(airportCodes)),
		Carriers: make(map[string]struct{}, len(carrierCodes)),
		Dates:    make(map[string]struct{}, len(dateIDs)),
	}
	for _, code := range airportCodes {
		snap.Airports[code] = struct{}{}
	}
	for _, code := range carrierCodes {
		snap.Carriers[code] = struct{}{}
	}
	for _, d := range dateIDs {
		snap.Dates[d.Format(utils.DateLayout)] = struct{}{}
	}
	return snap, nil
}

// Validate checks one fact row's referential fields against the
// snapshot. The result is empty for a valid row, otherwise every
// failing reason joined with "; ". A row is fully accepted or fully
// rejected, never partially applied.
func (s *RefSnapshot) Validate(date, carrier, origin, dest string) string {
	var reasons []string
	if _, ok := s.Airports[origin]; !ok {
		reasons = append(reasons, fmt.Sprintf("Unknown origin airport: %s", origin))
	}
	if _, ok := s.Airports[dest]; !ok {
		reasons = append(reasons, fmt.Sprintf("Unknown dest airport: %s", dest))
	}
	if _, ok := s.Carriers[carrier]; !ok {
		reasons = append(reasons, fmt.Sprintf("Unknown carrier: %s", carrier))
	}
	if !s.hasDate(date) {
		reasons = append(reasons, fmt.Sprintf("Unknown date: %s", date))
	}
	return strings.Join(reasons, "; ")
}

// hasDate treats unparseable dates as unknown
func (s *RefSnapshot) hasDate(date string) bool {
	t, err := utils.ParseDate(date)
	if err != nil {
		return false
	}
	_, ok := s.Dates[t.Format(utils.DateLayout)]
	return ok
}
