package iem

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/pkg/logger"
)

// stationMap maps major US airport IATA codes to their ASOS station ids.
// Station id is "K" + IATA code for US airports.
var stationMap = map[string]string{
	"ATL": "KATL", "DFW": "KDFW", "DEN": "KDEN", "ORD": "KORD",
	"LAX": "KLAX", "JFK": "KJFK", "LAS": "KLAS", "MCO": "KMCO",
	"MIA": "KMIA", "CLT": "KCLT", "SEA": "KSEA", "PHX": "KPHX",
	"EWR": "KEWR", "SFO": "KSFO", "IAH": "KIAH", "BOS": "KBOS",
	"FLL": "KFLL", "MSP": "KMSP", "LGA": "KLGA", "DTW": "KDTW",
	"PHL": "KPHL", "SLC": "KSLC", "DCA": "KDCA", "SAN": "KSAN",
	"BWI": "KBWI", "TPA": "KTPA", "AUS": "KAUS", "IAD": "KIAD",
	"BNA": "KBNA", "MDW": "KMDW",
}

// observationTimeLayout matches the "valid" column of IEM CSV responses
const observationTimeLayout = "2006-01-02 15:04"

// knots to mph
const knotsToMph = 1.15078

// Client fetches hourly ASOS observations from the Iowa Environmental
// Mesonet download service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a new IEM client
func NewClient(baseURL string, timeout time.Duration, logger logger.Logger) repository.WeatherSourceRepository {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// MappedAirports returns the airports with a station mapping, sorted so
// fetch order is reproducible across runs
func (c *Client) MappedAirports() []string {
	airports := make([]string, 0, len(stationMap))
	for code := range stationMap {
		airports = append(airports, code)
	}
	sort.Strings(airports)
	return airports
}

// FetchObservations fetches hourly observations for one airport over a
// date range (inclusive). Rows with missing ("M") or trace ("T") values
// load those fields as nil.
func (c *Client) FetchObservations(ctx context.Context, airportCode string, start, end time.Time) ([]entity.WeatherObservation, error) {
	station, ok := stationMap[airportCode]
	if !ok {
		return nil, fmt.Errorf("no station mapping for airport %s", airportCode)
	}

	reqURL := c.buildURL(station, start, end)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", station, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather for %s: %w", station, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather service returned status %d for %s", resp.StatusCode, station)
	}

	observations, err := c.parseResponse(airportCode, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse weather for %s: %w", station, err)
	}

	c.logger.Debug("Fetched observations", "airport", airportCode, "station", station, "count", len(observations))
	return observations, nil
}

// buildURL assembles the ASOS download query for a station and date range
func (c *Client) buildURL(station string, start, end time.Time) string {
	q := url.Values{}
	q.Set("station", station)
	q.Set("year1", strconv.Itoa(start.Year()))
	q.Set("month1", strconv.Itoa(int(start.Month())))
	q.Set("day1", strconv.Itoa(start.Day()))
	q.Set("year2", strconv.Itoa(end.Year()))
	q.Set("month2", strconv.Itoa(int(end.Month())))
	q.Set("day2", strconv.Itoa(end.Day()))
	q.Set("tz", "UTC")
	q.Set("format", "onlycomma")
	q.Set("latlon", "no")
	q.Set("elev", "no")
	q.Set("missing", "M")
	q.Set("trace", "T")

	// The service expects the data parameter repeated per field
	fields := []string{"tmpf", "dwpf", "relh", "sknt", "vsby", "p01i"}
	var data []string
	for _, f := range fields {
		data = append(data, "data="+f)
	}

	return c.baseURL + "?" + q.Encode() + "&" + strings.Join(data, "&")
}

// parseResponse reads the CSV body into observation entities
func (c *Client) parseResponse(airportCode string, body io.Reader) ([]entity.WeatherObservation, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	validIdx, ok := col["valid"]
	if !ok {
		return nil, fmt.Errorf("response missing valid column")
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var observations []entity.WeatherObservation
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if validIdx >= len(record) {
			continue
		}

		observedAt, err := time.ParseInLocation(observationTimeLayout, strings.TrimSpace(record[validIdx]), time.UTC)
		if err != nil {
			continue
		}

		day := time.Date(observedAt.Year(), observedAt.Month(), observedAt.Day(), 0, 0, 0, 0, time.UTC)
		obs := entity.WeatherObservation{
			AirportCode:     airportCode,
			ObservationDate: day,
			ObservationTime: observedAt,
			AvgTemperature:  parseValue(field(record, "tmpf")),
			DewPoint:        parseValue(field(record, "dwpf")),
			Humidity:        parseValue(field(record, "relh")),
			AvgWindSpeed:    windToMph(parseValue(field(record, "sknt"))),
			AvgVisibility:   parseValue(field(record, "vsby")),
			Precipitation:   parseValue(field(record, "p01i")),
		}
		obs.Conditions = DetermineConditions(obs.Precipitation, obs.AvgTemperature, obs.AvgVisibility)

		observations = append(observations, obs)
	}

	return observations, nil
}

// parseValue converts an IEM field to a float, treating the missing and
// trace markers as absent
func parseValue(val string) *float64 {
	val = strings.TrimSpace(val)
	if val == "" || val == "M" || val == "T" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &f
}

// windToMph converts a wind speed in knots to mph, rounded to one decimal
func windToMph(knots *float64) *float64 {
	if knots == nil {
		return nil
	}
	mph := math.Round(*knots*knotsToMph*10) / 10
	return &mph
}

// DetermineConditions derives a condition label from precipitation,
// temperature and visibility
func DetermineConditions(precipitation, temperature, visibility *float64) string {
	precip := 0.0
	if precipitation != nil {
		precip = *precipitation
	}
	vis := 10.0
	if visibility != nil {
		vis = *visibility
	}

	switch {
	case precip > 0 && temperature != nil && *temperature < 32:
		return "Snow"
	case precip > 0.1:
		return "Rain"
	case precip > 0:
		return "Light Rain"
	case vis < 3:
		return "Fog/Low Visibility"
	case temperature != nil && *temperature < 32:
		return "Cold/Clear"
	default:
		return "Clear"
	}
}
