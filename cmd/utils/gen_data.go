package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Generates a small BTS-format flights CSV and a matching airports.dat
// so the pipeline can be exercised end to end against the storage
// emulator.

var flightHeader = []string{
	"FlightDate", "Reporting_Airline", "DOT_ID_Reporting_Airline",
	"Tail_Number", "Flight_Number_Reporting_Airline",
	"Origin", "OriginCityName", "OriginState",
	"Dest", "DestCityName", "DestState",
	"CRSDepTime", "DepTime", "DepDelay", "DepDelayMinutes", "DepDel15",
	"CRSArrTime", "ArrTime", "ArrDelay", "ArrDelayMinutes", "ArrDel15",
	"Cancelled", "CancellationCode", "Diverted",
	"Distance", "AirTime", "CRSElapsedTime", "ActualElapsedTime",
	"CarrierDelay", "WeatherDelay", "NASDelay", "SecurityDelay", "LateAircraftDelay",
}

type airport struct {
	code, name, city, state string
}

var airports = []airport{
	{"ATL", "Hartsfield Jackson Atlanta International Airport", "Atlanta", "GA"},
	{"DFW", "Dallas Fort Worth International Airport", "Dallas-Fort Worth", "TX"},
	{"DEN", "Denver International Airport", "Denver", "CO"},
	{"ORD", "Chicago O'Hare International Airport", "Chicago", "IL"},
	{"LAX", "Los Angeles International Airport", "Los Angeles", "CA"},
	{"JFK", "John F Kennedy International Airport", "New York", "NY"},
	{"SEA", "Seattle Tacoma International Airport", "Seattle", "WA"},
	{"BOS", "General Edward Lawrence Logan International Airport", "Boston", "MA"},
}

var carriers = []string{"AA", "DL", "UA", "WN", "B6"}

func main() {
	outDir := flag.String("out", "./data/raw", "output directory")
	rows := flag.Int("rows", 500, "number of flight rows")
	start := flag.String("start", "2024-01-01", "first flight date (YYYY-MM-DD)")
	days := flag.Int("days", 7, "number of consecutive flight dates")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("invalid start date: %v", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create %s: %v", *outDir, err)
	}

	rng := rand.New(rand.NewSource(*seed))

	flightsPath := filepath.Join(*outDir, "flights_sample.csv")
	if err := writeFlights(flightsPath, *rows, startDate, *days, rng); err != nil {
		log.Fatalf("failed to write flights: %v", err)
	}
	airportsPath := filepath.Join(*outDir, "airports.dat")
	if err := writeAirports(airportsPath); err != nil {
		log.Fatalf("failed to write airports: %v", err)
	}

	fmt.Printf("wrote %s (%d rows) and %s (%d airports)\n", flightsPath, *rows, airportsPath, len(airports))
}

func writeFlights(path string, rows int, start time.Time, days int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(flightHeader); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		date := start.AddDate(0, 0, rng.Intn(days))
		carrier := carriers[rng.Intn(len(carriers))]
		origin := airports[rng.Intn(len(airports))]
		dest := airports[rng.Intn(len(airports))]
		for dest.code == origin.code {
			dest = airports[rng.Intn(len(airports))]
		}

		depDelay := float64(rng.Intn(120) - 15)
		arrDelay := depDelay + float64(rng.Intn(30)-15)
		cancelled := rng.Intn(50) == 0

		record := []string{
			date.Format("2006-01-02"),
			carrier,
			strconv.Itoa(19000 + rng.Intn(1000)),
			fmt.Sprintf("N%05d", rng.Intn(100000)),
			strconv.Itoa(1 + rng.Intn(9999)),
			origin.code, origin.city, origin.state,
			dest.code, dest.city, dest.state,
			"0800", "0805",
			num(depDelay), num(maxf(depDelay, 0)), flag01(depDelay >= 15),
			"1100", "1110",
			num(arrDelay), num(maxf(arrDelay, 0)), flag01(arrDelay >= 15),
			flag01(cancelled), cancelCode(cancelled, rng), "0.00",
			num(float64(200 + rng.Intn(2000))),
			num(float64(60 + rng.Intn(300))),
			num(float64(90 + rng.Intn(300))),
			num(float64(90 + rng.Intn(300))),
			"", "", "", "", "",
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// writeAirports emits the headerless reference format: id, name, city,
// country, IATA, ICAO, lat, lon, altitude, tz offset, dst, timezone,
// type, source
func writeAirports(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for i, a := range airports {
		record := []string{
			strconv.Itoa(i + 1), a.name, a.city, "United States",
			a.code, "K" + a.code,
			"40.0", "-95.0", "500", "-6", "A", "America/Chicago",
			"airport", "generated",
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func flag01(v bool) string {
	if v {
		return "1.00"
	}
	return "0.00"
}

func cancelCode(cancelled bool, rng *rand.Rand) string {
	if !cancelled {
		return ""
	}
	return string("ABCD"[rng.Intn(4)])
}
