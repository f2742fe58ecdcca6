package usecase

import (
	"context"
	"testing"

	"flight-pipeline-service/internal/infrastructure/router"
)

func TestCarrierLoaderAggregatesAcrossFiles(t *testing.T) {
	storage := newFakeStorage()
	// ZQ appears only in the second file; scanning every pending file up
	// front keeps its rows in file one from rejecting spuriously later
	storage.objects["raw/a_flights.csv"] = "Reporting_Airline,DOT_ID_Reporting_Airline\nAA,19805\nDL,19790\nAA,19805"
	storage.objects["raw/b_flights.csv"] = "Reporting_Airline,DOT_ID_Reporting_Airline\nZQ,99999\nDL,19790"
	storage.objects["raw/airports.dat"] = "ignored"

	carriers := newFakeCarrierRepo()
	loader := NewCarrierLoader(carriers, storage, router.NewSourceRouter(), nopLogger{}, "raw/")

	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	codes, _ := carriers.Codes(context.Background())
	want := []string{"AA", "DL", "ZQ"}
	if len(codes) != len(want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
	for i, code := range want {
		if codes[i] != code {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}

	// Known codes map to display names, unknown ones get a placeholder
	if got := carriers.byCode["AA"].Name; got != "American Airlines" {
		t.Errorf("AA name = %q", got)
	}
	if got := carriers.byCode["ZQ"].Name; got != "Carrier ZQ" {
		t.Errorf("ZQ name = %q, want synthesized placeholder", got)
	}

	if dot := carriers.byCode["DL"].DotID; dot == nil || *dot != 19790 {
		t.Errorf("DL dot id = %v, want 19790", dot)
	}
}

func TestCarrierLoaderMissingCarrierColumn(t *testing.T) {
	storage := newFakeStorage()
	storage.objects["raw/flights.csv"] = "FlightDate,Origin\n2024-01-15,JFK"

	loader := NewCarrierLoader(newFakeCarrierRepo(), storage, router.NewSourceRouter(), nopLogger{}, "raw/")
	if err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected structural error for missing Reporting_Airline column")
	}
}

func TestCarrierLoaderNoFactFiles(t *testing.T) {
	storage := newFakeStorage()
	storage.objects["raw/airports.dat"] = "ignored"

	carriers := newFakeCarrierRepo()
	loader := NewCarrierLoader(carriers, storage, router.NewSourceRouter(), nopLogger{}, "raw/")
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load with no fact files: %v", err)
	}
	count, _ := carriers.Count(context.Background())
	if count != 0 {
		t.Errorf("carriers = %d, want 0", count)
	}
}
