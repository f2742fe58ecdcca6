package usecase

import (
	"context"
	"strings"
	"testing"

	"flight-pipeline-service/internal/domain/entity"
)

const airportsDat = `1,"Goroka Airport","Goroka","Papua New Guinea","GKA","AYGA",-6.08,145.39,5282,10,"U","Pacific/Port_Moresby","airport","OurAirports"
2,"John F Kennedy International Airport","New York","United States","JFK","KJFK",40.63,-73.77,13,-5,"A","America/New_York","airport","OurAirports"
3,"Duplicate JFK","Elsewhere","United States","JFK","XXXX",0.0,0.0,0,0,"A","America/Chicago","airport","OurAirports"
4,"No IATA Heliport","Nowhere","United States","\N","KXXX",1.0,1.0,10,0,"A","\N","heliport","OurAirports"
5,"Bad Altitude Field","Somewhere","United States","LAX","KLAX",33.94,-118.40,abc,-8,"A","America/Los_Angeles","airport","OurAirports"`

func TestParseAirportsDat(t *testing.T) {
	airports, err := parseAirportsDat(strings.NewReader(airportsDat))
	if err != nil {
		t.Fatalf("parseAirportsDat: %v", err)
	}
	if len(airports) != 3 {
		t.Fatalf("parsed %d airports, want 3 (GKA, JFK, LAX)", len(airports))
	}

	byCode := map[string]entity.Airport{}
	for _, a := range airports {
		byCode[a.Code] = a
	}

	// Duplicate IATA code keeps the first-seen row's values
	jfk := byCode["JFK"]
	if jfk.Name != "John F Kennedy International Airport" {
		t.Errorf("JFK name = %q, want first-seen row", jfk.Name)
	}
	if jfk.City != "New York" {
		t.Errorf("JFK city = %q, want New York", jfk.City)
	}
	if jfk.Latitude == nil || *jfk.Latitude != 40.63 {
		t.Errorf("JFK latitude = %v, want 40.63", jfk.Latitude)
	}

	// Unparseable altitude loads as NULL
	lax := byCode["LAX"]
	if lax.Altitude != nil {
		t.Errorf("LAX altitude = %v, want nil", *lax.Altitude)
	}

	// \N markers never become values
	if _, ok := byCode["\\N"]; ok {
		t.Error("row with \\N IATA code kept")
	}
}

func TestAirportLoaderLoad(t *testing.T) {
	storage := newFakeStorage()
	storage.objects["raw/airports.dat"] = airportsDat

	airports := newFakeAirportRepo()
	runs := newFakeRunRepo()
	loader := NewAirportLoader(airports, runs, storage, nopLogger{}, nil, "raw/airports.dat")

	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	count, _ := airports.Count(context.Background())
	if count != 3 {
		t.Errorf("airports = %d, want 3", count)
	}

	run, err := runs.GetByFileAndSource(context.Background(), "airports.dat", entity.SourceAirports)
	if err != nil {
		t.Fatalf("airports ledger row missing: %v", err)
	}
	if run.Status != entity.RunStatusCompleted {
		t.Errorf("status = %q, want completed", run.Status)
	}

	// Re-running upserts conflict do-nothing: first-seen values survive
	storage.objects["raw/airports.dat"] = strings.ReplaceAll(airportsDat, "John F Kennedy International Airport", "Renamed Airport")
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	jfk, err := airports.GetByCode(context.Background(), "JFK")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if jfk.Name != "John F Kennedy International Airport" {
		t.Errorf("JFK name changed on reload: %q", jfk.Name)
	}
}
