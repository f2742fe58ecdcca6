package router

import (
	"testing"

	"flight-pipeline-service/internal/domain/entity"
)

func TestRoute(t *testing.T) {
	r := NewSourceRouter()
	cases := []struct {
		key  string
		want string
	}{
		{"raw/airports.dat", entity.SourceAirports},
		{"raw/flights_2024_01.csv", entity.SourceFlights},
		{"raw/FLIGHTS_2024_02.CSV", entity.SourceFlights},
		{"raw/airport_lookup.csv", ""},
		{"raw/readme.txt", ""},
		{"raw/nested/dir/on_time_jan.csv", entity.SourceFlights},
	}
	for _, tc := range cases {
		if got := r.Route(tc.key); got != tc.want {
			t.Errorf("Route(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	r := NewSourceRouter()
	files := r.Classify([]string{
		"raw/airports.dat",
		"raw/flights_a.csv",
		"raw/skip.me",
		"raw/flights_b.csv",
	})

	if len(files) != 3 {
		t.Fatalf("classified %d files, want 3", len(files))
	}
	if files[0].Source != entity.SourceAirports || files[0].Name != "airports.dat" {
		t.Errorf("first file = %+v", files[0])
	}
	if files[1].Key != "raw/flights_a.csv" || files[1].Source != entity.SourceFlights {
		t.Errorf("second file = %+v", files[1])
	}
	if files[2].Name != "flights_b.csv" {
		t.Errorf("third file = %+v", files[2])
	}
}
