package orchestrator

import (
	"testing"
)

func pipelineStages() []Stage {
	noop := func(name string) Stage {
		return Stage{Name: name, Run: nil}
	}
	upload := noop("upload")
	airports := noop("airports")
	airports.Deps = []string{"upload"}
	carriers := noop("carriers")
	carriers.Deps = []string{"airports"}
	dates := noop("dates")
	dates.Deps = []string{"airports"}
	flights := noop("flights")
	flights.Deps = []string{"carriers", "dates"}
	weather := noop("weather")
	weather.Deps = []string{"flights"}
	quality := noop("quality")
	quality.Deps = []string{"weather"}
	return []Stage{upload, airports, carriers, dates, flights, weather, quality}
}

func TestValidateDAGTopologicalOrder(t *testing.T) {
	order, err := validateDAG(pipelineStages())
	if err != nil {
		t.Fatalf("validateDAG: %v", err)
	}

	pos := map[string]int{}
	for i, name := range order {
		pos[name] = i
	}
	after := func(a, b string) {
		t.Helper()
		if pos[a] <= pos[b] {
			t.Errorf("%s at %d not after %s at %d", a, pos[a], b, pos[b])
		}
	}
	after("airports", "upload")
	after("carriers", "airports")
	after("dates", "airports")
	after("flights", "carriers")
	after("flights", "dates")
	after("weather", "flights")
	after("quality", "weather")
}

func TestValidateDAGRejectsCycle(t *testing.T) {
	stages := []Stage{
		{Name: "a", Deps: []string{"b"}},
		{Name: "b", Deps: []string{"a"}},
	}
	if _, err := validateDAG(stages); err == nil {
		t.Fatal("cycle not detected")
	}
}

func TestValidateDAGRejectsDuplicateNames(t *testing.T) {
	stages := []Stage{{Name: "a"}, {Name: "a"}}
	if _, err := validateDAG(stages); err == nil {
		t.Fatal("duplicate stage name not detected")
	}
}

func TestValidateDAGRejectsUnknownDep(t *testing.T) {
	stages := []Stage{{Name: "a", Deps: []string{"ghost"}}}
	if _, err := validateDAG(stages); err == nil {
		t.Fatal("unknown dependency not detected")
	}
}

func TestValidateDAGRejectsEmptyName(t *testing.T) {
	stages := []Stage{{Name: "  "}}
	if _, err := validateDAG(stages); err == nil {
		t.Fatal("blank stage name not detected")
	}
}
