package usecase

import (
	"errors"
	"testing"
	"time"

	"flight-pipeline-service/internal/orchestrator"
)

func testRunner() *PipelineRunner {
	return NewPipelineRunner(nil, nil, nil, nil, nil, nil, nil, nil, nopLogger{}, RunnerConfig{
		MaxAttempts:  3,
		RetryBackoff: time.Second,
		StageTimeout: time.Minute,
	})
}

func TestStageGraphShape(t *testing.T) {
	stages := testRunner().stages()

	deps := make(map[string][]string, len(stages))
	for _, s := range stages {
		deps[s.Name] = s.Deps
	}

	want := map[string][]string{
		StageUpload:   nil,
		StageAirports: {StageUpload},
		StageCarriers: {StageAirports},
		StageDates:    {StageAirports},
		StageFlights:  {StageCarriers, StageDates},
		StageWeather:  {StageFlights},
		StageQuality:  {StageWeather},
	}
	if len(deps) != len(want) {
		t.Fatalf("graph has %d stages, want %d", len(deps), len(want))
	}
	for name, wantDeps := range want {
		got, ok := deps[name]
		if !ok {
			t.Fatalf("stage %q missing from graph", name)
		}
		if len(got) != len(wantDeps) {
			t.Errorf("stage %q deps = %v, want %v", name, got, wantDeps)
			continue
		}
		for i := range wantDeps {
			if got[i] != wantDeps[i] {
				t.Errorf("stage %q deps = %v, want %v", name, got, wantDeps)
				break
			}
		}
	}
}

func TestQualityStageNeverRetriesGateFailure(t *testing.T) {
	var gate orchestrator.Stage
	for _, s := range testRunner().stages() {
		if s.Name == StageQuality {
			gate = s
		}
	}
	if gate.Retry.Retryable == nil {
		t.Fatal("quality stage has no retryable predicate")
	}

	if gate.Retry.Retryable(&QualityGateError{}) {
		t.Error("gate failure marked retryable")
	}
	if !gate.Retry.Retryable(errors.New("connection refused")) {
		t.Error("transient error marked non-retryable")
	}
}

func TestLoadStagesRetryOnAnyError(t *testing.T) {
	for _, s := range testRunner().stages() {
		if s.Name == StageQuality {
			continue
		}
		if s.Retry.MaxAttempts != 3 {
			t.Errorf("stage %q MaxAttempts = %d, want 3", s.Name, s.Retry.MaxAttempts)
		}
		if s.Retry.Retryable != nil {
			t.Errorf("stage %q restricts retryable errors", s.Name)
		}
	}
}
