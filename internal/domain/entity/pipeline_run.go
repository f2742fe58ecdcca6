package entity

import "time"

// Pipeline run status
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Logical sources tracked in the ledger. Each loader writes ledger rows
// only for its own source.
const (
	SourceAirports = "airports"
	SourceFlights  = "flights"
	SourceWeather  = "weather"
)

// PipelineRun is the ledger record for one (file, source) ingestion.
// Unique on (FileName, Source); upserted, never duplicated. Once Status is
// completed, RowsLoaded + RowsRejected == RowsProcessed.
type PipelineRun struct {
	ID            uint
	FileName      string
	Source        string
	RowsProcessed int
	RowsLoaded    int
	RowsRejected  int
	Status        string
	StartedAt     time.Time
	CompletedAt   *time.Time
}
