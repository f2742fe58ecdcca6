package entity

import "time"

// RejectedRecord is an append-only audit entry for a row that failed
// validation. There is no dedup key: re-processing a file that previously
// failed mid-run logs the same rejects again.
type RejectedRecord struct {
	ID              uint
	Source          string
	FileName        string
	RowNumber       int
	RawData         string
	RejectionReason string
	CreatedAt       time.Time
}
