package entity

import (
	"time"
)

// Airport represents one row of the airports dimension, keyed by IATA code
type Airport struct {
	ID        uint
	Code      string
	Name      string
	City      string
	Country   string
	Latitude  *float64
	Longitude *float64
	Altitude  *int
	Timezone  *string
	CreatedAt time.Time
}
