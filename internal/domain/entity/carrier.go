package entity

import (
	"fmt"
	"time"
)

// Carrier represents one row of the carriers dimension
type Carrier struct {
	ID        uint
	Code      string
	Name      string
	DotID     *int
	CreatedAt time.Time
}

// carrierNames maps US carrier codes to display names. Codes absent from
// the map get a synthesized placeholder name.
var carrierNames = map[string]string{
	"AA": "American Airlines", "DL": "Delta Air Lines",
	"UA": "United Airlines", "WN": "Southwest Airlines",
	"B6": "JetBlue Airways", "AS": "Alaska Airlines",
	"NK": "Spirit Airlines", "F9": "Frontier Airlines",
	"G4": "Allegiant Air", "HA": "Hawaiian Airlines",
	"SY": "Sun Country Airlines", "MX": "MexicanaLink",
	"OH": "PSA Airlines", "OO": "SkyWest Airlines",
	"YV": "Mesa Airlines", "YX": "Republic Airways",
	"QX": "Horizon Air", "MQ": "Envoy Air",
	"9E": "Endeavor Air", "EV": "ExpressJet Airlines",
	"PT": "Piedmont Airlines", "ZW": "Air Wisconsin",
	"CP": "Compass Airlines", "C5": "CommutAir",
	"G7": "GoJet Airlines", "KS": "Penair",
}

// CarrierName returns the display name for a carrier code
func CarrierName(code string) string {
	if name, ok := carrierNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Carrier %s", code)
}
