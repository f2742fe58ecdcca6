package utils

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for flight dates in source files
const DateLayout = "2006-01-02"

// SafeFloat converts a CSV field to a float, returning nil when the field
// is empty or unparseable
func SafeFloat(val string) *float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &f
}

// SafeInt converts a CSV field to an int, returning nil when the field is
// empty or unparseable. Parses through float first so "123.0" works.
func SafeInt(val string) *int {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	i := int(f)
	return &i
}

// SafeStr trims a CSV field, returning nil when the result is empty
func SafeStr(val string) *string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}

// SafeBool converts a 0/1 flag field (including "0.00"/"1.00") to a bool.
// Unparseable values are false.
func SafeBool(val string) bool {
	val = strings.TrimSpace(val)
	if val == "" {
		return false
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return false
	}
	return int(f) != 0
}

// ParseDate parses a YYYY-MM-DD field into a UTC midnight time
func ParseDate(val string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(val))
}
