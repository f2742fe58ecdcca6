package entity

import (
	"time"
)

// DateDim represents one row of the date dimension. Every attribute is a
// pure function of DateID, so rows can be regenerated idempotently.
type DateDim struct {
	DateID     time.Time
	Year       int
	Quarter    int
	Month      int
	DayOfMonth int
	DayOfWeek  int
	DayName    string
	MonthName  string
	IsWeekend  bool
	Season     string
}

// NewDateDim derives the full dimension row for a calendar date.
// DayOfWeek is Monday=0..Sunday=6; weekends are Saturday and Sunday.
func NewDateDim(d time.Time) DateDim {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	dow := (int(d.Weekday()) + 6) % 7
	return DateDim{
		DateID:     d,
		Year:       d.Year(),
		Quarter:    (int(d.Month())-1)/3 + 1,
		Month:      int(d.Month()),
		DayOfMonth: d.Day(),
		DayOfWeek:  dow,
		DayName:    d.Weekday().String(),
		MonthName:  d.Month().String(),
		IsWeekend:  dow >= 5,
		Season:     seasonOf(d.Month()),
	}
}

func seasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Fall"
	}
}
