// Package period derives the human-readable week period used in
// proposed document names. A period runs from the chosen start date to
// the next Friday, always spanning at least one and at most seven days.
package period

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate reports an unparseable start date.
var ErrInvalidDate = errors.New("period: invalid start date")

// Unavailable is the placeholder callers show when derivation fails.
const Unavailable = "Periodo no disponible"

const dateLayout = "2006-01-02"

var monthNames = map[time.Month]string{
	time.January:   "Enero",
	time.February:  "Febrero",
	time.March:     "Marzo",
	time.April:     "Abril",
	time.May:       "Mayo",
	time.June:      "Junio",
	time.July:      "Julio",
	time.August:    "Agosto",
	time.September: "Septiembre",
	time.October:   "Octubre",
	time.November:  "Noviembre",
	time.December:  "Diciembre",
}

// NextFriday returns the first Friday strictly after start. A start
// date that is already Friday advances a full week, so the period
// never has zero length.
func NextFriday(start time.Time) time.Time {
	offset := (int(time.Friday) - int(start.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return start.AddDate(0, 0, offset)
}

// Format maps a yyyy-mm-dd start date to "Del <d1> al <d2> de <Mes>".
func Format(startDate string) (string, error) {
	start, err := Parse(startDate)
	if err != nil {
		return "", err
	}
	end := NextFriday(start)
	return fmt.Sprintf("Del %d al %d de %s", start.Day(), end.Day(), monthNames[end.Month()]), nil
}

// Parse validates a yyyy-mm-dd date string.
func Parse(startDate string) (time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, startDate)
	}
	return start, nil
}
