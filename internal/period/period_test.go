package period

import (
	"errors"
	"testing"
	"time"
)

func TestFormatMondayStart(t *testing.T) {
	got, err := Format("2024-06-10")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "Del 10 al 14 de Junio" {
		t.Fatalf("period = %q, want %q", got, "Del 10 al 14 de Junio")
	}
}

func TestFormatFridayStartAdvancesFullWeek(t *testing.T) {
	got, err := Format("2024-06-14")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "Del 14 al 21 de Junio" {
		t.Fatalf("period = %q, want %q", got, "Del 14 al 21 de Junio")
	}
}

func TestFormatCrossesMonthBoundary(t *testing.T) {
	// Saturday 2024-06-29 -> Friday 2024-07-05.
	got, err := Format("2024-06-29")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "Del 29 al 5 de Julio" {
		t.Fatalf("period = %q, want %q", got, "Del 29 al 5 de Julio")
	}
}

func TestFormatInvalidDate(t *testing.T) {
	for _, input := range []string{"", "no-fecha", "2024-13-40", "10/06/2024"} {
		if _, err := Format(input); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("Format(%q) err = %v, want ErrInvalidDate", input, err)
		}
	}
}

func TestNextFridayAlwaysOneToSevenDaysAhead(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 366; day++ {
		date := start.AddDate(0, 0, day)
		end := NextFriday(date)
		span := int(end.Sub(date).Hours() / 24)
		if span < 1 || span > 7 {
			t.Fatalf("span for %s = %d days, want 1..7", date.Format("2006-01-02"), span)
		}
		if end.Weekday() != time.Friday {
			t.Fatalf("end weekday for %s = %s, want Friday", date.Format("2006-01-02"), end.Weekday())
		}
	}
}
