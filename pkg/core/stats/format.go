package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const placeholder = "—"

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayName returns the English weekday for 0=Sunday..6=Saturday.
func DayName(day int) string {
	if day < 0 || day >= len(dayNames) {
		return placeholder
	}
	return dayNames[day]
}

// HourLabel renders an hour of the day as 12am, 1am ... 12pm, 1pm.
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12am"
	case hour == 12:
		return "12pm"
	case hour < 12:
		return fmt.Sprintf("%dam", hour)
	default:
		return fmt.Sprintf("%dpm", hour-12)
	}
}

// FormatNumber abbreviates large counts: 1500 -> 1.5K, 2000000 -> 2M.
func FormatNumber(n int64) string {
	switch {
	case n >= 1_000_000:
		return trimDecimal(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return trimDecimal(float64(n)/1_000) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

func trimDecimal(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}

func formatClock(t time.Time) string {
	return t.Format("3:04 PM")
}
