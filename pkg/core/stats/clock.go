package stats

import (
	"time"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

const dayKeyLayout = "2006-01-02"

// Clock pins the current instant and the timezone that defines a creator's day.
type Clock struct {
	Now      time.Time
	Location *time.Location
}

// NewClock returns a Clock for now in loc. A nil loc uses now's own location.
func NewClock(now time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = now.Location()
	}
	return Clock{Now: now.In(loc), Location: loc}
}

func (c Clock) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return c.Now.Location()
}

// Today is the calendar day of Now in the clock's location.
func (c Clock) Today() domain.CalendarDayKey {
	return keyOf(c.today())
}

// DaysAgo is the calendar day n days before Today.
func (c Clock) DaysAgo(n int) domain.CalendarDayKey {
	return keyOf(c.today().AddDate(0, 0, -n))
}

func (c Clock) today() time.Time {
	return civil(c.Now.In(c.location()))
}

// civil strips the time and zone from t, keeping its wall-clock date. Day
// arithmetic is done on these UTC midnights so DST shifts never move a date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func keyOf(day time.Time) domain.CalendarDayKey {
	return domain.CalendarDayKey(day.Format(dayKeyLayout))
}

func parseKey(key domain.CalendarDayKey) (time.Time, bool) {
	t, err := time.Parse(dayKeyLayout, string(key))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
