package domain

import (
	"sort"

	"github.com/goccy/go-json"
)

// CalendarDayKey is a local calendar day in YYYY-MM-DD form.
type CalendarDayKey string

// PostDateSet is the set of days with at least one post.
type PostDateSet map[CalendarDayKey]struct{}

func NewPostDateSet(keys ...CalendarDayKey) PostDateSet {
	s := make(PostDateSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s PostDateSet) Has(key CalendarDayKey) bool {
	_, ok := s[key]
	return ok
}

func (s PostDateSet) Add(key CalendarDayKey) { s[key] = struct{}{} }

// Sorted returns the keys in ascending order. YYYY-MM-DD sorts lexically.
func (s PostDateSet) Sorted() []CalendarDayKey {
	keys := make([]CalendarDayKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s PostDateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *PostDateSet) UnmarshalJSON(data []byte) error {
	var keys []CalendarDayKey
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = NewPostDateSet(keys...)
	return nil
}

// UptimeStats is the streak/uptime summary shown on the dashboard.
type UptimeStats struct {
	CurrentStreak    int         `json:"current_streak"`
	LongestStreak    int         `json:"longest_streak"`
	UptimePercentage int         `json:"uptime_percentage"`
	TotalDays        int         `json:"total_days"`
	DaysPosted       int         `json:"days_posted"`
	PostedToday      bool        `json:"posted_today"`
	RecentVideos     []Post      `json:"recent_videos"`
	PostDates        PostDateSet `json:"post_dates"`
}
