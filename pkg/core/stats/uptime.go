package stats

import (
	"math"
	"sort"
	"time"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

const (
	// DefaultWindowDays is the trailing window used for uptime and the leaderboard.
	DefaultWindowDays = 30

	recentVideoCount = 5
)

// ComputeUptimeStats derives streaks and uptime over the trailing windowDays
// ending today.
func ComputeUptimeStats(posts []domain.Post, windowDays int, clock Clock) domain.UptimeStats {
	stats := ComputeUptimeFromDates(BuildDateSet(posts, clock.location()), windowDays, clock)
	stats.RecentVideos = recentVideos(posts, recentVideoCount)
	return stats
}

// ComputeUptimeFromDates is ComputeUptimeStats for callers that already hold
// the posting days, such as the sync layer reading them back from storage.
// RecentVideos is empty.
func ComputeUptimeFromDates(dates domain.PostDateSet, windowDays int, clock Clock) domain.UptimeStats {
	set := domain.NewPostDateSet()
	for k := range dates {
		set.Add(k)
	}

	today := clock.today()
	daysPosted := daysPostedInWindow(set, today, windowDays)

	uptime := 0
	if windowDays > 0 {
		uptime = int(math.Round(float64(daysPosted) / float64(windowDays) * 100))
	}

	return domain.UptimeStats{
		CurrentStreak:    currentStreak(set, today),
		LongestStreak:    LongestStreak(set),
		UptimePercentage: uptime,
		TotalDays:        windowDays,
		DaysPosted:       daysPosted,
		PostedToday:      set.Has(keyOf(today)),
		RecentVideos:     []domain.Post{},
		PostDates:        set,
	}
}

// CurrentStreak counts consecutive posting days ending today, or ending
// yesterday when nothing has been posted today yet.
func CurrentStreak(dates domain.PostDateSet, today domain.CalendarDayKey) int {
	day, ok := parseKey(today)
	if !ok {
		return 0
	}
	return currentStreak(dates, day)
}

func currentStreak(dates domain.PostDateSet, today time.Time) int {
	day := today
	if !dates.Has(keyOf(day)) {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for dates.Has(keyOf(day)) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak is the longest run of consecutive days in dates.
func LongestStreak(dates domain.PostDateSet) int {
	longest, run := 0, 0
	var prev time.Time
	for _, key := range dates.Sorted() {
		day, ok := parseKey(key)
		if !ok {
			continue
		}
		if run > 0 && prev.AddDate(0, 0, 1).Equal(day) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		prev = day
	}
	return longest
}

func daysPostedInWindow(dates domain.PostDateSet, today time.Time, windowDays int) int {
	count := 0
	for i := 0; i < windowDays; i++ {
		if dates.Has(keyOf(today.AddDate(0, 0, -i))) {
			count++
		}
	}
	return count
}

func recentVideos(posts []domain.Post, n int) []domain.Post {
	sorted := make([]domain.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return max(sorted[i].CreateTime, 0) > max(sorted[j].CreateTime, 0)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
