package stats

import (
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

var testClock = NewClock(time.Date(2026, time.March, 18, 15, 0, 0, 0, time.UTC), time.UTC)

// postDaysAgo builds a post published at hour:00 local time, days before the clock's today.
func postDaysAgo(clock Clock, days, hour int) domain.Post {
	now := clock.Now
	t := time.Date(now.Year(), now.Month(), now.Day()-days, hour, 0, 0, 0, clock.Location)
	return domain.Post{ID: fmt.Sprintf("v-%d-%d", days, hour), CreateTime: t.Unix()}
}

func postsOnDays(clock Clock, days ...int) []domain.Post {
	posts := make([]domain.Post, 0, len(days))
	for _, d := range days {
		posts = append(posts, postDaysAgo(clock, d, 10))
	}
	return posts
}

func TestComputeUptimeStats(t *testing.T) {
	tests := []struct {
		name          string
		days          []int
		windowDays    int
		currentStreak int
		longestStreak int
		daysPosted    int
		uptime        int
		postedToday   bool
	}{
		{name: "no posts", windowDays: 30},
		{name: "single post today", days: []int{0}, windowDays: 30,
			currentStreak: 1, longestStreak: 1, daysPosted: 1, uptime: 3, postedToday: true},
		{name: "today and yesterday", days: []int{0, 1}, windowDays: 30,
			currentStreak: 2, longestStreak: 2, daysPosted: 2, uptime: 7, postedToday: true},
		{name: "gap before today", days: []int{0, 3, 4, 5}, windowDays: 30,
			currentStreak: 1, longestStreak: 3, daysPosted: 4, uptime: 13, postedToday: true},
		{name: "grace period when today is missing", days: []int{1, 2}, windowDays: 30,
			currentStreak: 2, longestStreak: 2, daysPosted: 2, uptime: 7},
		{name: "streak broken after two missed days", days: []int{2, 3}, windowDays: 30,
			currentStreak: 0, longestStreak: 2, daysPosted: 2, uptime: 7},
		{name: "several posts on one day count once", days: []int{0, 0, 0}, windowDays: 7,
			currentStreak: 1, longestStreak: 1, daysPosted: 1, uptime: 14, postedToday: true},
		{name: "posts outside the window", days: []int{0, 40, 41}, windowDays: 30,
			currentStreak: 1, longestStreak: 2, daysPosted: 1, uptime: 3, postedToday: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeUptimeStats(postsOnDays(testClock, tt.days...), tt.windowDays, testClock)

			assert.Equal(t, tt.currentStreak, got.CurrentStreak, "current streak")
			assert.Equal(t, tt.longestStreak, got.LongestStreak, "longest streak")
			assert.Equal(t, tt.daysPosted, got.DaysPosted, "days posted")
			assert.Equal(t, tt.uptime, got.UptimePercentage, "uptime")
			assert.Equal(t, tt.postedToday, got.PostedToday, "posted today")
			assert.Equal(t, tt.windowDays, got.TotalDays)
		})
	}
}

func TestComputeUptimeStatsEmpty(t *testing.T) {
	got := ComputeUptimeStats(nil, 30, testClock)

	assert.Equal(t, domain.UptimeStats{
		TotalDays:    30,
		RecentVideos: []domain.Post{},
		PostDates:    domain.NewPostDateSet(),
	}, got)
}

func TestEveryDayInWindowIsFullUptime(t *testing.T) {
	days := make([]int, 30)
	for i := range days {
		days[i] = i
	}

	got := ComputeUptimeStats(postsOnDays(testClock, days...), 30, testClock)

	assert.Equal(t, 100, got.UptimePercentage)
	assert.Equal(t, 30, got.DaysPosted)
	assert.Equal(t, 30, got.CurrentStreak)
	assert.Equal(t, 30, got.LongestStreak)
}

func TestCurrentStreakMatchesConsecutiveRun(t *testing.T) {
	const window = 30
	for _, k := range []int{0, 1, 9, 29, 30, 44} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			days := make([]int, 0, k+1)
			for i := 0; i <= k; i++ {
				days = append(days, i)
			}

			got := ComputeUptimeStats(postsOnDays(testClock, days...), window, testClock)

			assert.Equal(t, k+1, got.CurrentStreak)
			assert.Equal(t, min(k+1, window), got.DaysPosted)
		})
	}
}

func TestUptimeStaysWithinBounds(t *testing.T) {
	for window := 1; window <= 60; window += 7 {
		for stride := 1; stride <= 5; stride++ {
			var days []int
			for d := 0; d < 90; d += stride {
				days = append(days, d)
			}
			got := ComputeUptimeStats(postsOnDays(testClock, days...), window, testClock)
			assert.GreaterOrEqual(t, got.UptimePercentage, 0)
			assert.LessOrEqual(t, got.UptimePercentage, 100)
		}
	}
}

func TestNonPositiveWindow(t *testing.T) {
	got := ComputeUptimeStats(postsOnDays(testClock, 0, 1), 0, testClock)

	assert.Equal(t, 0, got.UptimePercentage)
	assert.Equal(t, 0, got.DaysPosted)
	assert.Equal(t, 2, got.CurrentStreak)
}

func TestComputeUptimeStatsIsIdempotent(t *testing.T) {
	posts := postsOnDays(testClock, 0, 1, 2, 5, 6, 9, 20, 31)

	first := ComputeUptimeStats(posts, 30, testClock)
	second := ComputeUptimeStats(posts, 30, testClock)

	assert.Equal(t, first, second)
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name string
		keys []domain.CalendarDayKey
		want int
	}{
		{"empty", nil, 0},
		{"single day", []domain.CalendarDayKey{"2026-03-01"}, 1},
		{"gap on day four", []domain.CalendarDayKey{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-05", "2026-03-06"}, 3},
		{"month boundary", []domain.CalendarDayKey{"2026-01-30", "2026-01-31", "2026-02-01"}, 3},
		{"february into march", []domain.CalendarDayKey{"2026-02-27", "2026-02-28", "2026-03-01"}, 3},
		{"year boundary", []domain.CalendarDayKey{"2025-12-31", "2026-01-01"}, 2},
		{"later run is longer", []domain.CalendarDayKey{"2026-01-01", "2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08"}, 4},
		{"unparseable keys are skipped", []domain.CalendarDayKey{"garbage", "2026-01-01", "2026-01-02"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LongestStreak(domain.NewPostDateSet(tt.keys...)))
		})
	}
}

func TestCurrentStreakFromKey(t *testing.T) {
	dates := domain.NewPostDateSet("2026-02-28", "2026-03-01", "2026-03-02")

	assert.Equal(t, 3, CurrentStreak(dates, "2026-03-02"))
	assert.Equal(t, 3, CurrentStreak(dates, "2026-03-03"))
	assert.Equal(t, 0, CurrentStreak(dates, "2026-03-04"))
	assert.Equal(t, 0, CurrentStreak(dates, "not-a-day"))
}

func TestStreakAcrossDaylightSavingChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks jump from 02:00 to 03:00 on 2026-03-08; that day is 23 hours long.
	clock := NewClock(time.Date(2026, time.March, 9, 12, 0, 0, 0, ny), ny)
	posts := []domain.Post{
		{ID: "a", CreateTime: time.Date(2026, time.March, 7, 0, 30, 0, 0, ny).Unix()},
		{ID: "b", CreateTime: time.Date(2026, time.March, 8, 23, 30, 0, 0, ny).Unix()},
		{ID: "c", CreateTime: time.Date(2026, time.March, 9, 0, 15, 0, 0, ny).Unix()},
	}

	got := ComputeUptimeStats(posts, 30, clock)

	assert.Equal(t, 3, got.CurrentStreak)
	assert.Equal(t, 3, got.LongestStreak)
	assert.Equal(t, []domain.CalendarDayKey{"2026-03-07", "2026-03-08", "2026-03-09"}, got.PostDates.Sorted())
}

func TestDayKeyUsesLocation(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	epoch := time.Date(2026, time.March, 18, 2, 0, 0, 0, time.UTC).Unix()

	utcKey, ok := DayKey(epoch, time.UTC)
	require.True(t, ok)
	laKey, ok := DayKey(epoch, la)
	require.True(t, ok)

	assert.Equal(t, domain.CalendarDayKey("2026-03-18"), utcKey)
	assert.Equal(t, domain.CalendarDayKey("2026-03-17"), laKey)
}

func TestDayKeyRejectsMissingTimestamp(t *testing.T) {
	for _, ts := range []int64{0, -1} {
		_, ok := DayKey(ts, time.UTC)
		assert.False(t, ok)
	}

	set := BuildDateSet([]domain.Post{{ID: "no-time"}, postDaysAgo(testClock, 0, 9)}, time.UTC)
	assert.Len(t, set, 1)
}

func TestRecentVideos(t *testing.T) {
	posts := postsOnDays(testClock, 6, 2, 0, 4, 1, 5, 3)
	posts = append(posts, domain.Post{ID: "undated"})

	got := ComputeUptimeStats(posts, 30, testClock)

	require.Len(t, got.RecentVideos, 5)
	for i, want := range []string{"v-0-10", "v-1-10", "v-2-10", "v-3-10", "v-4-10"} {
		assert.Equal(t, want, got.RecentVideos[i].ID)
	}
}

func TestComputeUptimeFromDatesDoesNotAliasInput(t *testing.T) {
	dates := domain.NewPostDateSet(testClock.Today())

	got := ComputeUptimeFromDates(dates, 30, testClock)
	got.PostDates.Add("2020-01-01")

	assert.Len(t, dates, 1)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Empty(t, got.RecentVideos)
}

func TestClockDaysAgoCrossesMonth(t *testing.T) {
	clock := NewClock(time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC), nil)

	assert.Equal(t, domain.CalendarDayKey("2026-03-02"), clock.DaysAgo(0))
	assert.Equal(t, domain.CalendarDayKey("2026-02-28"), clock.DaysAgo(2))
}
