package stats

import (
	"time"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

// DayKey maps a creation timestamp to its calendar day in loc (UTC when nil).
// Non-positive timestamps cannot be placed on a calendar and report false.
func DayKey(epochSeconds int64, loc *time.Location) (domain.CalendarDayKey, bool) {
	if epochSeconds <= 0 {
		return "", false
	}
	return keyOf(civil(time.Unix(epochSeconds, 0).In(orUTC(loc)))), true
}

// BuildDateSet collects the distinct posting days of posts.
func BuildDateSet(posts []domain.Post, loc *time.Location) domain.PostDateSet {
	set := domain.NewPostDateSet()
	for _, p := range posts {
		if key, ok := DayKey(p.CreateTime, loc); ok {
			set.Add(key)
		}
	}
	return set
}

// Enrich computes the per-post ratios. Views are floored at 1 so every ratio
// is finite; a post with 0 views and 50 likes has LikesPerView 5000.
func Enrich(post domain.Post, loc *time.Location) domain.EnrichedPost {
	views := float64(max(post.Views(), 1))
	likes := float64(post.Likes())
	comments := float64(post.Comments())
	shares := float64(post.Shares())

	e := domain.EnrichedPost{
		Post:            post,
		EngagementRate:  (likes + comments + shares) / views * 100,
		LikesPerView:    likes / views * 100,
		CommentsPerView: comments / views * 100,
		SharesPerView:   shares / views * 100,
	}
	if post.HasCreateTime() {
		t := time.Unix(post.CreateTime, 0).In(orUTC(loc))
		e.PostingHour = t.Hour()
		e.PostingDay = int(t.Weekday())
	}
	return e
}
