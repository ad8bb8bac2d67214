package stats

import (
	"fmt"
	"math"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

// ComputePostInsight compares one post with the aggregate it was ranked in.
func ComputePostInsight(post domain.EnrichedPost, insights domain.InsightsData) domain.PostInsight {
	pi := domain.PostInsight{
		ViewsDelta:      deltaPercent(float64(post.Views()), float64(insights.AverageViews)),
		LikesDelta:      deltaPercent(float64(post.Likes()), float64(insights.AverageLikes)),
		CommentsDelta:   deltaPercent(float64(post.Comments()), float64(insights.AverageComments)),
		SharesDelta:     deltaPercent(float64(post.Shares()), float64(insights.AverageShares)),
		EngagementDelta: deltaPercent(post.EngagementRate, insights.AverageEngagementRate),
		Observations:    []string{},
	}
	observe := func(format string, args ...any) {
		pi.Observations = append(pi.Observations, fmt.Sprintf(format, args...))
	}

	views := pi.ViewsDelta
	switch {
	case views > 50:
		pi.Verdict = domain.VerdictTopPerformer
		observe("This is one of your top performers, %d%% above your average views.", roundInt(views))
	case views > 0:
		pi.Verdict = domain.VerdictAboveAverage
		observe("This video performed above your average by %d%%.", roundInt(views))
	case views < -30:
		pi.Verdict = domain.VerdictUnderperformer
		observe("This video got %d%% fewer views than your average. The hook or topic might not have landed.",
			roundInt(math.Abs(views)))
	case views < 0:
		pi.Verdict = domain.VerdictSlightlyBelowAverage
		observe("Slightly below your average by %d%%. Not bad, but room to improve.", roundInt(math.Abs(views)))
	default:
		pi.Verdict = domain.VerdictAverage
	}

	optimalHour := post.PostingHour == insights.BestHour
	optimalDay := insights.BestDay >= 0 && post.PostingDay == insights.BestDay
	switch {
	case optimalHour && optimalDay:
		observe("Posted at your optimal time (%s on %s). Timing was on point.",
			HourLabel(post.PostingHour), DayName(post.PostingDay))
	case !optimalHour && !optimalDay:
		observe("Consider posting at %s on %s. That's when your content typically performs best.",
			HourLabel(insights.BestHour), insights.BestDayOfWeek)
	case !optimalHour:
		observe("Your best time is around %s. This was posted at %s.",
			HourLabel(insights.BestHour), HourLabel(post.PostingHour))
	}

	switch {
	case pi.EngagementDelta > 30:
		observe("High engagement rate (%.1f%%). People are interacting with this content.", post.EngagementRate)
	case pi.EngagementDelta < -30:
		observe("Lower engagement than usual. Try adding a call-to-action or question next time.")
	}

	if pi.SharesDelta > 50 {
		observe("This video got shared a lot, %d%% more than average. Think about what made it shareable.",
			roundInt(pi.SharesDelta))
	}
	if pi.CommentsDelta > 50 {
		observe("Sparked conversation with %d%% more comments than usual. This topic resonated.",
			roundInt(pi.CommentsDelta))
	}

	return pi
}

// deltaPercent is how far value sits above avg in percent; 0 when avg is not positive.
func deltaPercent(value, avg float64) float64 {
	if avg <= 0 {
		return 0
	}
	return (value/avg - 1) * 100
}
