package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

const (
	topVideoCount       = 5
	bestTimeSlotCount   = 5
	minSlotSamples      = 2
	minInsightPosts     = 5
	minCorrelationGroup = 2
	maxRecommendations  = 4
	defaultBestHour     = 12
	ratioFloor          = 0.01

	recStartPosting = "Start posting to see what works for you."
	recPostMore     = "Post more videos to unlock personalized insights."
)

// ComputeInsights analyses posts that have both a creation time and a view
// count. Hours are bucketed in loc (UTC when nil).
func ComputeInsights(posts []domain.Post, loc *time.Location) domain.InsightsData {
	loc = orUTC(loc)

	enriched := make([]domain.EnrichedPost, 0, len(posts))
	for _, p := range posts {
		if !p.HasCreateTime() || p.ViewCount == nil {
			continue
		}
		enriched = append(enriched, Enrich(p, loc))
	}
	if len(enriched) == 0 {
		return emptyInsights()
	}

	ranked := rankByViews(enriched)
	top := make([]domain.EnrichedPost, min(topVideoCount, len(ranked)))
	copy(top, ranked)

	var views, likes, comments, shares int64
	var engagement float64
	for _, v := range enriched {
		views += v.Views()
		likes += v.Likes()
		comments += v.Comments()
		shares += v.Shares()
		engagement += v.EngagementRate
	}
	n := float64(len(enriched))
	avgViews := roundInt(float64(views) / n)

	bestTimes := bestPostingTimes(enriched)
	bestDay := bestDayOfWeek(enriched)

	bestHour := defaultBestHour
	if len(bestTimes) > 0 {
		bestHour = bestTimes[0].Hour
	}

	correlations := engagementCorrelations(enriched, avgViews)

	return domain.InsightsData{
		TopVideos:              top,
		AllVideos:              ranked,
		BestPostingTimes:       bestTimes,
		EngagementCorrelations: correlations,
		Recommendations:        recommendations(len(enriched), top, bestTimes, bestDay, correlations, loc),
		AverageViews:           avgViews,
		AverageLikes:           roundInt(float64(likes) / n),
		AverageComments:        roundInt(float64(comments) / n),
		AverageShares:          roundInt(float64(shares) / n),
		AverageEngagementRate:  engagement / n,
		TotalVideos:            len(enriched),
		BestDay:                bestDay,
		BestDayOfWeek:          DayName(bestDay),
		BestHour:               bestHour,
		BestHourRange:          fmt.Sprintf("%s - %s", HourLabel(bestHour), HourLabel((bestHour+2)%24)),
	}
}

func emptyInsights() domain.InsightsData {
	return domain.InsightsData{
		TopVideos:              []domain.EnrichedPost{},
		AllVideos:              []domain.EnrichedPost{},
		BestPostingTimes:       []domain.TimeSlotPerformance{},
		EngagementCorrelations: []domain.EngagementCorrelation{},
		Recommendations:        []string{recStartPosting},
		BestDay:                -1,
		BestDayOfWeek:          placeholder,
		BestHour:               defaultBestHour,
		BestHourRange:          placeholder,
	}
}

// rankByViews returns a copy sorted by views descending with 1-based ranks.
// Ties keep input order.
func rankByViews(posts []domain.EnrichedPost) []domain.EnrichedPost {
	ranked := make([]domain.EnrichedPost, len(posts))
	copy(ranked, posts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Views() > ranked[j].Views()
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func bestPostingTimes(posts []domain.EnrichedPost) []domain.TimeSlotPerformance {
	type bucket struct {
		views      int64
		engagement float64
		count      int
	}
	buckets := make(map[int]*bucket)
	var order []int
	for _, p := range posts {
		b, ok := buckets[p.PostingHour]
		if !ok {
			b = &bucket{}
			buckets[p.PostingHour] = b
			order = append(order, p.PostingHour)
		}
		b.views += p.Views()
		b.engagement += p.EngagementRate
		b.count++
	}

	slots := make([]domain.TimeSlotPerformance, 0, len(order))
	for _, hour := range order {
		b := buckets[hour]
		if b.count < minSlotSamples {
			continue
		}
		slots = append(slots, domain.TimeSlotPerformance{
			Hour:          hour,
			Label:         HourLabel(hour),
			AvgViews:      roundInt(float64(b.views) / float64(b.count)),
			AvgEngagement: b.engagement / float64(b.count),
			VideoCount:    b.count,
		})
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].AvgViews > slots[j].AvgViews
	})
	if len(slots) > bestTimeSlotCount {
		slots = slots[:bestTimeSlotCount]
	}
	return slots
}

// bestDayOfWeek picks the weekday with the highest mean views, or -1 when
// posts is empty. Earlier weekdays win ties.
func bestDayOfWeek(posts []domain.EnrichedPost) int {
	var sums [7]int64
	var counts [7]int
	for _, p := range posts {
		sums[p.PostingDay] += p.Views()
		counts[p.PostingDay]++
	}

	best, bestAvg := -1, 0.0
	for day := range sums {
		if counts[day] == 0 {
			continue
		}
		avg := float64(sums[day]) / float64(counts[day])
		if best == -1 || avg > bestAvg {
			best, bestAvg = day, avg
		}
	}
	return best
}

func engagementCorrelations(posts []domain.EnrichedPost, avgViews int64) []domain.EngagementCorrelation {
	correlations := []domain.EngagementCorrelation{}
	if len(posts) < minInsightPosts {
		return correlations
	}

	var high, low []domain.EnrichedPost
	for _, p := range posts {
		if p.Views() > avgViews {
			high = append(high, p)
		} else {
			low = append(low, p)
		}
	}
	if len(high) < minCorrelationGroup || len(low) < minCorrelationGroup {
		return correlations
	}

	likesPerView := func(p domain.EnrichedPost) float64 { return p.LikesPerView }
	commentsPerView := func(p domain.EnrichedPost) float64 { return p.CommentsPerView }
	sharesPerView := func(p domain.EnrichedPost) float64 { return p.SharesPerView }

	likesDiff := percentDiff(mean(high, likesPerView), mean(low, likesPerView))
	switch {
	case likesDiff > 20:
		correlations = append(correlations, domain.EngagementCorrelation{
			Metric:      domain.MetricLikes,
			Correlation: domain.CorrelationPositive,
			Insight: fmt.Sprintf("Your top videos get %d%% more likes per view. High like rates signal content people love.",
				roundInt(likesDiff)),
		})
	case likesDiff > 5:
		correlations = append(correlations, domain.EngagementCorrelation{
			Metric:      domain.MetricLikes,
			Correlation: domain.CorrelationNeutral,
			Insight:     "Like rates are similar across your videos. Focus on hooks and watch time instead.",
		})
	}

	commentsDiff := percentDiff(mean(high, commentsPerView), mean(low, commentsPerView))
	if commentsDiff > 30 {
		correlations = append(correlations, domain.EngagementCorrelation{
			Metric:      domain.MetricComments,
			Correlation: domain.CorrelationPositive,
			Insight:     "Videos with more comments tend to perform better for you. Try ending with a question or hot take.",
		})
	} else {
		correlations = append(correlations, domain.EngagementCorrelation{
			Metric:      domain.MetricComments,
			Correlation: domain.CorrelationWeak,
			Insight:     "Comments don't strongly predict your view count. Focus on the first 3 seconds instead.",
		})
	}

	sharesDiff := percentDiff(mean(high, sharesPerView), mean(low, sharesPerView))
	if sharesDiff > 50 {
		correlations = append(correlations, domain.EngagementCorrelation{
			Metric:      domain.MetricShares,
			Correlation: domain.CorrelationPositive,
			Insight: fmt.Sprintf("Shares are a strong signal for you: top videos get %d%% more shares. Make content people want to send to friends.",
				roundInt(sharesDiff)),
		})
	}

	return correlations
}

func recommendations(
	total int,
	top []domain.EnrichedPost,
	bestTimes []domain.TimeSlotPerformance,
	bestDay int,
	correlations []domain.EngagementCorrelation,
	loc *time.Location,
) []string {
	if total < minInsightPosts {
		return []string{recPostMore}
	}

	var recs []string
	if len(bestTimes) > 0 {
		recs = append(recs, fmt.Sprintf("Your best performing time is around %s. Videos posted then average %s views.",
			bestTimes[0].Label, FormatNumber(bestTimes[0].AvgViews)))
	}

	recs = append(recs, fmt.Sprintf("%s is your strongest day. Consider batching content for this day.", DayName(bestDay)))

	if len(top) > 0 {
		best := top[0]
		postedAt := time.Unix(best.CreateTime, 0).In(loc)
		recs = append(recs, fmt.Sprintf("Your best video was posted on %s at %s. What made that timing work?",
			DayName(best.PostingDay), formatClock(postedAt)))
	}

	if hasPositive(correlations, domain.MetricShares) {
		recs = append(recs, "Make shareable content, it's your superpower. Think: relatable, surprising, or useful.")
	}
	if hasPositive(correlations, domain.MetricComments) {
		recs = append(recs, "Your audience wants to talk. End videos with questions or controversial takes.")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func hasPositive(correlations []domain.EngagementCorrelation, metric domain.CorrelationMetric) bool {
	for _, c := range correlations {
		if c.Metric == metric && c.Correlation == domain.CorrelationPositive {
			return true
		}
	}
	return false
}

func mean(posts []domain.EnrichedPost, field func(domain.EnrichedPost) float64) float64 {
	if len(posts) == 0 {
		return 0
	}
	var sum float64
	for _, p := range posts {
		sum += field(p)
	}
	return sum / float64(len(posts))
}

// percentDiff is (high-low)/low*100 with low floored at ratioFloor.
func percentDiff(high, low float64) float64 {
	return (high - low) / math.Max(low, ratioFloor) * 100
}

func roundInt(v float64) int64 {
	return int64(math.Round(v))
}
