package domain

type CorrelationMetric string

const (
	MetricLikes    CorrelationMetric = "likes"
	MetricComments CorrelationMetric = "comments"
	MetricShares   CorrelationMetric = "shares"
)

type CorrelationStrength string

const (
	CorrelationPositive CorrelationStrength = "positive"
	CorrelationNeutral  CorrelationStrength = "neutral"
	CorrelationWeak     CorrelationStrength = "weak"
)

// TimeSlotPerformance aggregates posts published in the same local hour.
type TimeSlotPerformance struct {
	Hour          int     `json:"hour"`
	Label         string  `json:"label"`
	AvgViews      int64   `json:"avg_views"`
	AvgEngagement float64 `json:"avg_engagement"`
	VideoCount    int     `json:"video_count"`
}

type EngagementCorrelation struct {
	Metric      CorrelationMetric   `json:"metric"`
	Correlation CorrelationStrength `json:"correlation"`
	Insight     string              `json:"insight"`
}

// InsightsData is the aggregate performance analysis of a creator's posts.
type InsightsData struct {
	TopVideos              []EnrichedPost          `json:"top_videos"`
	AllVideos              []EnrichedPost          `json:"all_videos"`
	BestPostingTimes       []TimeSlotPerformance   `json:"best_posting_times"`
	EngagementCorrelations []EngagementCorrelation `json:"engagement_correlations"`
	Recommendations        []string                `json:"recommendations"`
	AverageViews           int64                   `json:"average_views"`
	AverageLikes           int64                   `json:"average_likes"`
	AverageComments        int64                   `json:"average_comments"`
	AverageShares          int64                   `json:"average_shares"`
	AverageEngagementRate  float64                 `json:"average_engagement_rate"`
	TotalVideos            int                     `json:"total_videos"`
	BestDay                int                     `json:"best_day"` // -1 when there are no posts
	BestDayOfWeek          string                  `json:"best_day_of_week"`
	BestHour               int                     `json:"best_hour"`
	BestHourRange          string                  `json:"best_hour_range"`
}

type Verdict string

const (
	VerdictTopPerformer         Verdict = "top_performer"
	VerdictAboveAverage         Verdict = "above_average"
	VerdictUnderperformer       Verdict = "underperformer"
	VerdictSlightlyBelowAverage Verdict = "slightly_below_average"
	VerdictAverage              Verdict = "average"
)

// PostInsight is the breakdown of a single post against the creator's averages.
type PostInsight struct {
	Verdict         Verdict  `json:"verdict"`
	Observations    []string `json:"observations"`
	ViewsDelta      float64  `json:"views_delta"`
	LikesDelta      float64  `json:"likes_delta"`
	CommentsDelta   float64  `json:"comments_delta"`
	SharesDelta     float64  `json:"shares_delta"`
	EngagementDelta float64  `json:"engagement_delta"`
}
