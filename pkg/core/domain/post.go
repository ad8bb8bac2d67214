package domain

// Post is a video as returned by the platform's video list API.
// Counters are optional; the API omits them when the scope is missing.
type Post struct {
	ID               string `json:"id"`
	CreateTime       int64  `json:"create_time"` // Unix timestamp in seconds
	CoverImageURL    string `json:"cover_image_url,omitempty"`
	Title            string `json:"title,omitempty"`
	VideoDescription string `json:"video_description,omitempty"`
	ShareURL         string `json:"share_url,omitempty"`
	ViewCount        *int64 `json:"view_count,omitempty"`
	LikeCount        *int64 `json:"like_count,omitempty"`
	CommentCount     *int64 `json:"comment_count,omitempty"`
	ShareCount       *int64 `json:"share_count,omitempty"`
}

func (p Post) Views() int64    { return deref(p.ViewCount) }
func (p Post) Likes() int64    { return deref(p.LikeCount) }
func (p Post) Comments() int64 { return deref(p.CommentCount) }
func (p Post) Shares() int64   { return deref(p.ShareCount) }

// HasCreateTime reports whether the post can be placed on a calendar.
func (p Post) HasCreateTime() bool { return p.CreateTime > 0 }

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// Count is a small helper for building posts with optional counters.
func Count(v int64) *int64 { return &v }

// EnrichedPost is a Post with derived per-post ratios.
type EnrichedPost struct {
	Post
	EngagementRate  float64 `json:"engagement_rate"`
	LikesPerView    float64 `json:"likes_per_view"`
	CommentsPerView float64 `json:"comments_per_view"`
	SharesPerView   float64 `json:"shares_per_view"`
	PostingHour     int     `json:"posting_hour"` // 0-23, local
	PostingDay      int     `json:"posting_day"`  // 0=Sunday..6=Saturday, local
	Rank            int     `json:"rank,omitempty"`
}
