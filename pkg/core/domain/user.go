package domain

import "time"

// User is a creator who connected their TikTok account.
type User struct {
	ID             string    `json:"id"`
	TikTokUserID   string    `json:"tiktok_user_id"`
	TikTokHandle   string    `json:"tiktok_handle"`
	DisplayName    string    `json:"display_name"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Timezone       string    `json:"timezone,omitempty"`
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	TokenExpiresAt time.Time `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastLoginAt    time.Time `json:"last_login_at"`
}

// TikTokUser is the subset of the user info endpoint we keep.
type TikTokUser struct {
	OpenID      string `json:"open_id"`
	UnionID     string `json:"union_id"`
	AvatarURL   string `json:"avatar_url"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	IsVerified  bool   `json:"is_verified"`
}

// DailyPost records that a user posted on a given day. One row per user per day.
type DailyPost struct {
	ID            int64          `json:"id"`
	UserID        string         `json:"user_id"`
	PostDate      CalendarDayKey `json:"post_date"`
	VideoID       string         `json:"video_id"`
	CoverImageURL string         `json:"cover_image_url,omitempty"`
	VerifiedAt    time.Time      `json:"verified_at"`
}

// UserStats is the persisted copy of a user's streak numbers.
type UserStats struct {
	UserID        string         `json:"user_id"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	Uptime30d     int            `json:"uptime_30d"`
	DaysPosted30d int            `json:"days_posted_30d"`
	TotalPosts    int            `json:"total_posts"`
	LastPostDate  CalendarDayKey `json:"last_post_date,omitempty"`
	LastSyncedAt  time.Time      `json:"last_synced_at"`
}

type LeaderboardEntry struct {
	UserID        string         `json:"id"`
	TikTokUserID  string         `json:"tiktok_user_id"`
	TikTokHandle  string         `json:"tiktok_handle"`
	AvatarURL     string         `json:"avatar_url,omitempty"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	Uptime30d     int            `json:"uptime_30d"`
	DaysPosted30d int            `json:"days_posted_30d"`
	TotalPosts    int            `json:"total_posts"`
	LastPostDate  CalendarDayKey `json:"last_post_date,omitempty"`
	LastSyncedAt  time.Time      `json:"last_synced_at"`
	RankByStreak  int            `json:"rank_by_streak"`
	RankByUptime  int            `json:"rank_by_uptime"`
}

type UserRank struct {
	RankByStreak int `json:"rank_by_streak"`
	RankByUptime int `json:"rank_by_uptime"`
}

type LeaderboardSort string

const (
	SortByStreak LeaderboardSort = "streak"
	SortByUptime LeaderboardSort = "uptime"
)

type Achievement struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Icon     string `json:"icon"`
	Unlocked bool   `json:"unlocked"`
}

// SyncResult reports how many days were mirrored.
type SyncResult struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
}

// Dashboard bundles what the home screen needs after a refresh.
type Dashboard struct {
	User  *User       `json:"user"`
	Stats UptimeStats `json:"stats"`
}
