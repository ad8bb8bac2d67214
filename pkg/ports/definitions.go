package ports

import (
	"context"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

// VideoSource fetches a creator's posts given a valid bearer token.
// Pagination happens behind the interface.
type VideoSource interface {
	FetchAllVideos(ctx context.Context, accessToken string, maxVideos int) ([]domain.Post, error)
}

// StatsRepository defines storage operations for users and their mirrored stats
type StatsRepository interface {
	// Users
	UpsertUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByTikTokID(ctx context.Context, tiktokUserID string) (*domain.User, error)
	UpdateTimezone(ctx context.Context, userID, timezone string) error
	ListUsersWithTokens(ctx context.Context) ([]domain.User, error)

	// Daily posts
	InsertDailyPost(ctx context.Context, post *domain.DailyPost) (bool, error) // false when the day already exists
	ListPostDates(ctx context.Context, userID string, since domain.CalendarDayKey) ([]domain.CalendarDayKey, error)
	CountDailyPosts(ctx context.Context, userID string) (int, error)
	DumpDailyPosts(ctx context.Context) ([]domain.DailyPost, error) // For export

	// Stats & leaderboard
	SaveUserStats(ctx context.Context, stats *domain.UserStats) error
	GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error)
	Leaderboard(ctx context.Context, sortBy domain.LeaderboardSort, limit int) ([]domain.LeaderboardEntry, error)
	GetUserRank(ctx context.Context, userID string) (*domain.UserRank, error)
}

// SyncService mirrors posts to the store and serves leaderboard data
type SyncService interface {
	FullSync(ctx context.Context, userID string, posts []domain.Post) (domain.SyncResult, error)
	RecalculateUserStats(ctx context.Context, userID string) (*domain.UserStats, error)
	Leaderboard(ctx context.Context, sortBy domain.LeaderboardSort, limit int) ([]domain.LeaderboardEntry, error)
	UserRank(ctx context.Context, userID string) (*domain.UserRank, error)
	UserStats(ctx context.Context, userID string) (*domain.UserStats, error)
	DailyPosts(ctx context.Context, userID string, days int) (domain.PostDateSet, error)
	Achievements(ctx context.Context, userID string) ([]domain.Achievement, error)
}

// DashboardService defines the read paths behind the app's screens
type DashboardService interface {
	Dashboard(ctx context.Context, userID string) (*domain.Dashboard, error)
	Insights(ctx context.Context, userID string) (*domain.InsightsData, error)
	PostInsight(ctx context.Context, userID, videoID string) (*domain.EnrichedPost, *domain.PostInsight, error)
	SyncNow(ctx context.Context, userID string) (domain.SyncResult, error)
	SetTimezone(ctx context.Context, userID, timezone string) error
}
