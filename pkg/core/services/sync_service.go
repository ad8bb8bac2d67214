package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
	"github.com/RidhwanDev/uptime/pkg/core/stats"
	"github.com/RidhwanDev/uptime/pkg/logging"
	"github.com/RidhwanDev/uptime/pkg/metrics"
	"github.com/RidhwanDev/uptime/pkg/ports"
)

type SyncService struct {
	repo     ports.StatsRepository
	videos   ports.VideoSource
	settings Settings
}

func NewSyncService(repo ports.StatsRepository, videos ports.VideoSource, settings Settings) *SyncService {
	return &SyncService{repo: repo, videos: videos, settings: settings}
}

// FullSync mirrors the first post of each calendar day and refreshes the user's stats.
func (s *SyncService) FullSync(ctx context.Context, userID string, posts []domain.Post) (domain.SyncResult, error) {
	var result domain.SyncResult
	log := logging.Ctx(ctx).With().Str("user_id", userID).Logger()

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return result, err
	}
	loc := s.settings.location(user)

	seen := make(map[domain.CalendarDayKey]bool)
	for _, p := range posts {
		key, ok := stats.DayKey(p.CreateTime, loc)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true

		_, err := s.repo.InsertDailyPost(ctx, &domain.DailyPost{
			UserID:        userID,
			PostDate:      key,
			VideoID:       p.ID,
			CoverImageURL: p.CoverImageURL,
			VerifiedAt:    s.settings.now().UTC(),
		})
		if err != nil {
			log.Error().Err(err).Str("post_date", string(key)).Msg("failed to store daily post")
			result.Errors++
			continue
		}
		result.Synced++
	}

	if result.Errors > 0 && result.Synced == 0 {
		metrics.SyncRuns.WithLabelValues("failed").Inc()
		return result, fmt.Errorf("%w: %d errors", domain.ErrSyncFailed, result.Errors)
	}

	if _, err := s.RecalculateUserStats(ctx, userID); err != nil {
		metrics.SyncRuns.WithLabelValues("failed").Inc()
		return result, fmt.Errorf("recalculate stats: %w", err)
	}

	metrics.SyncRuns.WithLabelValues("ok").Inc()
	log.Info().Int("synced", result.Synced).Int("errors", result.Errors).Msg("daily posts synced")
	return result, nil
}

// RecalculateUserStats rebuilds user_stats from the stored post dates.
// The persisted uptime always uses a 30 day window.
func (s *SyncService) RecalculateUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dates, err := s.repo.ListPostDates(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountDailyPosts(ctx, userID)
	if err != nil {
		return nil, err
	}

	clock := s.settings.clock(user)
	uptime := stats.ComputeUptimeFromDates(domain.NewPostDateSet(dates...), stats.DefaultWindowDays, clock)
	metrics.StatsComputations.WithLabelValues("uptime").Inc()

	us := &domain.UserStats{
		UserID:        userID,
		CurrentStreak: uptime.CurrentStreak,
		LongestStreak: uptime.LongestStreak,
		Uptime30d:     uptime.UptimePercentage,
		DaysPosted30d: uptime.DaysPosted,
		TotalPosts:    total,
		LastSyncedAt:  clock.Now.UTC(),
	}
	if len(dates) > 0 {
		us.LastPostDate = dates[len(dates)-1]
	}

	if err := s.repo.SaveUserStats(ctx, us); err != nil {
		return nil, err
	}
	return us, nil
}

func (s *SyncService) Leaderboard(ctx context.Context, sortBy domain.LeaderboardSort, limit int) ([]domain.LeaderboardEntry, error) {
	if sortBy != domain.SortByUptime {
		sortBy = domain.SortByStreak
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	return s.repo.Leaderboard(ctx, sortBy, limit)
}

// UserRank returns zero ranks for a user that is not on the leaderboard yet.
func (s *SyncService) UserRank(ctx context.Context, userID string) (*domain.UserRank, error) {
	rank, err := s.repo.GetUserRank(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rank == nil {
		return &domain.UserRank{}, nil
	}
	return rank, nil
}

func (s *SyncService) UserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	us, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if us != nil {
		return us, nil
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return &domain.UserStats{UserID: userID}, nil
}

// DailyPosts returns the days with a post in the last days days, today included.
// days <= 0 returns every stored day.
func (s *SyncService) DailyPosts(ctx context.Context, userID string, days int) (domain.PostDateSet, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var since domain.CalendarDayKey
	if days > 0 {
		since = s.settings.clock(user).DaysAgo(days - 1)
	}
	dates, err := s.repo.ListPostDates(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return domain.NewPostDateSet(dates...), nil
}

func (s *SyncService) Achievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	us, err := s.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	rank, err := s.UserRank(ctx, userID)
	if err != nil {
		return nil, err
	}
	return stats.EvaluateAchievements(*us, *rank), nil
}

// ResyncOutcome is the result of resyncing one user.
type ResyncOutcome struct {
	UserID string
	Handle string
	Result domain.SyncResult
	Err    error
}

// ResyncAll fetches and syncs every user with a stored token, at most
// concurrency at a time. Per-user failures are reported, not returned.
func (s *SyncService) ResyncAll(ctx context.Context, concurrency int) ([]ResyncOutcome, error) {
	users, err := s.repo.ListUsersWithTokens(ctx)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	outcomes := make([]ResyncOutcome, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range users {
		g.Go(func() error {
			out := ResyncOutcome{UserID: u.ID, Handle: u.TikTokHandle}
			posts, err := s.videos.FetchAllVideos(gctx, u.AccessToken, s.settings.MaxVideos)
			if err != nil {
				out.Err = fmt.Errorf("fetch videos: %w", err)
			} else {
				out.Result, out.Err = s.FullSync(gctx, u.ID, posts)
			}
			if out.Err != nil {
				logging.Ctx(gctx).Warn().Err(out.Err).Str("user_id", u.ID).Msg("resync failed")
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

var _ ports.SyncService = (*SyncService)(nil)
