package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
	"github.com/RidhwanDev/uptime/pkg/core/stats"
	"github.com/RidhwanDev/uptime/pkg/logging"
	"github.com/RidhwanDev/uptime/pkg/metrics"
	"github.com/RidhwanDev/uptime/pkg/ports"
)

type DashboardService struct {
	repo     ports.StatsRepository
	videos   ports.VideoSource
	syncer   ports.SyncService
	settings Settings
	wg       sync.WaitGroup
}

func NewDashboardService(repo ports.StatsRepository, videos ports.VideoSource, syncer ports.SyncService, settings Settings) *DashboardService {
	return &DashboardService{repo: repo, videos: videos, syncer: syncer, settings: settings}
}

// Dashboard fetches the user's videos, computes streak and uptime, and mirrors
// the posts to the store in the background. A failing sync never fails the call.
func (s *DashboardService) Dashboard(ctx context.Context, userID string) (*domain.Dashboard, error) {
	user, posts, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	uptime := stats.ComputeUptimeStats(posts, s.settings.windowDays(), s.settings.clock(user))
	metrics.StatsComputations.WithLabelValues("uptime").Inc()

	s.syncInBackground(ctx, userID, posts)

	return &domain.Dashboard{User: user, Stats: uptime}, nil
}

func (s *DashboardService) Insights(ctx context.Context, userID string) (*domain.InsightsData, error) {
	user, posts, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	insights := stats.ComputeInsights(posts, s.settings.location(user))
	metrics.StatsComputations.WithLabelValues("insights").Inc()
	return &insights, nil
}

// PostInsight explains how one video did against the creator's own averages.
func (s *DashboardService) PostInsight(ctx context.Context, userID, videoID string) (*domain.EnrichedPost, *domain.PostInsight, error) {
	user, posts, err := s.load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	loc := s.settings.location(user)

	for _, p := range posts {
		if p.ID != videoID {
			continue
		}
		insights := stats.ComputeInsights(posts, loc)
		enriched := stats.Enrich(p, loc)
		for _, ranked := range insights.AllVideos {
			if ranked.ID == videoID {
				enriched.Rank = ranked.Rank
				break
			}
		}
		insight := stats.ComputePostInsight(enriched, insights)
		metrics.StatsComputations.WithLabelValues("post_insight").Inc()
		return &enriched, &insight, nil
	}
	return nil, nil, domain.ErrVideoNotFound
}

// SyncNow runs the daily post sync in the foreground.
func (s *DashboardService) SyncNow(ctx context.Context, userID string) (domain.SyncResult, error) {
	_, posts, err := s.load(ctx, userID)
	if err != nil {
		return domain.SyncResult{}, err
	}
	return s.syncer.FullSync(ctx, userID, posts)
}

func (s *DashboardService) SetTimezone(ctx context.Context, userID, timezone string) error {
	if timezone == "" {
		return domain.ErrInvalidTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTimezone, timezone)
	}
	if err := s.repo.UpdateTimezone(ctx, userID, timezone); err != nil {
		return err
	}
	// Stored days keep the bucket they were written in; only "today" moves.
	if _, err := s.syncer.RecalculateUserStats(ctx, userID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("recalculate after timezone change failed")
	}
	return nil
}

// Wait blocks until background syncs have finished.
func (s *DashboardService) Wait() {
	s.wg.Wait()
}

func (s *DashboardService) load(ctx context.Context, userID string) (*domain.User, []domain.Post, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user.AccessToken == "" {
		return nil, nil, domain.ErrNoToken
	}
	posts, err := s.videos.FetchAllVideos(ctx, user.AccessToken, s.settings.MaxVideos)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch videos: %w", err)
	}
	return user, posts, nil
}

func (s *DashboardService) syncInBackground(ctx context.Context, userID string, posts []domain.Post) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundSyncTimeout)
		defer cancel()

		if _, err := s.syncer.FullSync(ctx, userID, posts); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("background sync failed")
		}
	}()
}

var _ ports.DashboardService = (*DashboardService)(nil)
