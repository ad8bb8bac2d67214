package stats

import "github.com/RidhwanDev/uptime/pkg/core/domain"

type achievementRule struct {
	id, label, icon string
	unlocked        func(domain.UserStats, domain.UserRank) bool
}

var achievementCatalogue = []achievementRule{
	{"first_streak", "First Streak", "flame", func(s domain.UserStats, _ domain.UserRank) bool { return s.LongestStreak >= 2 }},
	{"streak_7", "7 Day Streak", "calendar", func(s domain.UserStats, _ domain.UserRank) bool { return s.LongestStreak >= 7 }},
	{"top_10", "Top 10", "trophy", func(_ domain.UserStats, r domain.UserRank) bool {
		return r.RankByStreak > 0 && r.RankByStreak <= 10
	}},
	{"streak_30", "30 Day Streak", "star", func(s domain.UserStats, _ domain.UserRank) bool { return s.LongestStreak >= 30 }},
	{"posts_100", "100 Posts", "rocket", func(s domain.UserStats, _ domain.UserRank) bool { return s.TotalPosts >= 100 }},
	{"rank_1", "#1 Weekly", "medal", func(_ domain.UserStats, r domain.UserRank) bool { return r.RankByStreak == 1 }},
}

// EvaluateAchievements returns the full badge catalogue with unlock state.
// A zero rank means the user is not on the leaderboard.
func EvaluateAchievements(stats domain.UserStats, rank domain.UserRank) []domain.Achievement {
	out := make([]domain.Achievement, 0, len(achievementCatalogue))
	for _, rule := range achievementCatalogue {
		out = append(out, domain.Achievement{
			ID:       rule.id,
			Label:    rule.label,
			Icon:     rule.icon,
			Unlocked: rule.unlocked(stats, rank),
		})
	}
	return out
}
