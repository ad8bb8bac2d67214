package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

func unlocked(achievements []domain.Achievement) []string {
	var ids []string
	for _, a := range achievements {
		if a.Unlocked {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestEvaluateAchievements(t *testing.T) {
	tests := []struct {
		name  string
		stats domain.UserStats
		rank  domain.UserRank
		want  []string
	}{
		{"new user", domain.UserStats{}, domain.UserRank{}, nil},
		{"short streak", domain.UserStats{LongestStreak: 3}, domain.UserRank{RankByStreak: 40}, []string{"first_streak"}},
		{"week streak in top ten", domain.UserStats{LongestStreak: 8}, domain.UserRank{RankByStreak: 4},
			[]string{"first_streak", "streak_7", "top_10"}},
		{"leader", domain.UserStats{LongestStreak: 31, TotalPosts: 120}, domain.UserRank{RankByStreak: 1},
			[]string{"first_streak", "streak_7", "top_10", "streak_30", "posts_100", "rank_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateAchievements(tt.stats, tt.rank)
			assert.Len(t, got, 6)
			assert.Equal(t, tt.want, unlocked(got))
		})
	}
}
