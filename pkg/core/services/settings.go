package services

import (
	"time"

	"github.com/RidhwanDev/uptime/pkg/config"
	"github.com/RidhwanDev/uptime/pkg/core/domain"
	"github.com/RidhwanDev/uptime/pkg/core/stats"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
	backgroundSyncTimeout   = 30 * time.Second
)

// Settings are the knobs shared by the services.
type Settings struct {
	WindowDays      int
	MaxVideos       int
	DefaultLocation *time.Location
	Now             func() time.Time // nil means time.Now
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		WindowDays:      cfg.UptimeWindowDays,
		MaxVideos:       cfg.MaxVideos,
		DefaultLocation: cfg.Location(),
	}
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Settings) windowDays() int {
	if s.WindowDays <= 0 {
		return stats.DefaultWindowDays
	}
	return s.WindowDays
}

// location resolves the user's timezone, falling back to the default when unset or unknown.
func (s Settings) location(user *domain.User) *time.Location {
	if user != nil && user.Timezone != "" {
		if loc, err := time.LoadLocation(user.Timezone); err == nil {
			return loc
		}
	}
	if s.DefaultLocation != nil {
		return s.DefaultLocation
	}
	return time.UTC
}

func (s Settings) clock(user *domain.User) stats.Clock {
	return stats.NewClock(s.now(), s.location(user))
}
