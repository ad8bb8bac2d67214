package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
	"github.com/RidhwanDev/uptime/pkg/core/stats"
)

var (
	statsFile     string
	statsWindow   int
	statsTimezone string
	statsInsights bool
)

type statsReport struct {
	Uptime   domain.UptimeStats   `json:"uptime"`
	Insights *domain.InsightsData `json:"insights,omitempty"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute streak, uptime and insights from a video list file",
	Long:  "Reads a JSON video list (as returned by the TikTok video list API) and prints the computed stats. No database or network access.",
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := readPosts(statsFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", statsFile, err)
		}

		tz := statsTimezone
		if tz == "" {
			tz = cfg.DefaultTimezone
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("%w: %s", domain.ErrInvalidTimezone, tz)
		}

		report := statsReport{Uptime: stats.ComputeUptimeStats(posts, statsWindow, stats.NewClock(time.Now(), loc))}
		if statsInsights {
			insights := stats.ComputeInsights(posts, loc)
			report.Insights = &insights
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsFile, "file", "f", "", "JSON file with videos")
	statsCmd.Flags().IntVar(&statsWindow, "window", stats.DefaultWindowDays, "Uptime window in days")
	statsCmd.Flags().StringVar(&statsTimezone, "tz", "", "IANA timezone for calendar days (default DEFAULT_TIMEZONE)")
	statsCmd.Flags().BoolVar(&statsInsights, "insights", false, "Include performance insights")
	_ = statsCmd.MarkFlagRequired("file")
}
