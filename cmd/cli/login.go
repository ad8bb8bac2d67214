package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/RidhwanDev/uptime/pkg/adapters/tiktok"
	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

var (
	loginPort    int
	loginTimeout time.Duration
	loginSync    bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with TikTok through a local callback and store the account",
	Long:  "Starts a listener on localhost, prints the TikTok authorization URL and waits for the redirect. The redirect URL must be registered with the TikTok app.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", loginPort))
		if err != nil {
			return err
		}
		defer ln.Close()

		oauth := tiktok.NewOAuth(cfg, nil).WithRedirectURL(tiktok.LoopbackRedirect(ln))
		session, err := tiktok.NewAuthSession()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to log in:\n\n  %s\n\n", oauth.AuthCodeURL(session))

		code, err := tiktok.AwaitCallback(ctx, ln, session, loginTimeout)
		if err != nil {
			return err
		}
		token, err := oauth.Exchange(ctx, session, session.State, code)
		if err != nil {
			return err
		}
		info, err := oauth.FetchUserInfo(ctx, token.AccessToken)
		if err != nil {
			return err
		}

		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		openID := tiktok.OpenID(token)
		if openID == "" {
			openID = info.OpenID
		}
		user := &domain.User{
			TikTokUserID:   openID,
			TikTokHandle:   info.Username,
			DisplayName:    info.DisplayName,
			AvatarURL:      info.AvatarURL,
			AccessToken:    token.AccessToken,
			RefreshToken:   token.RefreshToken,
			TokenExpiresAt: token.Expiry,
			LastLoginAt:    time.Now(),
		}
		if err := repo.UpsertUser(ctx, user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as @%s (user id %s)\n", user.TikTokHandle, user.ID)

		if !loginSync {
			return nil
		}
		videos := tiktok.NewClient(cfg.TikTokAPIBaseURL, nil)
		posts, err := videos.FetchAllVideos(ctx, user.AccessToken, cfg.MaxVideos)
		if err != nil {
			return err
		}
		result, err := newSyncService(repo).FullSync(ctx, user.ID, posts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d days\n", result.Synced)
		return nil
	},
}

func init() {
	loginCmd.Flags().IntVar(&loginPort, "port", 8765, "Local callback port")
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for the callback")
	loginCmd.Flags().BoolVar(&loginSync, "sync", true, "Sync daily posts after login")
}
