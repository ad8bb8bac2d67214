package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/RidhwanDev/uptime/pkg/core/domain"
	"github.com/RidhwanDev/uptime/pkg/ports"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driver := driverFor(dbURL)
	db, err := sql.Open(driver, dbURL)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// SQLite has a single writer.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// driverFor picks the remote libsql driver for Turso URLs and local sqlite otherwise.
func driverFor(dbURL string) string {
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") || strings.HasPrefix(dbURL, "https://") {
		return "libsql"
	}
	return "sqlite"
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		tiktok_user_id TEXT NOT NULL UNIQUE,
		tiktok_handle TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT '',
		access_token TEXT NOT NULL DEFAULT '',
		refresh_token TEXT NOT NULL DEFAULT '',
		token_expires_at TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		last_login_at TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS daily_posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		post_date TEXT NOT NULL,
		video_id TEXT NOT NULL,
		cover_image_url TEXT NOT NULL DEFAULT '',
		verified_at TEXT NOT NULL,
		UNIQUE(user_id, post_date),
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_daily_posts_user_date ON daily_posts(user_id, post_date);

	CREATE TABLE IF NOT EXISTS user_stats (
		user_id TEXT PRIMARY KEY,
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		uptime_30d INTEGER NOT NULL DEFAULT 0,
		days_posted_30d INTEGER NOT NULL DEFAULT 0,
		total_posts INTEGER NOT NULL DEFAULT 0,
		last_post_date TEXT NOT NULL DEFAULT '',
		last_synced_at TEXT NOT NULL DEFAULT '',
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE VIEW IF NOT EXISTS leaderboard AS
	SELECT
		u.id, u.tiktok_user_id, u.tiktok_handle, u.avatar_url,
		s.current_streak, s.longest_streak, s.uptime_30d, s.days_posted_30d,
		s.total_posts, s.last_post_date, s.last_synced_at,
		RANK() OVER (ORDER BY s.current_streak DESC) AS rank_by_streak,
		RANK() OVER (ORDER BY s.uptime_30d DESC) AS rank_by_uptime
	FROM user_stats s
	JOIN users u ON u.id = s.user_id;
	`
	_, err := db.Exec(query)
	return err
}

// Timestamps are stored as RFC3339 text so both drivers read them back the same way.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- Users ---

const userColumns = `id, tiktok_user_id, tiktok_handle, display_name, avatar_url, timezone,
	access_token, refresh_token, token_expires_at, created_at, updated_at, last_login_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		u                                 domain.User
		expiresAt, created, updated, last string
	)
	if err := row.Scan(&u.ID, &u.TikTokUserID, &u.TikTokHandle, &u.DisplayName, &u.AvatarURL, &u.Timezone,
		&u.AccessToken, &u.RefreshToken, &expiresAt, &created, &updated, &last); err != nil {
		return nil, err
	}
	u.TokenExpiresAt = parseTime(expiresAt)
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	u.LastLoginAt = parseTime(last)
	return &u, nil
}

// UpsertUser inserts the user or refreshes the profile and tokens of the row with the
// same TikTok id. user.ID is set to the stored id either way.
func (r *SQLiteRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tiktok_user_id) DO UPDATE SET
			tiktok_handle = excluded.tiktok_handle,
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expires_at = excluded.token_expires_at,
			updated_at = excluded.updated_at,
			last_login_at = excluded.last_login_at
		RETURNING id, created_at, timezone`

	var created string
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.TikTokUserID, user.TikTokHandle, user.DisplayName, user.AvatarURL, user.Timezone,
		user.AccessToken, user.RefreshToken, formatTime(user.TokenExpiresAt),
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt), formatTime(user.LastLoginAt),
	).Scan(&user.ID, &created, &user.Timezone)
	if err != nil {
		return err
	}
	user.CreatedAt = parseTime(created)
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

// GetUserByTikTokID returns nil, nil when nobody has logged in with that account.
func (r *SQLiteRepository) GetUserByTikTokID(ctx context.Context, tiktokUserID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE tiktok_user_id = ?`, tiktokUserID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *SQLiteRepository) UpdateTimezone(ctx context.Context, userID, timezone string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET timezone = ?, updated_at = ? WHERE id = ?`,
		timezone, formatTime(time.Now()), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListUsersWithTokens(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE access_token <> '' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// --- Daily posts ---

// InsertDailyPost stores the first post seen for a day. It reports false, with no
// error, when the user already has a row for that date.
func (r *SQLiteRepository) InsertDailyPost(ctx context.Context, post *domain.DailyPost) (bool, error) {
	if post.VerifiedAt.IsZero() {
		post.VerifiedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_posts (user_id, post_date, video_id, cover_image_url, verified_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, post_date) DO NOTHING`,
		post.UserID, string(post.PostDate), post.VideoID, post.CoverImageURL, formatTime(post.VerifiedAt))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if id, err := res.LastInsertId(); err == nil {
		post.ID = id
	}
	return true, nil
}

// ListPostDates returns the user's post dates on or after since, ascending.
// An empty since returns every date.
func (r *SQLiteRepository) ListPostDates(ctx context.Context, userID string, since domain.CalendarDayKey) ([]domain.CalendarDayKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT post_date FROM daily_posts WHERE user_id = ? AND post_date >= ? ORDER BY post_date`,
		userID, string(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := []domain.CalendarDayKey{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, domain.CalendarDayKey(d))
	}
	return dates, rows.Err()
}

func (r *SQLiteRepository) CountDailyPosts(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM daily_posts WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) DumpDailyPosts(ctx context.Context) ([]domain.DailyPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, post_date, video_id, cover_image_url, verified_at FROM daily_posts ORDER BY user_id, post_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.DailyPost{}
	for rows.Next() {
		var (
			p              domain.DailyPost
			date, verified string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &date, &p.VideoID, &p.CoverImageURL, &verified); err != nil {
			return nil, err
		}
		p.PostDate = domain.CalendarDayKey(date)
		p.VerifiedAt = parseTime(verified)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// --- Stats & leaderboard ---

func (r *SQLiteRepository) SaveUserStats(ctx context.Context, s *domain.UserStats) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, current_streak, longest_streak, uptime_30d, days_posted_30d, total_posts, last_post_date, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			uptime_30d = excluded.uptime_30d,
			days_posted_30d = excluded.days_posted_30d,
			total_posts = excluded.total_posts,
			last_post_date = excluded.last_post_date,
			last_synced_at = excluded.last_synced_at`,
		s.UserID, s.CurrentStreak, s.LongestStreak, s.Uptime30d, s.DaysPosted30d, s.TotalPosts,
		string(s.LastPostDate), formatTime(s.LastSyncedAt))
	return err
}

// GetUserStats returns nil, nil for a user that has never been synced.
func (r *SQLiteRepository) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	var (
		s              domain.UserStats
		lastPost, sync string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, current_streak, longest_streak, uptime_30d, days_posted_30d, total_posts, last_post_date, last_synced_at
		FROM user_stats WHERE user_id = ?`, userID).Scan(
		&s.UserID, &s.CurrentStreak, &s.LongestStreak, &s.Uptime30d, &s.DaysPosted30d, &s.TotalPosts, &lastPost, &sync)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.LastPostDate = domain.CalendarDayKey(lastPost)
	s.LastSyncedAt = parseTime(sync)
	return &s, nil
}

func (r *SQLiteRepository) Leaderboard(ctx context.Context, sortBy domain.LeaderboardSort, limit int) ([]domain.LeaderboardEntry, error) {
	order := "rank_by_streak, longest_streak DESC, tiktok_handle"
	if sortBy == domain.SortByUptime {
		order = "rank_by_uptime, current_streak DESC, tiktok_handle"
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tiktok_user_id, tiktok_handle, avatar_url, current_streak, longest_streak, uptime_30d,
			days_posted_30d, total_posts, last_post_date, last_synced_at, rank_by_streak, rank_by_uptime
		FROM leaderboard ORDER BY `+order+` LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		var (
			e              domain.LeaderboardEntry
			lastPost, sync string
		)
		if err := rows.Scan(&e.UserID, &e.TikTokUserID, &e.TikTokHandle, &e.AvatarURL, &e.CurrentStreak, &e.LongestStreak,
			&e.Uptime30d, &e.DaysPosted30d, &e.TotalPosts, &lastPost, &sync, &e.RankByStreak, &e.RankByUptime); err != nil {
			return nil, err
		}
		e.LastPostDate = domain.CalendarDayKey(lastPost)
		e.LastSyncedAt = parseTime(sync)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetUserRank returns nil, nil when the user is not on the leaderboard yet.
func (r *SQLiteRepository) GetUserRank(ctx context.Context, userID string) (*domain.UserRank, error) {
	var rank domain.UserRank
	err := r.db.QueryRowContext(ctx, `SELECT rank_by_streak, rank_by_uptime FROM leaderboard WHERE id = ?`, userID).
		Scan(&rank.RankByStreak, &rank.RankByUptime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rank, nil
}

// Ensure interface compliance
var _ ports.StatsRepository = (*SQLiteRepository)(nil)
