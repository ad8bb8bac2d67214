package tiktok

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
	"github.com/RidhwanDev/uptime/pkg/logging"
	"github.com/RidhwanDev/uptime/pkg/metrics"
)

const (
	videoListPath   = "/v2/video/list/"
	videoListFields = "id,create_time,cover_image_url,title,video_description,share_url,view_count,like_count,comment_count,share_count"

	pageSize         = 20
	DefaultMaxVideos = 100
	pageDelay        = 100 * time.Millisecond
)

// VideoPage is one page of the video list.
type VideoPage struct {
	Videos  []domain.Post
	Cursor  int64
	HasMore bool
}

type videoListRequest struct {
	MaxCount int   `json:"max_count"`
	Cursor   int64 `json:"cursor,omitempty"`
}

type videoListResponse struct {
	Data struct {
		Videos  []domain.Post `json:"videos"`
		Cursor  int64         `json:"cursor"`
		HasMore bool          `json:"has_more"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

// UpstreamError is a non-success answer from the video list endpoint.
type UpstreamError struct {
	Status  int
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("video list: status %d: %s", e.Status, e.Message)
}

// Unwrap reports rejected tokens as domain.ErrNoToken so callers can ask the
// user to log in again.
func (e *UpstreamError) Unwrap() error {
	if e.authFailure() {
		return domain.ErrNoToken
	}
	return nil
}

func (e *UpstreamError) authFailure() bool {
	switch e.Code {
	case "access_token_invalid", "scope_not_authorized":
		return true
	}
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// breakerSuccess keeps per-user rejections out of the shared failure count.
// Transport errors, 5xx answers and unreadable 200 bodies count as failures.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Status < http.StatusInternalServerError
	}
	return errors.Is(err, context.Canceled)
}

// Client reads a creator's videos from the TikTok display API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*VideoPage]
	log        zerolog.Logger
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	log := logging.WithComponent("tiktok")
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(pageDelay), 1),
		breaker: gobreaker.NewCircuitBreaker[*VideoPage](gobreaker.Settings{
			Name:         "tiktok-video-list",
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			IsSuccessful: breakerSuccess,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			},
		}),
		log: log,
	}
}

// FetchVideos requests a single page starting at cursor (0 for the first page).
func (c *Client) FetchVideos(ctx context.Context, accessToken string, cursor int64, maxCount int) (*VideoPage, error) {
	return c.breaker.Execute(func() (*VideoPage, error) {
		return c.fetchPage(ctx, accessToken, cursor, maxCount)
	})
}

func (c *Client) fetchPage(ctx context.Context, accessToken string, cursor int64, maxCount int) (*VideoPage, error) {
	payload, err := json.Marshal(videoListRequest{MaxCount: maxCount, Cursor: cursor})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+videoListPath+"?fields="+videoListFields, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := bearerClient(ctx, c.httpClient, accessToken).Do(req)
	if err != nil {
		return nil, fmt.Errorf("video list request: %w", err)
	}
	defer resp.Body.Close()

	var body videoListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &UpstreamError{Status: resp.StatusCode, Message: "invalid body"}
		}
		return nil, fmt.Errorf("video list: status %d: invalid body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || body.Error.failed() {
		upstream := &UpstreamError{Status: resp.StatusCode, Message: errorMessage(body.Error)}
		if body.Error != nil {
			upstream.Code = body.Error.Code
		}
		return nil, upstream
	}
	videos := body.Data.Videos
	if videos == nil {
		videos = []domain.Post{}
	}
	return &VideoPage{Videos: videos, Cursor: body.Data.Cursor, HasMore: body.Data.HasMore}, nil
}

// FetchAllVideos pages through the list until maxVideos are collected or the
// API reports no more. A failure on the first page is returned; a failure on a
// later page ends pagination and the videos collected so far are returned.
func (c *Client) FetchAllVideos(ctx context.Context, accessToken string, maxVideos int) ([]domain.Post, error) {
	if maxVideos <= 0 {
		maxVideos = DefaultMaxVideos
	}
	start := time.Now()
	defer func() { metrics.VideoFetchDuration.Observe(time.Since(start).Seconds()) }()

	var (
		all    = make([]domain.Post, 0, min(maxVideos, pageSize))
		cursor int64
	)
	for len(all) < maxVideos {
		if err := c.limiter.Wait(ctx); err != nil {
			if len(all) == 0 {
				return nil, err
			}
			break
		}
		page, err := c.FetchVideos(ctx, accessToken, cursor, min(pageSize, maxVideos-len(all)))
		if err != nil {
			if len(all) == 0 {
				return nil, err
			}
			logging.Ctx(ctx).Warn().Err(err).Int("collected", len(all)).Msg("video pagination stopped early")
			break
		}
		all = append(all, page.Videos...)
		if !page.HasMore || len(page.Videos) == 0 {
			break
		}
		cursor = page.Cursor
	}
	if len(all) > maxVideos {
		all = all[:maxVideos]
	}
	metrics.VideosFetched.Add(float64(len(all)))
	return all, nil
}
