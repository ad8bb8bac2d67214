package tiktok

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RidhwanDev/uptime/pkg/config"
	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

func testConfig(base string) *config.Config {
	return &config.Config{
		TikTokClientKey:    "key123",
		TikTokClientSecret: "shh",
		TikTokRedirectURL:  "http://localhost:8080/auth/tiktok/callback",
		TikTokAuthURL:      base,
		TikTokAPIBaseURL:   base,
	}
}

func TestAuthCodeURL(t *testing.T) {
	o := NewOAuth(testConfig("https://www.tiktok.com"), nil)
	session, err := NewAuthSession()
	require.NoError(t, err)
	require.NotEmpty(t, session.State)
	require.NotEmpty(t, session.Verifier)

	u, err := url.Parse(o.AuthCodeURL(session))
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "/v2/auth/authorize/", u.Path)
	assert.Equal(t, "key123", q.Get("client_key"))
	assert.Equal(t, session.State, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "user.info.basic,user.info.profile,video.list", q.Get("scope"))
}

func TestExchange(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/oauth/token/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"act.1","refresh_token":"rft.1","token_type":"Bearer","expires_in":86400,"open_id":"open-42"}`))
	}))
	defer srv.Close()

	o := NewOAuth(testConfig(srv.URL), srv.Client())
	session := AuthSession{State: "st", Verifier: "verifier-verifier-verifier-verifier-verifier"}

	t.Run("state mismatch", func(t *testing.T) {
		_, err := o.Exchange(context.Background(), session, "other", "code")
		assert.ErrorIs(t, err, domain.ErrStateMismatch)
	})

	t.Run("success", func(t *testing.T) {
		token, err := o.Exchange(context.Background(), session, "st", "the-code")
		require.NoError(t, err)
		assert.Equal(t, "act.1", token.AccessToken)
		assert.Equal(t, "open-42", OpenID(token))
		assert.Equal(t, "the-code", form.Get("code"))
		assert.Equal(t, "key123", form.Get("client_key"))
		assert.Equal(t, session.Verifier, form.Get("code_verifier"))
	})
}

func TestFetchUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer act.1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":"access_token_invalid","message":"bad token"}}`))
			return
		}
		assert.Equal(t, userInfoFields, r.URL.Query().Get("fields"))
		w.Write([]byte(`{"data":{"user":{"open_id":"open-42","display_name":"Ridz","username":"ridz","avatar_url":"https://img/a.png"}},"error":{"code":"ok","message":""}}`))
	}))
	defer srv.Close()

	o := NewOAuth(testConfig(srv.URL), srv.Client())

	user, err := o.FetchUserInfo(context.Background(), "act.1")
	require.NoError(t, err)
	assert.Equal(t, "open-42", user.OpenID)
	assert.Equal(t, "ridz", user.Username)

	_, err = o.FetchUserInfo(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad token")
}

// videoServer serves total videos in pages, failing every page from failFrom on (0 disables).
func videoServer(t *testing.T, total, failFrom int) *httptest.Server {
	t.Helper()
	page := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		if failFrom > 0 && page >= failFrom {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":"internal_error","message":"boom"}}`))
			return
		}
		var req videoListRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Bearer act.1", r.Header.Get("Authorization"))

		start := int(req.Cursor)
		end := min(start+req.MaxCount, total)
		var resp videoListResponse
		for i := start; i < end; i++ {
			v := int64(i * 10)
			resp.Data.Videos = append(resp.Data.Videos, domain.Post{ID: "v" + string(rune('a'+i%26)), CreateTime: int64(1_700_000_000 + i), ViewCount: &v})
		}
		resp.Data.Cursor = int64(end)
		resp.Data.HasMore = end < total
		resp.Error = &apiError{Code: "ok"}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestFetchAllVideos(t *testing.T) {
	t.Run("pages until has_more is false", func(t *testing.T) {
		srv := videoServer(t, 45, 0)
		defer srv.Close()

		videos, err := NewClient(srv.URL, srv.Client()).FetchAllVideos(context.Background(), "act.1", 100)
		require.NoError(t, err)
		assert.Len(t, videos, 45)
	})

	t.Run("stops at max videos", func(t *testing.T) {
		srv := videoServer(t, 100, 0)
		defer srv.Close()

		videos, err := NewClient(srv.URL, srv.Client()).FetchAllVideos(context.Background(), "act.1", 30)
		require.NoError(t, err)
		assert.Len(t, videos, 30)
	})

	t.Run("first page failure is an error", func(t *testing.T) {
		srv := videoServer(t, 10, 1)
		defer srv.Close()

		_, err := NewClient(srv.URL, srv.Client()).FetchAllVideos(context.Background(), "act.1", 100)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("later page failure keeps what was fetched", func(t *testing.T) {
		srv := videoServer(t, 60, 2)
		defer srv.Close()

		videos, err := NewClient(srv.URL, srv.Client()).FetchAllVideos(context.Background(), "act.1", 100)
		require.NoError(t, err)
		assert.Len(t, videos, 20)
	})
}

// tokenServer rejects every bearer token except "good" with a 401.
func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":"access_token_invalid","message":"expired"}}`))
			return
		}
		w.Write([]byte(`{"data":{"videos":[{"id":"v1","create_time":1700000000}],"has_more":false},"error":{"code":"ok"}}`))
	}))
}

func TestFetchAllVideosRejectedTokens(t *testing.T) {
	t.Run("rejected token reads as missing token", func(t *testing.T) {
		srv := tokenServer(t)
		defer srv.Close()

		_, err := NewClient(srv.URL, srv.Client()).FetchAllVideos(context.Background(), "expired", 100)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNoToken)

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusUnauthorized, upstream.Status)
		assert.Equal(t, "access_token_invalid", upstream.Code)
	})

	t.Run("other users keep fetching", func(t *testing.T) {
		srv := tokenServer(t)
		defer srv.Close()

		client := NewClient(srv.URL, srv.Client())
		for i := 0; i < 8; i++ {
			_, err := client.FetchAllVideos(context.Background(), "expired", 100)
			require.Error(t, err)
		}
		videos, err := client.FetchAllVideos(context.Background(), "good", 100)
		require.NoError(t, err)
		assert.Len(t, videos, 1)
	})

	t.Run("server errors still open the breaker", func(t *testing.T) {
		srv := videoServer(t, 10, 1)
		defer srv.Close()

		client := NewClient(srv.URL, srv.Client())
		for i := 0; i < 5; i++ {
			_, err := client.FetchAllVideos(context.Background(), "act.1", 100)
			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrNoToken)
		}
		_, err := client.FetchAllVideos(context.Background(), "act.1", 100)
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	})
}

func TestFetchVideosEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"videos":null,"cursor":0,"has_more":false},"error":{"code":"ok"}}`))
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL, srv.Client()).FetchVideos(context.Background(), "act.1", 0, 20)
	require.NoError(t, err)
	assert.NotNil(t, page.Videos)
	assert.Empty(t, page.Videos)
	assert.False(t, page.HasMore)
}

func TestAwaitCallback(t *testing.T) {
	session := AuthSession{State: "st"}

	t.Run("returns the code", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		redirect := LoopbackRedirect(ln)

		go func() {
			time.Sleep(20 * time.Millisecond)
			resp, err := http.Get(redirect + "?state=st&code=abc")
			if err == nil {
				resp.Body.Close()
			}
		}()

		code, err := AwaitCallback(context.Background(), ln, session, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "abc", code)
	})

	t.Run("rejects a foreign state", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		redirect := LoopbackRedirect(ln)

		go func() {
			time.Sleep(20 * time.Millisecond)
			resp, err := http.Get(redirect + "?state=evil&code=abc")
			if err == nil {
				resp.Body.Close()
			}
		}()

		_, err = AwaitCallback(context.Background(), ln, session, 2*time.Second)
		assert.ErrorIs(t, err, domain.ErrStateMismatch)
	})

	t.Run("times out", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		_, err = AwaitCallback(context.Background(), ln, session, 50*time.Millisecond)
		assert.ErrorIs(t, err, domain.ErrCallbackTimeout)
	})
}

func TestLoopbackRedirect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	assert.True(t, strings.HasPrefix(LoopbackRedirect(ln), "http://127.0.0.1:"))
}
