package tiktok

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/RidhwanDev/uptime/pkg/config"
	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

const (
	authorizePath = "/v2/auth/authorize/"
	tokenPath     = "/v2/oauth/token/"
	userInfoPath  = "/v2/user/info/"

	userInfoFields = "open_id,union_id,avatar_url,display_name,username,is_verified"
)

// TikTok expects a comma separated scope list, so it goes in as a single scope.
var scopes = []string{"user.info.basic,user.info.profile,video.list"}

// AuthSession is the per-login PKCE state. The caller keeps it between the
// redirect and the callback; nothing is stored in this package.
type AuthSession struct {
	State    string `json:"state"`
	Verifier string `json:"verifier"`
}

func NewAuthSession() (AuthSession, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return AuthSession{}, err
	}
	return AuthSession{
		State:    base64.RawURLEncoding.EncodeToString(b),
		Verifier: oauth2.GenerateVerifier(),
	}, nil
}

// OAuth drives the TikTok login flow. TikTok names the client id "client_key",
// so it is sent alongside the standard parameters.
type OAuth struct {
	config     *oauth2.Config
	clientKey  string
	apiBaseURL string
	httpClient *http.Client
}

func NewOAuth(cfg *config.Config, httpClient *http.Client) *OAuth {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	apiBase := strings.TrimRight(cfg.TikTokAPIBaseURL, "/")
	return &OAuth{
		config: &oauth2.Config{
			ClientID:     cfg.TikTokClientKey,
			ClientSecret: cfg.TikTokClientSecret,
			RedirectURL:  cfg.TikTokRedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   strings.TrimRight(cfg.TikTokAuthURL, "/") + authorizePath,
				TokenURL:  apiBase + tokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		clientKey:  cfg.TikTokClientKey,
		apiBaseURL: apiBase,
		httpClient: httpClient,
	}
}

// WithRedirectURL returns a copy that redirects to url, used by the CLI's loopback login.
func (o *OAuth) WithRedirectURL(url string) *OAuth {
	c := *o.config
	c.RedirectURL = url
	cp := *o
	cp.config = &c
	return &cp
}

func (o *OAuth) AuthCodeURL(session AuthSession) string {
	return o.config.AuthCodeURL(session.State,
		oauth2.SetAuthURLParam("client_key", o.clientKey),
		oauth2.S256ChallengeOption(session.Verifier),
	)
}

// Exchange trades the authorization code for a token after checking state.
func (o *OAuth) Exchange(ctx context.Context, session AuthSession, state, code string) (*oauth2.Token, error) {
	if state == "" || state != session.State {
		return nil, domain.ErrStateMismatch
	}
	if code == "" {
		return nil, fmt.Errorf("no authorization code received")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	token, err := o.config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("client_key", o.clientKey),
		oauth2.VerifierOption(session.Verifier),
	)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return token, nil
}

// OpenID returns the open_id TikTok includes in the token response.
func OpenID(token *oauth2.Token) string {
	if id, ok := token.Extra("open_id").(string); ok {
		return id
	}
	return ""
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

// failed reports whether TikTok flagged an error; success is code "ok".
func (e *apiError) failed() bool {
	return e != nil && e.Code != "" && e.Code != "ok"
}

type userInfoResponse struct {
	Data struct {
		User domain.TikTokUser `json:"user"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

func (o *OAuth) FetchUserInfo(ctx context.Context, accessToken string) (*domain.TikTokUser, error) {
	client := bearerClient(ctx, o.httpClient, accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.apiBaseURL+userInfoPath+"?fields="+userInfoFields, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	var body userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed decoding user info: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.Error.failed() {
		return nil, fmt.Errorf("user info: status %d: %s", resp.StatusCode, errorMessage(body.Error))
	}
	return &body.Data.User, nil
}

// bearerClient wraps base so every request carries the access token.
func bearerClient(ctx context.Context, base *http.Client, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
}

func errorMessage(e *apiError) string {
	if e == nil || e.Message == "" {
		return "unknown error"
	}
	return e.Message
}
