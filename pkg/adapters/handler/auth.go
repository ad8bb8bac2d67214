package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/RidhwanDev/uptime/pkg/adapters/tiktok"
	"github.com/RidhwanDev/uptime/pkg/config"
	"github.com/RidhwanDev/uptime/pkg/core/domain"
	"github.com/RidhwanDev/uptime/pkg/logging"
	"github.com/RidhwanDev/uptime/pkg/ports"
)

const (
	authCookie    = "auth_token"
	sessionCookie = "oauth_session"

	authTTL    = 7 * 24 * time.Hour
	sessionTTL = 10 * time.Minute
)

type AuthHandler struct {
	oauth        *tiktok.OAuth
	repo         ports.StatsRepository
	jwtSecret    []byte
	frontendURL  string
	isProduction bool
}

// sessionClaims carries the PKCE state between login and callback in a signed cookie.
type sessionClaims struct {
	State    string `json:"state"`
	Verifier string `json:"verifier"`
	jwt.RegisteredClaims
}

func NewAuthHandler(cfg *config.Config, oauth *tiktok.OAuth, repo ports.StatsRepository) *AuthHandler {
	return &AuthHandler{
		oauth:        oauth,
		repo:         repo,
		jwtSecret:    []byte(cfg.JWTSecret),
		frontendURL:  cfg.FrontendURL,
		isProduction: cfg.IsProduction(),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	session, err := tiktok.NewAuthSession()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed creating oauth session")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	expires := time.Now().Add(sessionTTL)
	signed, err := h.sign(&sessionClaims{
		State:            session.State,
		Verifier:         session.Verifier,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed signing oauth session")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.setCookie(w, sessionCookie, signed, expires)

	http.Redirect(w, r, h.oauth.AuthCodeURL(session), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.Ctx(ctx)

	if denied := r.FormValue("error"); denied != "" {
		log.Warn().Str("error", denied).Str("description", r.FormValue("error_description")).Msg("tiktok login denied")
		http.Redirect(w, r, h.frontendURL+"?error="+denied, http.StatusTemporaryRedirect)
		return
	}

	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		log.Warn().Err(err).Msg("callback without oauth session cookie")
		writeError(w, http.StatusBadRequest, "login session expired, please try again")
		return
	}
	claims := &sessionClaims{}
	if _, err := jwt.ParseWithClaims(cookie.Value, claims, h.keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		log.Warn().Err(err).Msg("invalid oauth session cookie")
		writeError(w, http.StatusBadRequest, "login session expired, please try again")
		return
	}
	h.clearCookie(w, sessionCookie)

	session := tiktok.AuthSession{State: claims.State, Verifier: claims.Verifier}
	token, err := h.oauth.Exchange(ctx, session, r.FormValue("state"), r.FormValue("code"))
	if errors.Is(err, domain.ErrStateMismatch) {
		log.Warn().Msg("callback state mismatch")
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("code exchange failed")
		writeError(w, http.StatusBadGateway, "code exchange failed")
		return
	}

	info, err := h.oauth.FetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("failed getting user info")
		writeError(w, http.StatusBadGateway, "failed getting user info")
		return
	}

	openID := tiktok.OpenID(token)
	if openID == "" {
		openID = info.OpenID
	}
	handle := info.Username
	if handle == "" {
		handle = info.DisplayName
	}
	user := &domain.User{
		TikTokUserID:   openID,
		TikTokHandle:   handle,
		DisplayName:    info.DisplayName,
		AvatarURL:      info.AvatarURL,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: token.Expiry,
		LastLoginAt:    time.Now(),
	}
	if err := h.repo.UpsertUser(ctx, user); err != nil {
		log.Error().Err(err).Msg("failed saving user")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	expires := time.Now().Add(authTTL)
	signed, err := h.sign(&jwt.RegisteredClaims{
		Subject:   user.ID,
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed signing JWT")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.setCookie(w, authCookie, signed, expires)

	log.Info().Str("user_id", user.ID).Str("handle", user.TikTokHandle).Msg("login successful")
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, authCookie)
	http.Redirect(w, r, h.frontendURL+"/login", http.StatusTemporaryRedirect)
}

func (h *AuthHandler) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}

func (h *AuthHandler) keyFunc(*jwt.Token) (interface{}, error) {
	return h.jwtSecret, nil
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	h.setCookie(w, name, "", time.Now().Add(-1*time.Hour))
}
