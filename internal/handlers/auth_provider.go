package handlers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/switch2connect/switch2connect/internal/friendcode"
	"github.com/switch2connect/switch2connect/internal/models"
	"github.com/switch2connect/switch2connect/internal/services"
)

const (
	oauthStateCookieName = "oauth_state"
	oauthNonceCookieName = "oauth_nonce"
	oauthCookieMaxAge    = 10 * 60 // 10 minutes
	oauthPendingTTL      = 10 * time.Minute
)

// ProviderAuthHandler runs the external sign-in flow. Callback either signs
// in a known identity or parks a pending record in Redis until the player
// completes their profile with a username and friend code.
type ProviderAuthHandler struct {
	providerAuth services.ProviderAuthServiceInterface
	authService  services.AuthServiceInterface
	emailService services.EmailServiceInterface
	redis        services.RedisClient
	providers    map[string]services.OAuthProvider
	secure       bool
}

func NewProviderAuthHandler(providerAuth services.ProviderAuthServiceInterface, authService services.AuthServiceInterface, emailService services.EmailServiceInterface, redis services.RedisClient, providers map[services.Provider]services.OAuthProvider, secure bool) *ProviderAuthHandler {
	normalized := make(map[string]services.OAuthProvider, len(providers))
	for key, provider := range providers {
		normalized[strings.ToLower(string(key))] = provider
	}

	return &ProviderAuthHandler{
		providerAuth: providerAuth,
		authService:  authService,
		emailService: emailService,
		redis:        redis,
		providers:    normalized,
		secure:       secure,
	}
}

func (h *ProviderAuthHandler) ProviderStart(w http.ResponseWriter, r *http.Request) {
	provider, _ := h.getProvider(r)
	if provider == nil {
		http.NotFound(w, r)
		return
	}

	state, err := generateSecureToken(32)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start provider auth")
		return
	}
	nonce, err := generateSecureToken(32)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start provider auth")
		return
	}

	h.setOAuthCookie(w, oauthStateCookieName, state)
	h.setOAuthCookie(w, oauthNonceCookieName, nonce)

	http.Redirect(w, r, provider.AuthCodeURL(state, nonce), http.StatusFound)
}

func (h *ProviderAuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	provider, providerKey := h.getProvider(r)
	if provider == nil {
		http.NotFound(w, r)
		return
	}

	if providerErr := r.URL.Query().Get("error"); providerErr != "" {
		h.redirectToLoginError(w, r, providerErr)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		h.redirectToLoginError(w, r, "oauth_missing")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || !secureCompare(stateCookie.Value, state) {
		h.redirectToLoginError(w, r, "oauth_invalid")
		return
	}

	nonceCookie, err := r.Cookie(oauthNonceCookieName)
	if err != nil || nonceCookie.Value == "" {
		h.redirectToLoginError(w, r, "oauth_invalid")
		return
	}

	claims, err := provider.ExchangeAndVerify(r.Context(), code, nonceCookie.Value)
	if err != nil {
		log.Printf("Provider exchange failed: %v", err)
		h.redirectToLoginError(w, r, "oauth_exchange")
		return
	}

	linkResult, err := h.providerAuth.LinkOrFindUserFromProvider(r.Context(), claims)
	if err != nil {
		if errors.Is(err, services.ErrProviderEmailUnverified) {
			h.redirectToLoginError(w, r, "oauth_unverified")
			return
		}
		log.Printf("Provider link failed: %v", err)
		h.redirectToLoginError(w, r, "oauth_link")
		return
	}

	h.clearOAuthCookie(w, oauthStateCookieName)
	h.clearOAuthCookie(w, oauthNonceCookieName)

	if linkResult.User != nil {
		token, err := h.authService.CreateSession(r.Context(), linkResult.User.ID)
		if err != nil {
			log.Printf("Provider session failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		setSessionCookie(w, token, h.secure)
		http.Redirect(w, r, "/#friends", http.StatusFound)
		return
	}

	if linkResult.Pending == nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	pendingToken, err := generateSecureToken(32)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start provider auth")
		return
	}

	payload, err := json.Marshal(linkResult.Pending)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start provider auth")
		return
	}

	pendingKey := providerPendingRedisKey(pendingToken)
	if err := h.redis.Set(r.Context(), pendingKey, string(payload), oauthPendingTTL); err != nil {
		log.Printf("Provider pending save failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setOAuthCookie(w, providerPendingCookieName(providerKey), pendingToken)
	http.Redirect(w, r, fmt.Sprintf("/#%s-complete", providerKey), http.StatusFound)
}

type providerCompleteRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	FriendCode  string `json:"friend_code"`
}

type providerCompleteResponse struct {
	User *models.User `json:"user"`
}

// ProviderComplete finishes sign-up for a pending external identity. The
// request supplies the profile fields the identity provider cannot.
func (h *ProviderAuthHandler) ProviderComplete(w http.ResponseWriter, r *http.Request) {
	provider, providerKey := h.getProvider(r)
	if provider == nil {
		http.NotFound(w, r)
		return
	}

	if GetUserFromContext(r.Context()) != nil {
		writeError(w, http.StatusBadRequest, "Already authenticated")
		return
	}

	pendingCookie, err := r.Cookie(providerPendingCookieName(providerKey))
	if err != nil || pendingCookie.Value == "" {
		writeError(w, http.StatusBadRequest, "Signup session expired. Please restart sign-in.")
		return
	}

	pendingKey := providerPendingRedisKey(pendingCookie.Value)
	pendingJSON, err := h.redis.Get(r.Context(), pendingKey)
	if err != nil || pendingJSON == "" {
		writeError(w, http.StatusBadRequest, "Signup session expired. Please restart sign-in.")
		return
	}

	var pending services.PendingProviderUser
	if err := json.Unmarshal([]byte(pendingJSON), &pending); err != nil {
		writeError(w, http.StatusBadRequest, "Signup session expired. Please restart sign-in.")
		return
	}
	if pending.Provider != provider.Provider() {
		writeError(w, http.StatusBadRequest, "Invalid signup session. Please restart sign-in.")
		return
	}

	var req providerCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Username == "" || req.DisplayName == "" || strings.TrimSpace(req.FriendCode) == "" {
		writeError(w, http.StatusBadRequest, "Please fill in all fields")
		return
	}
	if len(req.Username) < 2 || len(req.Username) > 30 {
		writeError(w, http.StatusBadRequest, "Username must be 2-30 characters")
		return
	}
	code := friendcode.Normalize(req.FriendCode)
	if err := friendcode.Validate(code); err != nil {
		writeError(w, http.StatusBadRequest, "Friend code must be 12 characters (SW-XXXX-XXXX-XXXX)")
		return
	}

	user, err := h.providerAuth.CreateUserFromProviderPending(r.Context(), pending, models.CreateUserParams{
		Email:       pending.Email,
		Username:    strings.ToLower(req.Username),
		DisplayName: req.DisplayName,
		FriendCode:  code,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameAlreadyExists):
			writeError(w, http.StatusConflict, "Username already taken")
		case errors.Is(err, services.ErrEmailAlreadyExists):
			writeError(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, services.ErrInvalidProviderPending):
			writeError(w, http.StatusBadRequest, "Signup session expired. Please restart sign-in.")
		default:
			log.Printf("Provider complete failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if h.emailService != nil {
		if err := h.emailService.SendWelcome(r.Context(), user.Email, user.DisplayName, user.FriendCode); err != nil {
			log.Printf("Error sending welcome email: %v", err)
		}
	}

	token, err := h.authService.CreateSession(r.Context(), user.ID)
	if err != nil {
		log.Printf("Provider session failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	setSessionCookie(w, token, h.secure)
	h.clearOAuthCookie(w, providerPendingCookieName(providerKey))
	_ = h.redis.Del(r.Context(), pendingKey)

	writeJSON(w, http.StatusCreated, providerCompleteResponse{User: user})
}

func providerPendingCookieName(provider string) string {
	return provider + "_pending"
}

func providerPendingRedisKey(token string) string {
	return "oauth_pending:" + token
}

func (h *ProviderAuthHandler) getProvider(r *http.Request) (services.OAuthProvider, string) {
	providerKey := strings.ToLower(r.PathValue("provider"))
	if providerKey == "" {
		return nil, ""
	}
	provider, ok := h.providers[providerKey]
	if !ok {
		return nil, providerKey
	}
	return provider, providerKey
}

func (h *ProviderAuthHandler) setOAuthCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   oauthCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *ProviderAuthHandler) clearOAuthCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}

func (h *ProviderAuthHandler) redirectToLoginError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/#login?error="+sanitizeErrorParam(code), http.StatusFound)
}

func generateSecureToken(size int) (string, error) {
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func secureCompare(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func sanitizeErrorParam(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "oauth_error"
	}
	if len(value) > 60 {
		value = value[:60]
	}
	for _, r := range value {
		if !isAllowedErrorRune(r) {
			return "oauth_error"
		}
	}
	return value
}

func isAllowedErrorRune(r rune) bool {
	return r == '-' || r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
