package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/switch2connect/switch2connect/internal/handlers"
	"github.com/switch2connect/switch2connect/internal/services"
)

// AuthMiddleware resolves the session cookie into a user on the request
// context. The profile is re-fetched on every authenticated request so
// handlers always see the current follow lists.
type AuthMiddleware struct {
	authService services.AuthServiceInterface
	userService services.UserServiceInterface
}

func NewAuthMiddleware(authService services.AuthServiceInterface, userService services.UserServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userService: userService,
	}
}

// Authenticate attaches the session user to the context when a valid
// session cookie is present. Missing or stale sessions pass through
// unauthenticated; individual handlers decide whether that is an error.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(handlers.SessionCookieName())
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.authService.GetSession(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, services.ErrSessionNotFound) {
				log.Printf("Error resolving session: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.userService.GetByID(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, services.ErrUserNotFound) {
				log.Printf("Error loading session user: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.SetUserInContext(r.Context(), user)))
	})
}

// RequireSession rejects requests that did not authenticate.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetUserFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
