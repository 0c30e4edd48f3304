package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/osouvenir/souvenirs/internal/ctxkeys"
	"github.com/osouvenir/souvenirs/internal/service"
)

// AuthMiddleware adds the user to the context when the request carries a
// valid token. API routes read the bearer header only and the back office reads
// the auth cookie only, so that cookies never authenticate CSRF-exempt routes.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isAPI := strings.HasPrefix(r.URL.Path, "/api/")

			token := service.CookieToken(r)
			if isAPI {
				token = service.BearerToken(r)
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.UserFromToken(r.Context(), token)
			if err != nil {
				slog.Debug("rejected auth token", "error", err, "path", r.URL.Path)
				if !isAPI {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPIUser answers 401 JSON to API calls without a valid token
func RequireAPIUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code":    http.StatusUnauthorized,
				"message": "JWT Token not found",
			})
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireAdmin guards the back office: anonymous users go to the login page,
// users without ROLE_ADMIN get 403
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			target := "/back/login"
			if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/back/") {
				target += "?next=" + r.URL.Path
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		if !user.IsAdmin() {
			slog.Warn("back office access denied", "user_id", user.ID, "path", r.URL.Path)
			http.Error(w, "Access denied", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// RequireGuest sends already authenticated admins to the back office
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user != nil && user.IsAdmin() {
			http.Redirect(w, r, "/back/location/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}
