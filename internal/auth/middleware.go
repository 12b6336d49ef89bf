package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

type ctxKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns the signed-in user, if any.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(models.User)
	return user, ok
}

// Middleware resolves the session cookie to a user. Requests without a
// valid session pass through anonymously.
func Middleware(store SessionStore, db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					slog.Warn("session lookup failed", slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			user, ok := storage.GetUserByID(r.Context(), db, userID)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
