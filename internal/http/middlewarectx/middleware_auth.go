// Package middlewarectx contains the HTTP middleware for bearer token
// verification and request rate limiting.
//
// JWTMiddleware checks the Authorization header for a valid signed token
// and, on success, puts the user id, uid and email into the request
// context for downstream handlers. Verification failures answer with
// HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/lib/jwt"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
)

// Key is the type for request context keys.
type Key string

const (
	// UserID is the context key of the numeric user id.
	UserID Key = "user_id"
	// UserUID is the context key of the stable user uuid.
	UserUID Key = "user_uid"
	// UserEmail is the context key of the user email.
	UserEmail Key = "user_email"
)

// JWTMiddleware returns an HTTP middleware verifying the bearer token in
// the Authorization header.
func JWTMiddleware(maker jwt.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, UserEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
