package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	UserID int64
	Role   string
}

type contextKeyUserID struct{}
type contextKeyUserRole struct{}

// GetUserID retrieves the authenticated user ID from the context. Zero
// means no authenticated user.
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(contextKeyUserID{}).(int64); ok {
		return id
	}
	return 0
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(contextKeyUserRole{}).(string); ok {
		return role
	}
	return ""
}

// WithUser injects an authenticated user into a context. Useful for
// service unit tests that don't run the full HTTP middleware chain.
func WithUser(ctx context.Context, userID int64, role string) context.Context {
	ctx = context.WithValue(ctx, contextKeyUserID{}, userID)
	return context.WithValue(ctx, contextKeyUserRole{}, role)
}

// RequireAuth enforces a valid bearer token and stores the claims in the
// request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "falta el encabezado Authorization")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", GetRequestID(ctx),
					"error", err,
				)
				writeUnauthorized(w, "token inválido o expirado")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, claims.UserID, claims.Role)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"` + message + `","errorCode":"NO_AUTORIZADO"}`))
}
