package middleware

import (
	"context"
	"net/http"
	"strings"
)

// SSOClient is the part of the SSO gRPC client the middleware needs.
type SSOClient interface {
	ValidateToken(ctx context.Context, token string) (uint32, bool, error)
	IsAdmin(ctx context.Context, userID uint32, appID uint32) (bool, error)
}

type AuthMiddleware struct {
	ssoClient SSOClient
	appID     uint32
}

func NewAuthMiddleware(client SSOClient, appID uint32) *AuthMiddleware {
	return &AuthMiddleware{ssoClient: client, appID: appID}
}

type contextKey string

const (
	UserIDKey  = contextKey("userID")
	IsAdminKey = contextKey("isAdmin")
)

func UserIDFromContext(ctx context.Context) (uint32, bool) {
	id, ok := ctx.Value(UserIDKey).(uint32)
	return id, ok
}

func IsAdminFromContext(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(IsAdminKey).(bool)
	return isAdmin
}

func (m *AuthMiddleware) ValidateToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		userID, valid, err := m.ssoClient.ValidateToken(r.Context(), token)
		if err != nil || !valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		isAdmin, err := m.ssoClient.IsAdmin(r.Context(), userID, m.appID)
		if err != nil {
			http.Error(w, "failed to check permissions", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, IsAdminKey, isAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after ValidateToken.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdminFromContext(r.Context()) {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
