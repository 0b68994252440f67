package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/roomdesk/roomdesk/libs/auth"
)

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyEmail
)

func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUserID).(string)
	return v
}

// RequireAuth verifies the Bearer access token and stashes the caller's
// identity in the request context. Being logged in is the only policy
// enforced here.
func RequireAuth(next http.Handler, secret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "you must be logged in", http.StatusUnauthorized)
			return
		}
		claims, err := auth.ParseAndVerifyHS256(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			http.Error(w, "you must be logged in", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.Sub)
		ctx = context.WithValue(ctx, ctxKeyEmail, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
