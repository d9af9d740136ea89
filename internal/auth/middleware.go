package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const AdminContextKey contextKey = "admin"

// bearerToken reads the Authorization header. Download links opened by the
// browser cannot set headers, so GET requests may pass ?token= instead.
func bearerToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.CutPrefix(header, "Bearer ")
	}
	if r.Method == http.MethodGet {
		if tok := r.URL.Query().Get("token"); tok != "" {
			return tok, true
		}
	}
	return "", false
}

// Middleware rejects requests without a valid token and stores the claims
// in the request context.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "unauthorized")
				return
			}
			claims, err := ValidateToken(secret, tokenStr)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), AdminContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}

func GetAdmin(ctx context.Context) *Claims {
	claims, _ := ctx.Value(AdminContextKey).(*Claims)
	return claims
}
