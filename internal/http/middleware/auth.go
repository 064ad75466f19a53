package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/http/apierr"
	"github.com/polybooks/polybooks/internal/service"
)

type claimsCtxKey struct{}

// ClaimsFromContext returns the verified token claims for the request, if
// the auth middleware ran.
func ClaimsFromContext(ctx context.Context) (service.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(service.TokenClaims)
	return claims, ok
}

var publicPaths = map[string]struct{}{
	"/healthz":              {},
	MetricsPath:             {},
	"/docs":                 {},
	"/docs/openapi.yml":     {},
	"/api/v1/auth/register": {},
	"/api/v1/auth/login":    {},
}

// Auth rejects requests without a valid bearer token. Auth endpoints, docs
// and operational endpoints stay public.
func Auth(authSvc service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, apperr.InvalidTokenErr)
				return
			}

			claims, err := authSvc.VerifyToken(token)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func writeAuthError(w http.ResponseWriter, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(res)
}
