package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"scanid.app/internal/access"
	"scanid.app/internal/auth"
)

const (
	authHeader   = "Authorization"
	bearerScheme = "Bearer "
)

var publicPaths = []string{
	"/v1/users/login",
	"/v1/users/register",
	"/v1/delegate-access/accept",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}

// withAuth authenticates the bearer token and resolves the caller's
// permission context from the directory before any handler runs.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := auth.ParseAndValidate(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		pc, err := a.resolver.Resolve(r.Context(), claims.Subject)
		if err != nil {
			switch {
			case errors.Is(err, access.ErrNotFound):
				writeError(w, r, http.StatusUnauthorized, "unknown account")
			case errors.Is(err, access.ErrSubjectDisabled):
				writeError(w, r, http.StatusForbidden, "account disabled")
			case errors.Is(err, access.ErrUnknownRole), errors.Is(err, access.ErrScopeUnresolved):
				writeError(w, r, http.StatusForbidden, "access scope unresolved")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := access.ContextWithPermissions(r.Context(), pc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerScheme)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearerScheme):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
