package middleware

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/hearme-backend/pkg/ctxutil"
)

type tokenValidator interface {
	ValidateAccessToken(token string) (profileID int64, role string, err error)
}

// Auth resolves the bearer token into a profile id and role on the request
// context. Requests without a token pass through anonymously; the service
// layer rejects them where a caller is required.
func Auth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			profileID, role, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := ctxutil.WithProfileID(r.Context(), profileID)
			if role != "" {
				ctx = ctxutil.WithUserRole(ctx, role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
