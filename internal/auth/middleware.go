package auth

import (
	"context"
	"net/http"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/entity"
)

type contextKey struct{}

// UserFrom extracts the authenticated user injected by RequireAuth.
func UserFrom(ctx context.Context) (*entity.AuthenticatedUser, bool) {
	u, ok := ctx.Value(contextKey{}).(*entity.AuthenticatedUser)
	return u, ok
}

// RequireAuth resolves the request identity through the dual-auth service
// and rejects unauthenticated requests. During the migration window both a
// new-system session and a legacy token are acceptable credentials.
func RequireAuth(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := svc.GetAuthContext(r.Context(), cookieValue(r, SessionCookieName), cookieValue(r, LegacyCookieName))
			if !ac.IsAuthenticated {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"not authenticated"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, ac.User)))
		})
	}
}
