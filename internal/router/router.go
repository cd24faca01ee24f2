package router

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	accountpkg "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/account"
	accountrepo "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/account/repo"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth"
	authrepo "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/repo"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/dashboard"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/transaction"
	transactionrepo "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/transaction/repo"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
// It is intentionally simple and conservative so it works with most setups.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EnsureSchema creates every table this service reads or writes. Idempotent;
// meant for development and small deployments.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if err := authrepo.NewLegacyUserRepo(db).EnsureTable(ctx); err != nil {
		return err
	}
	if err := authrepo.NewIdentityRepo(db).EnsureTable(ctx); err != nil {
		return err
	}
	if err := accountrepo.NewAccountRepo(db).EnsureTable(ctx); err != nil {
		return err
	}
	return transactionrepo.NewTransactionRepo(db).EnsureTable(ctx)
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, authCfg auth.Config) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /finance-api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// auth routes
	authHandler := auth.NewHandler(db, authCfg, logger)
	mux.HandleFunc("POST /auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("GET /auth/me", authHandler.Me)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)

	requireAuth := auth.RequireAuth(authHandler.Service())

	// account routes
	accountHandler := accountpkg.NewHandler(db, logger)
	mux.Handle("POST /accounts", requireAuth(http.HandlerFunc(accountHandler.Create)))
	mux.Handle("GET /accounts", requireAuth(http.HandlerFunc(accountHandler.List)))
	mux.Handle("GET /accounts/{id}", requireAuth(http.HandlerFunc(accountHandler.Get)))
	mux.Handle("PUT /accounts/{id}", requireAuth(http.HandlerFunc(accountHandler.Update)))
	mux.Handle("DELETE /accounts/{id}", requireAuth(http.HandlerFunc(accountHandler.Delete)))

	// transaction routes
	txHandler := transaction.NewHandler(db, logger)
	mux.Handle("POST /transactions", requireAuth(http.HandlerFunc(txHandler.Create)))
	mux.Handle("GET /transactions", requireAuth(http.HandlerFunc(txHandler.List)))
	mux.Handle("GET /transactions/{id}", requireAuth(http.HandlerFunc(txHandler.Get)))
	mux.Handle("DELETE /transactions/{id}", requireAuth(http.HandlerFunc(txHandler.Delete)))

	// dashboard
	dashHandler := dashboard.NewHandler(db, logger)
	mux.Handle("GET /dashboard/summary", requireAuth(http.HandlerFunc(dashHandler.Summary)))

	// wrap with security headers middleware then logging middleware
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
	return handler
}
