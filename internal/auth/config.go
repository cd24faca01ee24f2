package auth

import (
	"os"
	"time"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/entity"
)

// Config carries every knob the auth subsystem needs. It is built once in
// main and injected, so the active strategy is an explicit value rather
// than an env read scattered through the call paths.
type Config struct {
	Strategy       entity.Strategy
	JWTSecret      string
	LegacyTokenTTL time.Duration
	SessionTTL     time.Duration
	SecureCookies  bool
}

// ConfigFromEnv reads auth config from environment variables.
func ConfigFromEnv() Config {
	strategy := entity.Strategy(os.Getenv("AUTH_STRATEGY"))
	switch strategy {
	case entity.StrategyDual, entity.StrategyNewOnly, entity.StrategyLegacyOnly:
	default:
		strategy = entity.StrategyDual
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return Config{
		Strategy:       strategy,
		JWTSecret:      secret,
		LegacyTokenTTL: 7 * 24 * time.Hour,
		SessionTTL:     7 * 24 * time.Hour,
		SecureCookies:  os.Getenv("APP_ENV") == "production",
	}
}
