package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/entity"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLegacyUserNotFound means a migration was triggered for an id that
	// vanished between password verification and the migration attempt.
	ErrLegacyUserNotFound = errors.New("legacy user not found")
)

// LegacyStore is the narrow interface over the legacy `users` table.
type LegacyStore interface {
	GetByEmail(ctx context.Context, email string) (*entity.LegacyUser, error)
	GetByID(ctx context.Context, id string) (*entity.LegacyUser, error)
	Create(ctx context.Context, u *entity.LegacyUser) error
	MarkMigrated(ctx context.Context, id string) error
}

// IdentityStore is the narrow interface over the new system's user and
// session tables.
type IdentityStore interface {
	GetUserByID(ctx context.Context, id string) (*entity.AuthUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.AuthUser, error)
	CreateUser(ctx context.Context, u *entity.AuthUser) error
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// LoginOutcome is the result of a successful password authentication.
// Exactly one of SessionID / LegacyToken is set, matching AuthType.
type LoginOutcome struct {
	User        entity.AuthenticatedUser
	AuthType    entity.AuthType
	Migrated    bool // true only on the call where lazy migration happened
	SessionID   string
	LegacyToken string
}

// Engine decides, per request or per credential pair, which identity system
// authenticates the caller, and lazily migrates legacy identities to the new
// store on their next successful password login.
type Engine struct {
	legacy     LegacyStore
	identity   IdentityStore
	hasher     PasswordHasher
	tokens     *TokenManager
	strategy   entity.Strategy
	sessionTTL time.Duration
	logger     *zap.SugaredLogger
}

func NewEngine(legacy LegacyStore, identity IdentityStore, hasher PasswordHasher, tokens *TokenManager, cfg Config, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		legacy:     legacy,
		identity:   identity,
		hasher:     hasher,
		tokens:     tokens,
		strategy:   cfg.Strategy,
		sessionTTL: cfg.SessionTTL,
		logger:     logger,
	}
}

// NormalizeEmail lowercases and trims an email for case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResolveRequest determines the identity behind a request's credentials.
// The new-system session is always tried before the legacy token; this is a
// fixed precedence rule. Every lookup failure at any step, including store
// I/O errors, is treated as "not found" for that step, so this never errors.
func (e *Engine) ResolveRequest(ctx context.Context, sessionID, legacyToken string) entity.AuthResult {
	if e.strategy != entity.StrategyLegacyOnly && sessionID != "" {
		if res, ok := e.resolveSession(ctx, sessionID); ok {
			return res
		}
	}
	if e.strategy != entity.StrategyNewOnly && legacyToken != "" {
		if res, ok := e.resolveLegacyToken(ctx, legacyToken); ok {
			return res
		}
	}
	return entity.Unauthenticated()
}

func (e *Engine) resolveSession(ctx context.Context, sessionID string) (entity.AuthResult, bool) {
	sess, err := e.identity.GetSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			e.logger.Debugw("session lookup failed", "err", err)
		}
		return entity.Unauthenticated(), false
	}
	if time.Now().After(sess.ExpiresAt) {
		return entity.Unauthenticated(), false
	}
	u, err := e.identity.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return entity.Unauthenticated(), false
	}
	return entity.AuthResult{
		Authenticated: true,
		AuthType:      entity.AuthTypeBetterAuth,
		User: &entity.AuthenticatedUser{
			ID:         u.ID,
			Email:      u.Email,
			Name:       u.Name,
			IsMigrated: true,
		},
	}, true
}

func (e *Engine) resolveLegacyToken(ctx context.Context, token string) (entity.AuthResult, bool) {
	userID, _, err := e.tokens.Verify(token)
	if err != nil {
		return entity.Unauthenticated(), false
	}
	u, err := e.legacy.GetByID(ctx, userID)
	if err != nil {
		return entity.Unauthenticated(), false
	}
	return entity.AuthResult{
		Authenticated: true,
		AuthType:      entity.AuthTypeLegacy,
		User: &entity.AuthenticatedUser{
			ID:         u.ID,
			Email:      u.Email,
			Name:       u.Name,
			IsMigrated: false,
		},
	}, true
}

// AuthenticateWithPassword verifies credentials against the legacy store and
// then drives the per-identity migration state machine:
//
//	Unmigrated -> (successful login, migration enabled) -> Migrated
//
// Once the password is verified, the login must succeed: any failure on the
// new-system leg (migration, session creation, store outage) falls back to
// issuing a legacy token instead of failing the call.
func (e *Engine) AuthenticateWithPassword(ctx context.Context, email, password string) (*LoginOutcome, error) {
	u, err := e.legacy.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("legacy lookup: %w", err)
	}
	if !e.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if e.strategy == entity.StrategyLegacyOnly {
		return e.legacyOutcome(u)
	}

	migrated := false
	if _, err := e.identity.GetUserByID(ctx, u.ID); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			e.logger.Warnw("new identity store unreachable, using legacy session", "user_id", u.ID, "err", err)
			return e.legacyOutcome(u)
		}
		didMigrate, mErr := e.MigrateIdentity(ctx, u.ID, u.Email, password)
		if mErr != nil {
			e.logger.Warnw("migration failed, using legacy session", "user_id", u.ID, "err", mErr)
			return e.legacyOutcome(u)
		}
		migrated = didMigrate
	}

	sess, err := e.identity.CreateSession(ctx, u.ID, e.sessionTTL)
	if err != nil {
		e.logger.Warnw("session creation failed, using legacy session", "user_id", u.ID, "err", err)
		return e.legacyOutcome(u)
	}
	return &LoginOutcome{
		User: entity.AuthenticatedUser{
			ID:         u.ID,
			Email:      u.Email,
			Name:       u.Name,
			IsMigrated: true,
		},
		AuthType:  entity.AuthTypeBetterAuth,
		Migrated:  migrated,
		SessionID: sess.ID,
	}, nil
}

// MigrateIdentity copies a verified legacy identity into the new store under
// the SAME id. The returned bool reports whether this call performed the
// migration; a unique-constraint violation means a concurrent login won the
// race and is not an error. The legacy migrated flag is advisory only, so a
// failure to set it is logged and otherwise ignored.
func (e *Engine) MigrateIdentity(ctx context.Context, legacyUserID, email, password string) (bool, error) {
	lu, err := e.legacy.GetByID(ctx, legacyUserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, ErrLegacyUserNotFound
		}
		return false, fmt.Errorf("legacy fetch: %w", err)
	}
	name := lu.Name
	if name == "" {
		name = lu.Email
	}
	hash, err := e.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	au := &entity.AuthUser{
		ID:            lu.ID,
		Email:         lu.Email,
		Name:          name,
		EmailVerified: true, // the legacy record's history counts as verification
		PasswordHash:  hash,
	}
	if err := e.identity.CreateUser(ctx, au); err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create auth user: %w", err)
	}
	if err := e.legacy.MarkMigrated(ctx, lu.ID); err != nil {
		e.logger.Warnw("failed to set migrated flag", "user_id", lu.ID, "err", err)
	}
	return true, nil
}

func (e *Engine) legacyOutcome(u *entity.LegacyUser) (*LoginOutcome, error) {
	tok, err := e.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue legacy token: %w", err)
	}
	return &LoginOutcome{
		User: entity.AuthenticatedUser{
			ID:         u.ID,
			Email:      u.Email,
			Name:       u.Name,
			IsMigrated: false,
		},
		AuthType:    entity.AuthTypeLegacy,
		LegacyToken: tok,
	}, nil
}
