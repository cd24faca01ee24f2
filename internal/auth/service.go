package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/entity"
	authrepo "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/repo"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/pkg/utilities"
)

// ErrEmailExists is a signup collision in either identity store.
var ErrEmailExists = errors.New("email already exists")

// AuthContext answers "who is this request" for HTTP middleware. It is
// always well-formed; an unauthenticated request carries a nil User and
// AuthType none.
type AuthContext struct {
	IsAuthenticated bool
	User            *entity.AuthenticatedUser
	AuthType        entity.AuthType
}

// SignupOutcome reports which store received the new identity and carries
// the transport credential for it. Exactly one of SessionID / LegacyToken
// is set.
type SignupOutcome struct {
	User        entity.AuthenticatedUser
	AuthType    entity.AuthType
	SessionID   string
	LegacyToken string
}

// Service is the public auth surface consumed by HTTP handlers. It wraps
// the migration engine and adds signup, logout, and context resolution.
type Service struct {
	engine   *Engine
	legacy   LegacyStore
	identity IdentityStore
	hasher   PasswordHasher
	tokens   *TokenManager
	cfg      Config
	logger   *zap.SugaredLogger
}

// NewService wires the service against the real Postgres-backed stores.
func NewService(db *sqlx.DB, cfg Config, logger *zap.SugaredLogger) *Service {
	return NewServiceWithStores(authrepo.NewLegacyUserRepo(db), authrepo.NewIdentityRepo(db), nil, cfg, logger)
}

// NewServiceWithStores builds a Service over explicit store implementations.
// A nil hasher defaults to bcrypt.
func NewServiceWithStores(legacy LegacyStore, identity IdentityStore, hasher PasswordHasher, cfg Config, logger *zap.SugaredLogger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	tokens := NewTokenManager(cfg.JWTSecret, cfg.LegacyTokenTTL)
	return &Service{
		engine:   NewEngine(legacy, identity, hasher, tokens, cfg, logger),
		legacy:   legacy,
		identity: identity,
		hasher:   hasher,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

// Strategy reports the configured authentication strategy.
func (s *Service) Strategy() entity.Strategy { return s.cfg.Strategy }

// Login authenticates an email/password pair through the migration engine.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	return s.engine.AuthenticateWithPassword(ctx, email, password)
}

// GetAuthContext resolves the request credentials. It never fails; any
// resolution problem yields an unauthenticated context.
func (s *Service) GetAuthContext(ctx context.Context, sessionID, legacyToken string) AuthContext {
	res := s.engine.ResolveRequest(ctx, sessionID, legacyToken)
	return AuthContext{
		IsAuthenticated: res.Authenticated,
		User:            res.User,
		AuthType:        res.AuthType,
	}
}

// SignUp registers a new identity. The new identity store is preferred;
// when it is unavailable the identity is created in the legacy store
// instead, so exactly one store receives the signup.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*SignupOutcome, error) {
	email = NormalizeEmail(email)

	legacyCheckFailed := false
	if _, err := s.legacy.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, common.ErrNotFound) {
		// duplicate protection then rests on the stores' unique constraints
		s.logger.Warnw("legacy duplicate check failed", "err", err)
		legacyCheckFailed = true
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id := utilities.NewKSUID()

	if s.cfg.Strategy == entity.StrategyLegacyOnly {
		return s.legacySignup(ctx, id, name, email, hash)
	}

	au := &entity.AuthUser{ID: id, Email: email, Name: name, PasswordHash: hash}
	if err := s.identity.CreateUser(ctx, au); err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		if legacyCheckFailed {
			return nil, fmt.Errorf("create auth user: %w", err)
		}
		s.logger.Warnw("new identity store unavailable, signing up in legacy store", "err", err)
		return s.legacySignup(ctx, id, name, email, hash)
	}

	out := &SignupOutcome{
		User:     entity.AuthenticatedUser{ID: id, Email: email, Name: name, IsMigrated: true},
		AuthType: entity.AuthTypeBetterAuth,
	}
	sess, err := s.identity.CreateSession(ctx, id, s.cfg.SessionTTL)
	if err != nil {
		// the account exists; the caller just has to log in explicitly
		s.logger.Warnw("session creation after signup failed", "user_id", id, "err", err)
		return out, nil
	}
	out.SessionID = sess.ID
	return out, nil
}

// Logout is best-effort: a missing, expired, or undeletable session never
// surfaces as an error.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.identity.DeleteSession(ctx, sessionID); err != nil {
		s.logger.Debugw("session delete failed", "err", err)
	}
}

func (s *Service) legacySignup(ctx context.Context, id, name, email, hash string) (*SignupOutcome, error) {
	u := &entity.LegacyUser{ID: id, Email: email, Name: name, PasswordHash: hash}
	if err := s.legacy.Create(ctx, u); err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create legacy user: %w", err)
	}
	tok, err := s.tokens.Generate(id, email)
	if err != nil {
		return nil, fmt.Errorf("issue legacy token: %w", err)
	}
	return &SignupOutcome{
		User:        entity.AuthenticatedUser{ID: id, Email: email, Name: name, IsMigrated: false},
		AuthType:    entity.AuthTypeLegacy,
		LegacyToken: tok,
	}, nil
}
