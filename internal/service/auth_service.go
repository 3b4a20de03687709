package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/auth"
	"github.com/visitordesk/visitor-service/internal/config"
	"github.com/visitordesk/visitor-service/internal/domain"
	"github.com/visitordesk/visitor-service/internal/ratelimit"
	"github.com/visitordesk/visitor-service/internal/repository"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// Login failure codes.
const (
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
)

// AuthService coordinates login and token validation.
type AuthService struct {
	users       repository.UserRepository
	codec       *auth.Codec
	resolver    *auth.Resolver
	hasher      *auth.PasswordHasher
	limiter     ratelimit.Limiter
	tokenTTL    time.Duration
	maxAttempts int
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Codec    *auth.Codec
	Hasher   *auth.PasswordHasher
	Limiter  ratelimit.Limiter
	Logger   *zap.Logger
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.NewInMemory(cfg.LoginWindow())
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher(cfg.BcryptCost)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxAttempts := cfg.LoginMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &AuthService{
		users:       deps.UserRepo,
		codec:       deps.Codec,
		resolver:    auth.NewResolver(deps.Codec),
		hasher:      hasher,
		limiter:     limiter,
		tokenTTL:    cfg.TokenTTL(),
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Login checks credentials and issues a token. Attempts are counted per
// username; a successful login clears the counter.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	throttleKey := "login:" + username
	decision := s.limiter.Allow(ctx, throttleKey, s.maxAttempts)
	if !decision.Allowed {
		s.logger.Warn("login throttled", zap.String("username", username), zap.Int("attempts", decision.Count))
		return nil, apperrors.NewTooManyRequests("Too many login attempts. Please try again later.", decision.RetryAfter(time.Now()))
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoError(err, "Username", username)
	}
	if !user.Active {
		return nil, apperrors.NewBadRequest("Your account is deactivated. Please contact administrator.", CodeAccountDeactivated)
	}

	ok, err := s.hasher.Matches(user.PasswordHash, password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, apperrors.NewBadRequest("Invalid username or password!", "")
	}

	token, expiresAt, err := s.codec.Issue(auth.Claims{
		SubjectID:     user.ID,
		Authenticated: true,
		Username:      user.Username,
		Role:          user.Role,
	}, s.tokenTTL)
	if err != nil {
		if errors.Is(err, auth.ErrNoSecret) {
			return nil, apperrors.NewConfigurationError(apperrors.CodeNoSecretDefined, "Token secret is not configured")
		}
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.limiter.Reset(ctx, throttleKey); err != nil {
		s.logger.Warn("failed to reset login counter", zap.String("username", username), zap.Error(err))
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken resolves the Authorization header and re-reads the user, so a
// token for a removed account is rejected. Credential failures report 401.
func (s *AuthService) ValidateToken(ctx context.Context, authorization string) (*domain.User, *auth.Identity, error) {
	identity, err := s.resolver.Resolve(authorization)
	if err != nil {
		if auth.IsConfigurationFailure(err) {
			return nil, nil, err
		}
		return nil, nil, apperrors.ToDomainError(err).WithStatus(http.StatusUnauthorized)
	}

	user, err := s.users.GetByID(ctx, identity.SubjectID)
	if err != nil {
		return nil, nil, mapRepoError(err, "User", identity.SubjectID)
	}
	return user, identity, nil
}
