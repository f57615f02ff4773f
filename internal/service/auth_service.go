package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Elmamis69/jatrack/internal/domain"
	pw "github.com/Elmamis69/jatrack/internal/password"
	"github.com/Elmamis69/jatrack/internal/repository"
	"github.com/Elmamis69/jatrack/internal/token"
)

// TokenResponse is the payload returned by register and login.
type TokenResponse struct {
	Token string `json:"token"`
}

// LoginThrottle limits consecutive failed login attempts per account.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService handles registration, login, and caller identification.
type AuthService struct {
	users     repository.UserRepository
	tokens    *token.Service
	throttle  LoginThrottle
	snowflake *snowflake.Node
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewAuthService wires dependencies. throttle may be nil, which
// disables login lockout.
func NewAuthService(users repository.UserRepository, tokens *token.Service, throttle LoginThrottle, node *snowflake.Node, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		throttle:  throttle,
		snowflake: node,
		logger:    logger,
		tracer:    otel.Tracer("github.com/Elmamis69/jatrack/internal/service"),
	}
}

// Register creates an account and returns a usable token. Email
// comparison is exact match on the stored value; no normalization is
// applied here.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (TokenResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Register")
	defer span.End()

	if strings.TrimSpace(email) == "" {
		return TokenResponse{}, domain.NewValidationError("email", "email is required")
	}
	if strings.TrimSpace(password) == "" {
		return TokenResponse{}, domain.NewValidationError("password", "password is required")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return TokenResponse{}, fmt.Errorf("check existing email: %w", err)
	}
	if exists {
		return TokenResponse{}, domain.ErrDuplicateEmail
	}

	hashed, err := pw.Hash(password)
	if err != nil {
		span.RecordError(err)
		return TokenResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           s.snowflake.Generate().Int64(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
		Role:         domain.RoleUser,
	}

	// The unique index still guards the race between the exists check
	// and the insert.
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return TokenResponse{}, domain.ErrDuplicateEmail
		}
		span.RecordError(err)
		return TokenResponse{}, fmt.Errorf("create user: %w", err)
	}

	signed, err := s.tokens.Issue(created)
	if err != nil {
		span.RecordError(err)
		return TokenResponse{}, fmt.Errorf("issue token: %w", err)
	}

	s.audit("auth.register.success", "user_id", created.ID)
	return TokenResponse{Token: signed}, nil
}

// Login verifies credentials and returns a token. All failure modes
// collapse into ErrInvalidCredentials so callers learn nothing about
// which check failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			span.RecordError(err)
			return TokenResponse{}, fmt.Errorf("login throttle: %w", err)
		}
		if !allowed {
			s.audit("auth.login.locked_out", "email", email)
			return TokenResponse{}, domain.ErrLockedOut
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.recordFailure(ctx, email)
			return TokenResponse{}, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		return TokenResponse{}, fmt.Errorf("load user: %w", err)
	}

	valid, err := pw.Verify(password, user.PasswordHash)
	if err != nil || !valid {
		s.recordFailure(ctx, email)
		return TokenResponse{}, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log().Warn("reset login counter failed", zap.Error(err))
		}
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		span.RecordError(err)
		return TokenResponse{}, fmt.Errorf("issue token: %w", err)
	}

	s.audit("auth.login.success", "user_id", user.ID)
	return TokenResponse{Token: signed}, nil
}

// Profile loads the caller's own account record.
func (s *AuthService) Profile(ctx context.Context, userID int64) (domain.User, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Profile")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, fmt.Errorf("load profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log().Warn("record login failure", zap.Error(err))
	}
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, attrs ...any) {
	logger := s.log()
	if logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}
