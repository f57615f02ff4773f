package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/Elmamis69/jatrack/internal/domain"
)

// ErrInvalidToken covers any structural, signature, or expiry failure.
// Callers decide whether to treat it as anonymous or reject.
var ErrInvalidToken = errors.New("invalid token")

// Subject identifies the authenticated caller carried by a token.
type Subject struct {
	UserID int64
	Email  string
	Name   string
	Role   domain.Role
}

type customClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Service signs and validates bearer tokens with a server-side secret.
// Tokens are stateless; nothing is stored per session.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewService builds a token service for the configured HS256 secret.
func NewService(secret []byte, issuer string, ttl time.Duration) *Service {
	return &Service{secret: secret, issuer: issuer, ttl: ttl}
}

// Issue produces a signed JWT whose subject is the user's id.
func (s *Service) Issue(user domain.User) (string, error) {
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.HS256, Key: s.secret},
		(&gojose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := time.Now().UTC()
	std := gojwt.Claims{
		Subject:   strconv.FormatInt(user.ID, 10),
		Issuer:    s.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		Expiry:    gojwt.NewNumericDate(now.Add(s.ttl)),
	}
	custom := customClaims{
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	}

	signed, err := gojwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwt: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, issuer, and expiry, returning the
// subject on success. Every failure mode collapses into
// ErrInvalidToken so nothing leaks about which check failed.
func (s *Service) Validate(raw string) (Subject, error) {
	parsed, err := gojwt.ParseSigned(raw, []gojose.SignatureAlgorithm{gojose.HS256})
	if err != nil {
		return Subject{}, ErrInvalidToken
	}

	var std gojwt.Claims
	var custom customClaims
	if err := parsed.Claims(s.secret, &std, &custom); err != nil {
		return Subject{}, ErrInvalidToken
	}
	if err := std.Validate(gojwt.Expected{Issuer: s.issuer, Time: time.Now().UTC()}); err != nil {
		return Subject{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(std.Subject, 10, 64)
	if err != nil {
		return Subject{}, ErrInvalidToken
	}

	return Subject{
		UserID: userID,
		Email:  custom.Email,
		Name:   custom.Name,
		Role:   domain.Role(custom.Role),
	}, nil
}

// ExtractSubject reads the subject claim without verifying the
// signature. Diagnostic use only; never an authentication decision.
func (s *Service) ExtractSubject(raw string) (string, error) {
	parsed, err := gojwt.ParseSigned(raw, []gojose.SignatureAlgorithm{gojose.HS256})
	if err != nil {
		return "", ErrInvalidToken
	}
	var std gojwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&std); err != nil {
		return "", ErrInvalidToken
	}
	return std.Subject, nil
}
