package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Reason identifies why a token was rejected.
type Reason string

const (
	ReasonMissing          Reason = "token_missing"
	ReasonMalformed        Reason = "token_malformed"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonExpired          Reason = "token_expired"
	ReasonInvalidIssuer    Reason = "invalid_issuer"
	ReasonInvalidAudience  Reason = "invalid_audience"
)

// RejectionError is returned by ValidateToken for every unusable token.
type RejectionError struct {
	Reason Reason
	Err    error
}

func (e *RejectionError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Claims represents JWT claims.
type Claims struct {
	Email     string   `json:"email"`
	FirstName string   `json:"given_name"`
	LastName  string   `json:"family_name"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenConfig configures token issuance and validation.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

// TokenService handles JWT token generation and validation.
// It holds no mutable state; any token with a valid signature, issuer,
// audience and lifetime is accepted.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
	now      func() time.Time
}

// NewTokenService creates a new token service.
func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		expiry:   cfg.Expiry,
		now:      time.Now,
	}
}

// Expiry returns the configured token lifetime.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// IssueToken signs a session token for the identity.
func (s *TokenService) IssueToken(id *Identity) (string, error) {
	now := s.now()
	claims := &Claims{
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Roles:     id.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the identity it carries.
// Every failure is a *RejectionError.
func (s *TokenService) ValidateToken(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, &RejectionError{Reason: ReasonMissing}
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, &RejectionError{Reason: reasonFor(err), Err: err}
	}
	if !token.Valid {
		return nil, &RejectionError{Reason: ReasonMalformed, Err: errors.New("invalid token")}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, &RejectionError{Reason: ReasonMalformed, Err: fmt.Errorf("subject: %w", err)}
	}

	return &Identity{
		UserID:    userID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Roles:     claims.Roles,
	}, nil
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ReasonInvalidIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ReasonInvalidAudience
	default:
		return ReasonMalformed
	}
}
