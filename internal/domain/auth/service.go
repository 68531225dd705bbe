package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

// Service verifies bearer tokens.
type Service interface {
	ValidateToken(ctx context.Context, token string) (Claims, error)
	// Required reports whether anonymous requests are rejected.
	Required() bool
}

// NewService builds the verifier for cfg.Mode. It returns a nil Service in
// "none" mode. OIDC discovery happens here, so ctx bounds the network call.
func NewService(ctx context.Context, cfg Config, logger *slog.Logger) (Service, error) {
	logger = logger.With("component", "auth.service")
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", ModeNone:
		return nil, nil
	case ModeHMAC:
		if cfg.Secret == "" {
			return nil, fmt.Errorf("auth secret is required in hmac mode")
		}
		logger.Info("bearer tokens verified with shared secret", "required", cfg.Required)
		return &hmacService{cfg: cfg, now: time.Now}, nil
	case ModeOIDC:
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("discover oidc issuer: %w", err)
		}
		logger.Info("bearer tokens verified with oidc issuer", "issuer", cfg.Issuer, "required", cfg.Required)
		return newOIDCService(cfg, provider.Verifier(&oidc.Config{ClientID: cfg.Audience})), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

type hmacService struct {
	cfg Config
	now func() time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

func (s *hmacService) Required() bool { return s.cfg.Required }

func (s *hmacService) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing subject", nil)
	}
	return Claims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Issuer:    claims.Issuer,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

type oidcService struct {
	cfg      Config
	verifier *oidc.IDTokenVerifier
}

func newOIDCService(cfg Config, verifier *oidc.IDTokenVerifier) *oidcService {
	return &oidcService{cfg: cfg, verifier: verifier}
}

func (s *oidcService) Required() bool { return s.cfg.Required }

func (s *oidcService) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	idToken, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	var extra struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&extra); err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeAuthError, "failed to decode token claims", err)
	}
	if idToken.Subject == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing subject", nil)
	}
	return Claims{
		Subject:   idToken.Subject,
		Email:     extra.Email,
		Issuer:    idToken.Issuer,
		ExpiresAt: idToken.Expiry,
	}, nil
}

var (
	_ Service = (*hmacService)(nil)
	_ Service = (*oidcService)(nil)
)
