package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

func TestNewServiceModes(t *testing.T) {
	svc, err := NewService(context.Background(), Config{Mode: ModeNone}, newTestLogger())
	require.NoError(t, err)
	require.Nil(t, svc)

	_, err = NewService(context.Background(), Config{Mode: ModeHMAC}, newTestLogger())
	require.Error(t, err)

	_, err = NewService(context.Background(), Config{Mode: "ldap"}, newTestLogger())
	require.Error(t, err)

	svc, err = NewService(context.Background(), Config{Mode: ModeHMAC, Secret: "s", Required: true}, newTestLogger())
	require.NoError(t, err)
	require.True(t, svc.Required())
}

func TestHMACValidateToken(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := &hmacService{cfg: Config{Secret: "test-secret", Issuer: "omniluck", Audience: "app"}, now: func() time.Time { return now }}

	token := signHMAC(t, "test-secret", tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "omniluck",
			Audience:  jwt.ClaimStrings{"app"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: "user@example.com",
	})
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.Subject)
	require.Equal(t, "user@example.com", claims.Email)
	require.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt))
}

func TestHMACRejectsBadTokens(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := &hmacService{cfg: Config{Secret: "test-secret"}, now: func() time.Time { return now }}
	valid := jwt.RegisteredClaims{Subject: "user-42", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": signHMAC(t, "other", tokenClaims{RegisteredClaims: valid}),
		"expired": signHMAC(t, "test-secret", tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-42", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		}}),
		"no expiry":  signHMAC(t, "test-secret", tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"}}),
		"no subject": signHMAC(t, "test-secret", tokenClaims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: valid.ExpiresAt}}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(context.Background(), token)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
		})
	}
}

func TestOIDCValidateToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}}
	verifier := oidc.NewVerifier("https://issuer.example", keySet, &oidc.Config{ClientID: "omniluck-app"})
	svc := newOIDCService(Config{Mode: ModeOIDC}, verifier)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   "https://issuer.example",
		"aud":   "omniluck-app",
		"sub":   "firebase-uid-1",
		"email": "star@example.com",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), signed)
	require.NoError(t, err)
	require.Equal(t, "firebase-uid-1", claims.Subject)
	require.Equal(t, "star@example.com", claims.Email)
	require.Equal(t, "https://issuer.example", claims.Issuer)

	wrongAudience := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": "https://issuer.example",
		"aud": "someone-else",
		"sub": "firebase-uid-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err = wrongAudience.SignedString(key)
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), signed)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func signHMAC(t *testing.T, secret string, claims tokenClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
