package auth

import "time"

// Modes accepted by NewService.
const (
	ModeNone = "none"
	ModeHMAC = "hmac"
	ModeOIDC = "oidc"
)

// Config drives token verification.
type Config struct {
	Mode string
	// Secret signs HS256 tokens in hmac mode.
	Secret string
	// Issuer is the OIDC discovery URL in oidc mode and the expected iss
	// claim in hmac mode when set.
	Issuer   string
	Audience string
	// Required rejects luck requests that carry no bearer token.
	Required bool
}

// Claims are extracted from a verified token. Subject becomes the luck uid.
type Claims struct {
	Subject   string
	Email     string
	Issuer    string
	ExpiresAt time.Time
}
