package security

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token roles carried in the "role" claim. Access and refresh tokens share the
// same encoding but are signed with distinct secrets, so one class cannot be
// replayed as the other even if the role check were bypassed.
const (
	RoleUser    = "USER"
	RoleRefresh = "REFRESH"
)

// Claims holds the JWT claims for both token classes.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenProvider issues and verifies HS256 access and refresh tokens using two
// distinct secrets. Verification is pure and stateless; it never touches the
// session store.
type TokenProvider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenProvider returns a TokenProvider signing access tokens with
// accessSecret and refresh tokens with refreshSecret. Both secrets must be
// non-empty; config validation guarantees this at startup.
func NewTokenProvider(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess issues a short-lived access token for the given user.
// Returns the token string and its expiration time.
func (p *TokenProvider) IssueAccess(userID string) (string, time.Time, error) {
	return p.issue(userID, RoleUser, p.accessSecret, p.accessTTL)
}

// IssueRefresh issues a long-lived refresh token for the given user.
// Returns the token string and its expiration time; the caller persists a
// session row bound to the token value.
func (p *TokenProvider) IssueRefresh(userID string) (string, time.Time, error) {
	return p.issue(userID, RoleRefresh, p.refreshSecret, p.refreshTTL)
}

func (p *TokenProvider) issue(userID, role string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// VerifyAccess verifies the token against the access secret. Returns the
// claims, or nil on any failure (malformed, expired, wrong signature, wrong
// signing method). It never returns an error; callers branch on nil.
func (p *TokenProvider) VerifyAccess(token string) *Claims {
	return verify(token, p.accessSecret)
}

// VerifyRefresh verifies the token against the refresh secret. Returns the
// claims, or nil on any failure. The role claim is not checked here; callers
// enforce Role == RoleRefresh to reject access tokens presented as refresh
// tokens.
func (p *TokenProvider) VerifyRefresh(token string) *Claims {
	return verify(token, p.refreshSecret)
}

func verify(tokenString string, secret []byte) *Claims {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
