// Package token issues and verifies the two JWT types used by the API.
// Access tokens carry identity + role for request authorization; refresh
// tokens carry only the subject and the server-side session nonce, so a
// refresh always re-reads the user's current role instead of trusting a
// stale claim.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, expiry,
// malformed payload, missing required claims. Callers must not distinguish
// between these cases in client-facing responses.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims are embedded in every access token.
type AccessClaims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RefreshClaims are embedded in every refresh token. Nonce identifies the
// single live refresh session stored on the user record.
type RefreshClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access/refresh tokens with distinct HS256 keys.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL is the lifetime of a refresh session; the session rotator uses
// it to compute refresh_expires_at on the user record.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) IssueAccess(userID, role, username string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role:     role,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
}

func (i *Issuer) IssueRefresh(userID, nonce string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
}

// VerifyAccess validates signature and expiry against the access key and
// rejects tokens missing any required claim.
func (i *Issuer) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.verify(tokenStr, claims, i.accessSecret); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.Role == "" || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh validates signature and expiry against the refresh key and
// rejects tokens missing the subject or nonce.
func (i *Issuer) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.verify(tokenStr, claims, i.refreshSecret); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.Nonce == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *Issuer) verify(tokenStr string, claims jwt.Claims, secret []byte) error {
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}
