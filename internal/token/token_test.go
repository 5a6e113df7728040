package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access_secret_32_chars_minimum!!"
	testRefreshSecret = "refresh_secret_32_chars_minimum!"
)

func newTestIssuer() *Issuer {
	return NewIssuer(testAccessSecret, testRefreshSecret, 30*time.Minute, 15*24*time.Hour)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	iss := newTestIssuer()

	tok, err := iss.IssueAccess("user-1", "ADMIN", "alice")
	require.NoError(t, err)

	claims, err := iss.VerifyAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "alice", claims.Username)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	iss := newTestIssuer()

	tok, err := iss.IssueRefresh("user-1", "nonce-abc")
	require.NoError(t, err)

	claims, err := iss.VerifyRefresh(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "nonce-abc", claims.Nonce)
}

func TestVerifyAccess_Expired(t *testing.T) {
	iss := NewIssuer(testAccessSecret, testRefreshSecret, -time.Minute, time.Hour)

	tok, err := iss.IssueAccess("user-1", "DRIVER", "bob")
	require.NoError(t, err)

	_, err = iss.VerifyAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_KeysAreDistinct(t *testing.T) {
	iss := newTestIssuer()

	// A refresh token must never verify as an access token and vice versa.
	refresh, err := iss.IssueRefresh("user-1", "nonce-abc")
	require.NoError(t, err)
	_, err = iss.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := iss.IssueAccess("user-1", "ADMIN", "alice")
	require.NoError(t, err)
	_, err = iss.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	iss := newTestIssuer()

	_, err := iss.VerifyAccess("this.is.garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.VerifyRefresh("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRefresh_MissingNonce(t *testing.T) {
	iss := newTestIssuer()

	// Hand-craft a refresh token without the nonce claim — must be rejected
	// rather than coerced to an empty value.
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testRefreshSecret))
	require.NoError(t, err)

	_, err = iss.VerifyRefresh(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccess_MissingRole(t *testing.T) {
	iss := newTestIssuer()

	claims := jwt.MapClaims{
		"sub":      "user-1",
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	_, err = iss.VerifyAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongAlgorithmRejected(t *testing.T) {
	iss := newTestIssuer()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1", "role": "ADMIN", "username": "alice",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.VerifyAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
