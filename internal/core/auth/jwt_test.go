package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTer(ttl time.Duration) *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "storyhub", TTL: ttl}
}

func TestIssueAndParse(t *testing.T) {
	j := newJWTer(30 * time.Minute)
	tok, err := j.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "storyhub", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestParseExpired(t *testing.T) {
	// 过期超出 60s 宽限
	j := newJWTer(-2 * time.Minute)
	tok, err := j.Issue("alice")
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseTampered(t *testing.T) {
	j := newJWTer(30 * time.Minute)
	tok, err := j.Issue("alice")
	require.NoError(t, err)

	tampered := tok[:len(tok)-2] + "xx"
	_, err = j.Parse(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseWrongSecret(t *testing.T) {
	j := newJWTer(30 * time.Minute)
	tok, err := j.Issue("alice")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("other-secret"), Issuer: "storyhub", TTL: 30 * time.Minute}
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseGarbage(t *testing.T) {
	j := newJWTer(30 * time.Minute)
	for _, s := range []string{"", "garbage", "a.b.c"} {
		_, err := j.Parse(s)
		assert.ErrorIs(t, err, ErrTokenInvalid, s)
	}
}

func TestParseMissingSubject(t *testing.T) {
	j := newJWTer(30 * time.Minute)
	// 同一密钥、同一签发者，但不带 sub
	now := time.Now()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    j.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	tok, err := raw.SignedString(j.Secret)
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
