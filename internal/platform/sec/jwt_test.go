// Copyright (c) 2026 Campora. All rights reserved.

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campora/campora/internal/platform/sec"
)

// testKeyPair generates a throwaway RSA key pair encoded as PEM.
func testKeyPair(t *testing.T) (privatePEM, publicPEM []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	return privatePEM, publicPEM
}

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	privatePEM, publicPEM := testKeyPair(t)
	service, err := sec.NewTokenServiceFromPEM(privatePEM, publicPEM, "campora.io")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip signs a token and verifies the claims survive.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	signed, err := service.GenerateAccessToken(
		"0192aa00-0000-7000-8000-000000000001",
		"member@campora.io",
		[]string{"Faculty", "Parent"},
		time.Hour,
	)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := service.VerifyToken(signed)
	require.NoError(t, err)

	assert.Equal(t, "0192aa00-0000-7000-8000-000000000001", claims.IdentityID())
	assert.Equal(t, "member@campora.io", claims.Email)
	assert.Equal(t, []string{"Faculty", "Parent"}, claims.Roles)
	assert.Equal(t, "campora.io", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

/*
TestTokenService_VerifyToken_Expired rejects a token past its lifetime.
*/
func TestTokenService_VerifyToken_Expired(t *testing.T) {
	service := newTestTokenService(t)

	signed, err := service.GenerateAccessToken("identity-1", "member@campora.io", nil, -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(signed)
	assert.Error(t, err)
}

/*
TestTokenService_VerifyToken_Tampered rejects a token whose payload was
modified after signing.
*/
func TestTokenService_VerifyToken_Tampered(t *testing.T) {
	service := newTestTokenService(t)

	signed, err := service.GenerateAccessToken("identity-1", "member@campora.io", nil, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + ".eyJzdWIiOiJpbnRydWRlciJ9." + parts[2]

	_, err = service.VerifyToken(tampered)
	assert.Error(t, err)
}

/*
TestTokenService_VerifyToken_WrongKey rejects a token signed by a different
key pair.
*/
func TestTokenService_VerifyToken_WrongKey(t *testing.T) {
	signer := newTestTokenService(t)
	verifier := newTestTokenService(t)

	signed, err := signer.GenerateAccessToken("identity-1", "member@campora.io", nil, time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(signed)
	assert.Error(t, err)
}

/*
TestTokenService_VerifyToken_Garbage rejects strings that are not JWTs.
*/
func TestTokenService_VerifyToken_Garbage(t *testing.T) {
	service := newTestTokenService(t)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := service.VerifyToken(input)
		assert.Error(t, err)
	}
}

/*
TestHashPassword verifies bcrypt hashing and comparison behavior.
*/
func TestHashPassword(t *testing.T) {
	hash, err := sec.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, sec.CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, sec.CheckPasswordHash("wrong-pass", hash))
	assert.False(t, sec.CheckPasswordHash("s3cret-pass", "not-a-hash"))
}

/*
TestGenerateSecureToken checks length, URL safety, and uniqueness.
*/
func TestGenerateSecureToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		token, err := sec.GenerateSecureToken(32)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.False(t, seen[token], "token collision")
		seen[token] = true
	}
}
