package auth

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", secret, "betterday", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, secret, "betterday")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestValidateTokenRejects(t *testing.T) {
	expired, err := GenerateToken("user-1", secret, "betterday", -time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := GenerateToken("user-1", secret, "someone-else", time.Hour)
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
		"iss": "betterday",
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "user-1",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"garbage", "not-a-token", secret},
		{"wrong secret", expired, "other"},
		{"expired", expired, secret},
		{"wrong issuer", wrongIssuer, secret},
		{"missing user id", noUser, secret},
		{"unsigned", none, secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token, tt.secret, "betterday")
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGenerateTokenRequiresUser(t *testing.T) {
	_, err := GenerateToken("", secret, "", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseClientPrincipal(t *testing.T) {
	header, err := EncodeClientPrincipal(ClientPrincipal{
		IdentityProvider: "github",
		UserID:           "abc123",
		UserDetails:      "octocat",
		UserRoles:        []string{"anonymous", "authenticated"},
	})
	require.NoError(t, err)

	p, err := ParseClientPrincipal(header)
	require.NoError(t, err)
	assert.Equal(t, "abc123", p.UserID)
	assert.Equal(t, "octocat", p.UserDetails)

	for name, value := range map[string]string{
		"empty":      "",
		"not base64": "%%%",
		"not json":   base64.StdEncoding.EncodeToString([]byte("hello")),
		"missing id": base64.StdEncoding.EncodeToString([]byte(`{"userDetails":"x"}`)),
		"blank id":   base64.StdEncoding.EncodeToString([]byte(`{"userId":""}`)),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseClientPrincipal(value)
			assert.ErrorIs(t, err, ErrInvalidPrincipal)
		})
	}
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRedisRateLimiter(client, "test:", time.Hour, 2)
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		d, err := rl.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, want, d.Allowed, "request %d", i+1)
	}
	d, err := rl.Allow(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.True(t, mr.Exists("test:ratelimit:u1"))

	require.NoError(t, rl.Reset(ctx, "u1"))
	d, err = rl.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
