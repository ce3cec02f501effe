package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/security"
)

func Test_JWTRoundTrip(t *testing.T) {
	claims := security.NewTokenClaims("app", "user-1", time.Now().Add(time.Hour).Unix())
	token, err := security.GenJWTToken(claims, "secret")
	require.NoError(t, err)

	parsed, err := security.VerifyJWTToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.User)
}

func Test_JWTWrongSecret(t *testing.T) {
	claims := security.NewTokenClaims("app", "user-1", time.Now().Add(time.Hour).Unix())
	token, err := security.GenJWTToken(claims, "secret")
	require.NoError(t, err)

	_, err = security.VerifyJWTToken(token, "other")
	assert.Error(t, err)
}

func Test_JWTExpired(t *testing.T) {
	claims := security.NewTokenClaims("app", "user-1", time.Now().Add(-time.Hour).Unix())
	token, err := security.GenJWTToken(claims, "secret")
	require.NoError(t, err)

	_, err = security.VerifyJWTToken(token, "secret")
	assert.Error(t, err)
}
