package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cletusgizo/ZapPay-Global/internal/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		ResetSecret:   "reset-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      time.Hour,
		Issuer:        "zappay-auth-test",
	}
}

func TestNewSigner_MissingSecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ResetSecret = ""

	_, err := NewSigner(cfg)
	require.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	signer, err := NewSigner(testJWTConfig())
	require.NoError(t, err)

	signed, err := signer.Sign("user-1", "a@x.com", KindAccess)
	require.NoError(t, err)

	claims, err := signer.Verify(signed, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Empty(t, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestVerify_WrongKindRejected(t *testing.T) {
	signer, err := NewSigner(testJWTConfig())
	require.NoError(t, err)

	access, err := signer.Sign("user-1", "a@x.com", KindAccess)
	require.NoError(t, err)

	// An access token must not verify against the refresh or reset secrets.
	_, err = signer.Verify(access, KindRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = signer.Verify(access, KindReset)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSign_ResetCarriesTypeDiscriminator(t *testing.T) {
	signer, err := NewSigner(testJWTConfig())
	require.NoError(t, err)

	reset, err := signer.Sign("user-1", "a@x.com", KindReset)
	require.NoError(t, err)

	claims, err := signer.Verify(reset, KindReset)
	require.NoError(t, err)
	assert.Equal(t, TypePasswordReset, claims.Type)
}

func TestVerify_Expired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTTL = -time.Minute
	signer, err := NewSigner(cfg)
	require.NoError(t, err)

	signed, err := signer.Sign("user-1", "a@x.com", KindAccess)
	require.NoError(t, err)

	_, err = signer.Verify(signed, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Garbage(t *testing.T) {
	signer, err := NewSigner(testJWTConfig())
	require.NoError(t, err)

	_, err = signer.Verify("not-a-token", KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
