package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomOTP(t *testing.T) {
	otp, err := NewOTPIssuer(OTPModeRandom, "")
	require.NoError(t, err)

	code, hash, err := otp.Issue()
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
	assert.NotEqual(t, code, hash)
	assert.True(t, otp.Verify(hash, code))
	assert.False(t, otp.Verify(hash, "not-it"))
	assert.False(t, otp.Verify("", code))
}

func TestSharedOTP(t *testing.T) {
	otp, err := NewOTPIssuer(OTPModeShared, "4242")
	require.NoError(t, err)

	code, hash, err := otp.Issue()
	require.NoError(t, err)

	assert.Equal(t, "4242", code)
	assert.Empty(t, hash)
	assert.True(t, otp.Verify(hash, "4242"))
	assert.False(t, otp.Verify(hash, "4243"))
}

func TestNewOTPIssuer_Invalid(t *testing.T) {
	_, err := NewOTPIssuer("sms", "")
	assert.Error(t, err)

	_, err = NewOTPIssuer(OTPModeShared, "")
	assert.Error(t, err)
}
