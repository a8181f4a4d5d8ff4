package service

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	OTPModeRandom = "random"
	OTPModeShared = "shared"

	otpDigits = 6
)

// OTPIssuer creates the one-time code for a checkout challenge and checks
// submitted codes against what was stored on the payment.
type OTPIssuer interface {
	// Issue returns the plain code and the value to persist with the payment.
	Issue() (code string, hash string, err error)
	Verify(hash, code string) bool
}

func NewOTPIssuer(mode, sharedCode string) (OTPIssuer, error) {
	switch mode {
	case OTPModeRandom:
		return &randomOTP{}, nil
	case OTPModeShared:
		if sharedCode == "" {
			return nil, fmt.Errorf("shared otp mode needs a code")
		}
		return &sharedOTP{code: sharedCode}, nil
	default:
		return nil, fmt.Errorf("unknown otp mode %q", mode)
	}
}

type randomOTP struct{}

func (o *randomOTP) Issue() (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%0*d", otpDigits, n.Int64())

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hash otp: %w", err)
	}

	return code, string(hash), nil
}

func (o *randomOTP) Verify(hash, code string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// sharedOTP accepts one deployment-wide code for every challenge.
type sharedOTP struct {
	code string
}

func (o *sharedOTP) Issue() (string, string, error) {
	return o.code, "", nil
}

func (o *sharedOTP) Verify(_, code string) bool {
	return subtle.ConstantTimeCompare([]byte(code), []byte(o.code)) == 1
}
