package helpers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

// KeyPasswordOTP is the Redis key holding the pending reset code for an email.
func KeyPasswordOTP(email string) string {
	return "pwd:otp:" + normalizeEmail(email)
}

// KeyPasswordOTPCooldown is the Redis key rate-limiting code issuance for an email.
func KeyPasswordOTPCooldown(email string) string {
	return "pwd:otp:rl:" + normalizeEmail(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenOTPCode generates a secure random 6-digit OTP code as a zero-padded string
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// IsOTPCode reports whether s has the shape of a code produced by GenOTPCode.
func IsOTPCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// GenToken returns n random bytes encoded as URL-safe base64.
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
