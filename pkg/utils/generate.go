package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"math/big"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// GenerateToken returns n random bytes hex-encoded.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ==================== OTP ====================

// GenerateOTP creates a numeric code of the given length using crypto/rand.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	ten := big.NewInt(10)
	otp := make([]byte, length)
	for i := range otp {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		otp[i] = byte('0' + n.Int64())
	}

	return string(otp), nil
}

// SecureCompare compares two codes in constant time.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
