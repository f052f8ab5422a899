package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
)

const codeDigits = 6

var codeSpace = big.NewInt(1_000_000)

// CodeGenerator returns a fresh 6-digit decimal code.
type CodeGenerator func() (string, error)

// RandomCode draws uniformly from 000000-999999 using crypto/rand.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// HashCode computes HMAC-SHA256(secret, email + ":" + code) over the
// normalized email.
func HashCode(secret []byte, email, code string) [32]byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(domain.NormalizeEmail(email) + ":" + code))

	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

func validCode(code string) bool {
	if len(code) != codeDigits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
