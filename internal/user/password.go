package user

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	passwordUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordLowercase = "abcdefghijklmnopqrstuvwxyz"
	passwordDigits    = "0123456789"
	passwordSpecial   = "!@#$%^&*()-_=+"
)

// GeneratePassword produces a random credential containing at least one
// uppercase letter, one lowercase letter, one digit and one special
// character. The plaintext is returned to the caller exactly once and never
// persisted in retrievable form.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		length = 16
	}

	all := passwordUppercase + passwordLowercase + passwordDigits + passwordSpecial

	chars := make([]byte, 0, length)
	for _, class := range []string{passwordUppercase, passwordLowercase, passwordDigits, passwordSpecial} {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < length {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Shuffle so the guaranteed classes don't sit at fixed positions.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("shuffling password: %w", err)
		}
		chars[i], chars[j.Int64()] = chars[j.Int64()], chars[i]
	}

	return string(chars), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("generating password character: %w", err)
	}
	return set[n.Int64()], nil
}
