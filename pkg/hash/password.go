package hash

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword trims surrounding whitespace and hashes the rest with bcrypt.
func HashPassword(plainPassword string) (string, error) {
	plainPassword = strings.TrimSpace(plainPassword)
	if plainPassword == "" {
		return "", errors.New("password is empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the trimmed password matches storedHash.
func VerifyPassword(plainPassword, storedHash string) bool {
	plainPassword = strings.TrimSpace(plainPassword)
	if plainPassword == "" || storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plainPassword)) == nil
}
