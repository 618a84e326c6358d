package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12
	// VerificationCodeBytes is the entropy of an email verification code.
	// Hex encoded it gives the six characters users type in.
	VerificationCodeBytes = 3
)

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomRead                 = rand.Read
	cost                       = DefaultCost
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcryptGenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SetCost changes the bcrypt cost used by HashPassword and returns a func
// restoring the previous value. Tests lower it to keep suites fast.
func SetCost(c int) (restore func()) {
	prev := cost
	cost = c
	return func() { cost = prev }
}

// GenerateRandomToken generates a random token of specified length
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateVerificationCode generates a six character hex email verification code
func GenerateVerificationCode() (string, error) {
	return GenerateRandomToken(VerificationCodeBytes)
}
