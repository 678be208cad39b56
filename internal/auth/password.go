package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with the stored hash.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HashPin hashes a company master PIN. PINs are short numeric secrets, so
// they get the same bcrypt treatment as passwords rather than a faster digest.
func HashPin(pin string) (string, error) {
	if len(pin) < 4 {
		return "", errors.New("pin must be at least 4 digits")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return "", errors.New("pin must contain only digits")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPin compares a plaintext PIN with the stored hash.
func VerifyPin(hash, pin string) error {
	if hash == "" {
		return errors.New("pin is not configured")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
}
