package catalog

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const hashVersionBcrypt = "bcrypt"

// hashPassword hashes a plaintext password using bcrypt.
func hashPassword(password string) (hash string, version string, err error) {
	if len(password) < 8 {
		return "", "", errors.New("password too short")
	}

	bytes, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return "", "", err
	}

	return string(bytes), hashVersionBcrypt, nil
}

// verifyPassword compares plaintext password with stored hash.
func verifyPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword(
		[]byte(hash),
		[]byte(password),
	)
}
