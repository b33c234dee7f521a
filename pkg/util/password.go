package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently truncates input beyond 72 bytes; reject instead.
const maxPasswordLength = 72

const bcryptCost = 12

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword returns the bcrypt hash of a plain text password.
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword reports whether the plain text password matches the hash.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
