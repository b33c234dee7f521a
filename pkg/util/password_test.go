package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "Valid password",
			password: "password123",
		},
		{
			name:     "Empty password",
			password: "", // bcrypt accepts empty input
		},
		{
			name:     "Special characters",
			password: "p@ssw0rd-with-special-chars!#$%",
		},
		{
			name:     "Password over bcrypt limit",
			password: strings.Repeat("a", 73),
			wantErr:  ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, strings.HasPrefix(hash, "$2a$"))
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "mySecurePassword123"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name           string
		hashedPassword string
		password       string
		want           bool
	}{
		{
			name:           "Correct password",
			hashedPassword: hash,
			password:       password,
			want:           true,
		},
		{
			name:           "Wrong password",
			hashedPassword: hash,
			password:       "notThePassword",
			want:           false,
		},
		{
			name:           "Empty password against real hash",
			hashedPassword: hash,
			password:       "",
			want:           false,
		},
		{
			name:           "Malformed hash",
			hashedPassword: "not-a-bcrypt-hash",
			password:       password,
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hashedPassword, tt.password))
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := HashPassword("password123")
	require.NoError(t, err)
	second, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword(first, "password123"))
	assert.True(t, VerifyPassword(second, "password123"))
}
