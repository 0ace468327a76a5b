package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrInvalidCredentials is returned when username or password is incorrect
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	saltLength     = 16
	iterationCount = 4096
	keyLength      = 32
)

// Credentials holds a single admin identity with a PBKDF2-SHA256
// derived password key.
type Credentials struct {
	username string
	salt     []byte
	key      []byte
}

// NewCredentials derives credentials from a username and password
func NewCredentials(username, password string) (*Credentials, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return &Credentials{
		username: username,
		salt:     salt,
		key:      pbkdf2.Key([]byte(password), salt, iterationCount, keyLength, sha256.New),
	}, nil
}

// Verify checks a username/password pair in constant time
func (c *Credentials) Verify(username, password string) error {
	candidate := pbkdf2.Key([]byte(password), c.salt, iterationCount, keyLength, sha256.New)

	userOK := hmac.Equal([]byte(username), []byte(c.username))
	keyOK := hmac.Equal(candidate, c.key)
	if !userOK || !keyOK {
		return ErrInvalidCredentials
	}
	return nil
}
