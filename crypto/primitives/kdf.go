package primitives

import (
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey derives a symmetric key from a shared secret using
// HKDF-SHA-512. The salt provides domain separation between protocol
// versions; info binds the derivation to its context (the recipient
// identifier, for envelope key wrapping).
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: derived key length %d", ErrInvalidKeySize, length)
	}
	reader := hkdf.New(sha512.New, secret, salt, info)
	key := make([]byte, length)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// DeriveKeyFromPassword derives a symmetric key from a password using
// PBKDF2-HMAC-SHA512 with the given work factor.
func DeriveKeyFromPassword(password, salt []byte, iterations, length int) []byte {
	return pbkdf2.Key(password, salt, iterations, length, sha512.New)
}
