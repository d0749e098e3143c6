package crypto

import (
	"crypto/rand"
	"fmt"
)

// GetRandomBytes returns length cryptographically secure random bytes. A
// zero length returns an empty slice; a negative length is an
// ErrInvalidArgument.
func GetRandomBytes(length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrInvalidArgument, length)
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("%w: read random bytes: %w", ErrPrimitive, err)
	}
	return b, nil
}
