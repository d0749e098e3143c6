package primitives

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
)

// HashAlgorithm names a member of the supported hash family.
type HashAlgorithm string

const (
	HashSHA224 HashAlgorithm = "SHA-224"
	HashSHA256 HashAlgorithm = "SHA-256"
	HashSHA384 HashAlgorithm = "SHA-384"
	HashSHA512 HashAlgorithm = "SHA-512"
)

// NewHash returns a fresh hash.Hash for the named algorithm.
func NewHash(alg HashAlgorithm) (hash.Hash, error) {
	switch alg {
	case HashSHA224:
		return sha256.New224(), nil
	case HashSHA256:
		return sha256.New(), nil
	case HashSHA384:
		return sha512.New384(), nil
	case HashSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("%w: hash %q", ErrUnsupportedAlgorithm, string(alg))
	}
}

// Hash computes the named digest of data in one shot.
func Hash(alg HashAlgorithm, data []byte) ([]byte, error) {
	h, err := NewHash(alg)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}
