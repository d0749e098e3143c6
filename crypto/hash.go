package crypto

import (
	"fmt"

	"github.com/quillsec/sealbox/crypto/primitives"
)

// HashAlgorithm is the name of a supported digest.
type HashAlgorithm = primitives.HashAlgorithm

const (
	SHA224 = primitives.HashSHA224
	SHA256 = primitives.HashSHA256
	SHA384 = primitives.HashSHA384
	SHA512 = primitives.HashSHA512
)

// CalculateHash computes the named digest of data. An empty algorithm name
// selects SHA-256; an unknown name is an ErrInvalidArgument.
func CalculateHash(data []byte, algorithm HashAlgorithm) ([]byte, error) {
	if algorithm == "" {
		algorithm = SHA256
	}
	digest, err := primitives.Hash(algorithm, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return digest, nil
}
