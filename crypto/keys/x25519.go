package keys

import (
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

// Ed25519ToX25519PrivateKey converts an Ed25519 private key to an X25519
// private key scalar. Ed25519 private keys are 64 bytes (32-byte seed +
// 32-byte public key); X25519 private keys are 32 bytes.
//
// The scalar is derived from the SHA-512 of the Ed25519 seed with the
// clamping from RFC 8032 section 5.1.5, so it matches the scalar the
// Ed25519 key implicitly signs with.
func Ed25519ToX25519PrivateKey(ed25519PrivateKey ed25519.PrivateKey) ([]byte, error) {
	if len(ed25519PrivateKey) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}

	seed := ed25519PrivateKey[:ed25519.SeedSize]

	digest := sha512.Sum512(seed)
	digest[0] &= 248  // Clear the bottom 3 bits
	digest[31] &= 127 // Clear the top bit
	digest[31] |= 64  // Set the second-highest bit

	scalar := make([]byte, 32)
	copy(scalar, digest[:32])
	zeroize(digest[:])
	return scalar, nil
}

// Ed25519ToX25519PublicKey converts an Ed25519 public key to the
// corresponding X25519 public key via the birational map between the
// Edwards and Montgomery forms of Curve25519.
func Ed25519ToX25519PublicKey(ed25519PublicKey ed25519.PublicKey) ([]byte, error) {
	if len(ed25519PublicKey) != ed25519.PublicKeySize {
		return nil, ErrInvalidKeySize
	}

	point, err := new(edwards25519.Point).SetBytes(ed25519PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid Ed25519 point: %v", ErrMalformedKey, err)
	}

	return point.BytesMontgomery(), nil
}
