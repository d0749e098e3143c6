package primitives

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEADAlgorithm identifies a bulk authenticated cipher. The numeric values
// are part of the envelope wire format and must not be renumbered.
type AEADAlgorithm uint8

const (
	// AEADAES256GCM is AES-256 in Galois/Counter mode. Default.
	AEADAES256GCM AEADAlgorithm = 1
	// AEADChaCha20Poly1305 is ChaCha20-Poly1305 (RFC 8439).
	AEADChaCha20Poly1305 AEADAlgorithm = 2
)

// AEADKeySize is the symmetric key length shared by both supported ciphers.
const AEADKeySize = 32

// AEADNonceSize is the nonce length shared by both supported ciphers.
const AEADNonceSize = 12

// String returns the conventional cipher name.
func (a AEADAlgorithm) String() string {
	switch a {
	case AEADAES256GCM:
		return "AES-256-GCM"
	case AEADChaCha20Poly1305:
		return "CHACHA20-POLY1305"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether the tag names a supported cipher.
func (a AEADAlgorithm) Valid() bool {
	return a == AEADAES256GCM || a == AEADChaCha20Poly1305
}

func newAEAD(alg AEADAlgorithm, key []byte) (cipher.AEAD, error) {
	if len(key) != AEADKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AEADKeySize)
	}
	switch alg {
	case AEADAES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("create cipher: %w", err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("create GCM: %w", err)
		}
		return aead, nil
	case AEADChaCha20Poly1305:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, fmt.Errorf("create chacha20poly1305: %w", err)
		}
		return aead, nil
	default:
		return nil, fmt.Errorf("%w: AEAD tag %d", ErrUnsupportedAlgorithm, uint8(alg))
	}
}

// Seal encrypts and authenticates plaintext, binding aad. The result is
// ciphertext||tag; the nonce is NOT prepended, callers carry it in the
// envelope metadata.
func Seal(alg AEADAlgorithm, key, nonce, plaintext, aad []byte) ([]byte, error) {
	aead, err := newAEAD(alg, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), aead.NonceSize())
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts and authenticates ciphertext||tag produced by Seal. Any
// authentication failure returns ErrAuthenticationFailed and no plaintext.
func Open(alg AEADAlgorithm, key, nonce, ciphertext, aad []byte) ([]byte, error) {
	aead, err := newAEAD(alg, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), aead.NonceSize())
	}
	if len(ciphertext) < aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrAuthenticationFailed)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
