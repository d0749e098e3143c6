package primitives

import "errors"

// Sentinel errors for errors.Is() checks.
var (
	// ErrUnsupportedAlgorithm is returned when an algorithm tag is unknown
	// or the key type cannot perform the requested operation.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrInvalidKeySize is returned when a symmetric key has the wrong length.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when a nonce has the wrong length.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrAuthenticationFailed is returned when AEAD authentication fails
	// during Open. The ciphertext or its associated data was modified.
	ErrAuthenticationFailed = errors.New("message authentication failed")

	// ErrVerificationFailed is returned when a digital signature does not
	// verify under the given public key.
	ErrVerificationFailed = errors.New("signature verification failed")

	// ErrKeyAgreement is returned when a Diffie-Hellman computation is
	// rejected, e.g. for a low-order or malformed peer point.
	ErrKeyAgreement = errors.New("key agreement failed")
)
