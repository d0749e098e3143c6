package primitives

import (
	"crypto/ed25519"
	"fmt"

	circled448 "github.com/cloudflare/circl/sign/ed448"

	"github.com/quillsec/sealbox/crypto/keys"
)

// MaxSignatureSize is an upper bound on the signature length any supported
// key type can produce (Ed448 signatures are the largest at 114 bytes).
const MaxSignatureSize = circled448.SignatureSize

// Sign produces a signature over digest with the private key, dispatched on
// the key's algorithm tag. Callers are expected to pass a hash of the
// message, not the raw message.
func Sign(priv *keys.PrivateKey, digest []byte) ([]byte, error) {
	switch priv.KeyType() {
	case keys.Ed25519:
		material := priv.Bytes()
		if len(material) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("%w: %s private key is %d bytes",
				keys.ErrInvalidKeySize, priv.KeyType(), len(material))
		}
		return ed25519.Sign(ed25519.PrivateKey(material), digest), nil

	case keys.Ed448:
		material := priv.Bytes()
		if len(material) != circled448.PrivateKeySize {
			return nil, fmt.Errorf("%w: %s private key is %d bytes",
				keys.ErrInvalidKeySize, priv.KeyType(), len(material))
		}
		return circled448.Sign(circled448.PrivateKey(material), digest, ""), nil

	default:
		return nil, fmt.Errorf("%w: %s keys cannot sign", ErrUnsupportedAlgorithm, priv.KeyType())
	}
}

// Verify checks a signature over digest against the public key, dispatched
// on the key's algorithm tag. It returns ErrVerificationFailed when the
// signature does not verify; signature comparison inside the underlying
// implementations is constant-time.
func Verify(pub *keys.PublicKey, digest, signature []byte) error {
	switch pub.KeyType() {
	case keys.Ed25519:
		material := pub.Bytes()
		if len(material) != ed25519.PublicKeySize {
			return fmt.Errorf("%w: %s public key is %d bytes",
				keys.ErrInvalidKeySize, pub.KeyType(), len(material))
		}
		if !ed25519.Verify(ed25519.PublicKey(material), digest, signature) {
			return ErrVerificationFailed
		}
		return nil

	case keys.Ed448:
		material := pub.Bytes()
		if len(material) != circled448.PublicKeySize {
			return fmt.Errorf("%w: %s public key is %d bytes",
				keys.ErrInvalidKeySize, pub.KeyType(), len(material))
		}
		if !circled448.Verify(circled448.PublicKey(material), digest, signature, "") {
			return ErrVerificationFailed
		}
		return nil

	default:
		return fmt.Errorf("%w: %s keys cannot verify signatures",
			ErrUnsupportedAlgorithm, pub.KeyType())
	}
}
