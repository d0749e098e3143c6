package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/dh/x448"
	circled448 "github.com/cloudflare/circl/sign/ed448"
	"golang.org/x/crypto/curve25519"
)

// Generate creates a fresh key pair of the given type under the given
// identifier scheme. Randomness always comes from crypto/rand; if the
// system CSPRNG is unavailable the call fails rather than degrading.
func Generate(t KeyType, scheme IdentifierScheme) (*KeyPair, error) {
	if !t.valid() {
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedKeyType, uint8(t))
	}
	if !scheme.valid() {
		return nil, fmt.Errorf("unknown identifier scheme %d", uint8(scheme))
	}

	var private, public []byte

	switch t {
	case Ed25519:
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate ed25519 key: %w", err)
		}
		private, public = priv, pub

	case Curve25519:
		scalar := make([]byte, curve25519.ScalarSize)
		if _, err := rand.Read(scalar); err != nil {
			return nil, fmt.Errorf("read random scalar: %w", err)
		}
		point, err := curve25519.X25519(scalar, curve25519.Basepoint)
		if err != nil {
			return nil, fmt.Errorf("derive curve25519 public key: %w", err)
		}
		private, public = scalar, point

	case Ed448:
		pub, priv, err := circled448.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate ed448 key: %w", err)
		}
		private, public = priv, pub

	case X448:
		var secret, point x448.Key
		if _, err := rand.Read(secret[:]); err != nil {
			return nil, fmt.Errorf("read random scalar: %w", err)
		}
		x448.KeyGen(&point, &secret)
		private = append([]byte(nil), secret[:]...)
		public = append([]byte(nil), point[:]...)
		zeroize(secret[:])
	}

	return newKeyPair(t, private, public, scheme)
}

// newKeyPair wraps raw material into handles, deriving the identifier from
// the canonical PKIX DER encoding of the public key.
func newKeyPair(t KeyType, private, public []byte, scheme IdentifierScheme) (*KeyPair, error) {
	der, err := marshalPKIX(t, public)
	if err != nil {
		return nil, err
	}
	id, err := scheme.Derive(der)
	if err != nil {
		return nil, err
	}
	priv := &PrivateKey{
		keyType:    t,
		material:   private,
		public:     public,
		identifier: id,
	}
	return &KeyPair{Private: priv, Public: priv.PublicKey()}, nil
}
