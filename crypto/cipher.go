package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/quillsec/sealbox/crypto/keys"
	"github.com/quillsec/sealbox/crypto/primitives"
)

// wrapKDFSalt is the fixed HKDF salt for deriving per-recipient wrap keys.
// Changing it is a protocol break.
var wrapKDFSalt = []byte("sealbox-wrap-v1")

const (
	// wrapAlgorithm is the AEAD that wraps the bulk key. Fixed regardless
	// of the configured bulk cipher.
	wrapAlgorithm = primitives.AEADAES256GCM

	bulkKeySize = primitives.AEADKeySize

	passwordSaltSize   = 16
	passwordIterations = 210_000

	// maxPasswordIterations bounds the work factor accepted from an
	// untrusted envelope.
	maxPasswordIterations = 10_000_000
)

// Cipher is the hybrid encryption engine. It holds configuration only, no
// per-operation state, so one instance may be shared across goroutines.
type Cipher struct {
	scheme  keys.IdentifierScheme
	bulkAlg primitives.AEADAlgorithm
	random  io.Reader
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithLegacyIdentifiers makes the engine derive full SHA-256 key
// identifiers instead of the default truncated SHA-512 ones. Use it to
// interoperate with envelopes produced by older deployments. The scheme is
// fixed for the life of the instance; keys imported through one engine are
// not interchangeable with keys imported through an engine on the other
// scheme.
func WithLegacyIdentifiers() Option {
	return func(c *Cipher) { c.scheme = keys.SchemeSHA256 }
}

// WithBulkAlgorithm selects the AEAD used for bulk data encryption.
func WithBulkAlgorithm(alg primitives.AEADAlgorithm) Option {
	return func(c *Cipher) { c.bulkAlg = alg }
}

// withRandom substitutes the CSPRNG. Testing hook.
func withRandom(r io.Reader) Option {
	return func(c *Cipher) { c.random = r }
}

// New returns an engine with the default configuration: truncated SHA-512
// identifiers and AES-256-GCM bulk encryption.
func New(opts ...Option) *Cipher {
	c := &Cipher{
		scheme:  keys.SchemeSHA512,
		bulkAlg: primitives.AEADAES256GCM,
		random:  rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IdentifierScheme returns the key identifier scheme the engine was
// configured with.
func (c *Cipher) IdentifierScheme() keys.IdentifierScheme { return c.scheme }

// GenerateKeyPair creates a fresh key pair of the given type, with its
// identifier derived under the engine's scheme.
func (c *Cipher) GenerateKeyPair(t keys.KeyType) (*keys.KeyPair, error) {
	pair, err := keys.Generate(t, c.scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return pair, nil
}

// ImportPublicKey parses a DER or PEM encoded public key.
func (c *Cipher) ImportPublicKey(data []byte) (*keys.PublicKey, error) {
	pub, err := keys.ImportPublicKey(data, c.scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return pub, nil
}

// ImportPrivateKey parses a DER or PEM encoded PKCS#8 private key.
func (c *Cipher) ImportPrivateKey(data []byte) (*keys.PrivateKey, error) {
	priv, err := keys.ImportPrivateKey(data, c.scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return priv, nil
}

// ImportEncryptedPrivateKey parses a password-protected private key blob
// produced by PrivateKey.MarshalEncrypted.
func (c *Cipher) ImportEncryptedPrivateKey(data, password []byte) (*keys.PrivateKey, error) {
	priv, err := keys.ImportEncryptedPrivateKey(data, password, c.scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return priv, nil
}

func (c *Cipher) randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(c.random, b); err != nil {
		return nil, fmt.Errorf("%w: read random bytes: %w", ErrPrimitive, err)
	}
	return b, nil
}
