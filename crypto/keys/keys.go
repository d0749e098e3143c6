// Package keys implements the key model for the sealbox crypto engine.
// Keys are represented as a tagged union: an algorithm tag plus opaque raw
// key material, dispatched on the tag by the primitives layer. Each key
// carries an identifier derived from its public key DER encoding; the
// identifier is what envelope recipients are matched against.
package keys

import "errors"

// KeyType identifies the algorithm family of a key pair.
type KeyType uint8

const (
	// Ed25519 keys can both sign and act as encryption recipients
	// (key agreement runs over the birationally equivalent X25519 form).
	// This is the default key type.
	Ed25519 KeyType = 1
	// Curve25519 keys are agreement-only X25519 keys, kept for
	// compatibility with older envelopes produced before Ed25519 keys
	// became the default.
	Curve25519 KeyType = 2
	// Ed448 keys are signing-only keys at the 224-bit security level.
	Ed448 KeyType = 3
	// X448 keys are agreement-only keys at the 224-bit security level.
	X448 KeyType = 4
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrUnsupportedKeyType is returned when a key type tag is unknown or
	// the key cannot perform the requested operation.
	ErrUnsupportedKeyType = errors.New("unsupported key type")

	// ErrInvalidKeySize is returned when raw key material has the wrong
	// length for its declared type.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrMalformedKey is returned when key material cannot be parsed.
	ErrMalformedKey = errors.New("malformed key material")

	// ErrWrongPassword is returned when an encrypted private key fails to
	// decrypt. The password is wrong or the blob has been tampered with;
	// the two cases are indistinguishable by construction.
	ErrWrongPassword = errors.New("private key decryption failed")
)

// String returns the conventional algorithm name for the key type.
func (t KeyType) String() string {
	switch t {
	case Ed25519:
		return "ED25519"
	case Curve25519:
		return "CURVE25519"
	case Ed448:
		return "ED448"
	case X448:
		return "X448"
	default:
		return "UNKNOWN"
	}
}

// CanSign reports whether keys of this type carry the signing capability.
func (t KeyType) CanSign() bool {
	return t == Ed25519 || t == Ed448
}

// CanAgree reports whether keys of this type carry the key-agreement
// capability, i.e. whether they can be encryption recipients.
func (t KeyType) CanAgree() bool {
	return t == Ed25519 || t == Curve25519 || t == X448
}

func (t KeyType) valid() bool {
	return t >= Ed25519 && t <= X448
}

// publicKeySize returns the raw public key length for the type.
func (t KeyType) publicKeySize() int {
	switch t {
	case Ed25519, Curve25519:
		return 32
	case Ed448:
		return 57
	case X448:
		return 56
	default:
		return 0
	}
}

// PublicKey is a handle to public key material. It is immutable after
// construction; the raw material and identifier slices returned by its
// accessors must not be modified by callers.
type PublicKey struct {
	keyType    KeyType
	material   []byte
	identifier []byte
}

// KeyType returns the algorithm tag.
func (k *PublicKey) KeyType() KeyType { return k.keyType }

// Identifier returns the recipient identifier derived from the key's DER
// encoding under the identifier scheme the key was created with.
func (k *PublicKey) Identifier() []byte { return k.identifier }

// Bytes returns the raw public key material.
func (k *PublicKey) Bytes() []byte { return k.material }

// PrivateKey is a handle to private key material. The engine reads its raw
// bytes transiently during an operation and never retains them. Call
// Destroy once the key is no longer needed.
type PrivateKey struct {
	keyType    KeyType
	material   []byte
	public     []byte
	identifier []byte
}

// KeyType returns the algorithm tag.
func (k *PrivateKey) KeyType() KeyType { return k.keyType }

// Identifier returns the identifier shared with the matching public key.
func (k *PrivateKey) Identifier() []byte { return k.identifier }

// Bytes returns the raw private key material.
func (k *PrivateKey) Bytes() []byte { return k.material }

// PublicKey returns the matching public key handle.
func (k *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{
		keyType:    k.keyType,
		material:   k.public,
		identifier: k.identifier,
	}
}

// Destroy zeroizes the private key material. The handle must not be used
// afterwards.
func (k *PrivateKey) Destroy() {
	zeroize(k.material)
}

// KeyPair holds a freshly generated or imported private/public key pair.
type KeyPair struct {
	Private *PrivateKey
	Public  *PublicKey
}
