package keys

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
)

// IdentifierScheme selects how a key identifier is derived from the PKIX DER
// encoding of the public key. The scheme is fixed for the lifetime of a
// crypto engine instance: envelopes written under one scheme can only be
// matched by keys imported under the same scheme, so mixing schemes within
// one engine would make recipient lookup ambiguous.
type IdentifierScheme uint8

const (
	// SchemeSHA512 derives the identifier as the first 8 bytes of
	// SHA-512(publicKeyDER). This is the current scheme.
	SchemeSHA512 IdentifierScheme = 1
	// SchemeSHA256 derives the identifier as the full
	// SHA-256(publicKeyDER). This is the legacy scheme, kept for
	// compatibility with envelopes produced by older SDK versions.
	SchemeSHA256 IdentifierScheme = 2
)

// sha512IdentifierLen is the truncation length under SchemeSHA512.
const sha512IdentifierLen = 8

// String returns a human-readable scheme name.
func (s IdentifierScheme) String() string {
	switch s {
	case SchemeSHA512:
		return "SHA512/8"
	case SchemeSHA256:
		return "SHA256"
	default:
		return "UNKNOWN"
	}
}

func (s IdentifierScheme) valid() bool {
	return s == SchemeSHA512 || s == SchemeSHA256
}

// Derive computes the key identifier for a DER-encoded public key.
func (s IdentifierScheme) Derive(publicKeyDER []byte) ([]byte, error) {
	switch s {
	case SchemeSHA512:
		digest := sha512.Sum512(publicKeyDER)
		return digest[:sha512IdentifierLen], nil
	case SchemeSHA256:
		digest := sha256.Sum256(publicKeyDER)
		return digest[:], nil
	default:
		return nil, fmt.Errorf("unknown identifier scheme %d", uint8(s))
	}
}
