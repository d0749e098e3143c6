package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/asn1"
	"encoding/pem"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/cloudflare/circl/dh/x448"
	circled448 "github.com/cloudflare/circl/sign/ed448"
	"golang.org/x/crypto/curve25519"
)

// RFC 8410 algorithm OIDs.
var (
	oidX25519  = asn1.ObjectIdentifier{1, 3, 101, 110}
	oidX448    = asn1.ObjectIdentifier{1, 3, 101, 111}
	oidEd25519 = asn1.ObjectIdentifier{1, 3, 101, 112}
	oidEd448   = asn1.ObjectIdentifier{1, 3, 101, 113}
)

// PEM block types accepted on import and produced on export.
const (
	pemTypePublic  = "PUBLIC KEY"
	pemTypePrivate = "PRIVATE KEY"
)

// algorithmIdentifier is the marshal-side AlgorithmIdentifier. RFC 8410
// requires the parameters field to be absent for these curves.
type algorithmIdentifier struct {
	Algorithm asn1.ObjectIdentifier
}

// algorithmIdentifierLoose is the parse-side form, tolerating a parameters
// field from non-conforming encoders.
type algorithmIdentifierLoose struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

// subjectPublicKeyInfo is the X.509 SubjectPublicKeyInfo structure.
type subjectPublicKeyInfo struct {
	Algorithm algorithmIdentifier
	PublicKey asn1.BitString
}

type subjectPublicKeyInfoLoose struct {
	Algorithm algorithmIdentifierLoose
	PublicKey asn1.BitString
}

// oneAsymmetricKey is the PKCS#8 (RFC 5958) private key structure.
// PrivateKey holds the DER OCTET STRING of the RFC 8410 CurvePrivateKey.
type oneAsymmetricKey struct {
	Version    int
	Algorithm  algorithmIdentifier
	PrivateKey []byte
}

type oneAsymmetricKeyLoose struct {
	Version    int
	Algorithm  algorithmIdentifierLoose
	PrivateKey []byte
	Attributes asn1.RawValue `asn1:"optional,tag:0"`
}

func oidForKeyType(t KeyType) (asn1.ObjectIdentifier, error) {
	switch t {
	case Ed25519:
		return oidEd25519, nil
	case Curve25519:
		return oidX25519, nil
	case Ed448:
		return oidEd448, nil
	case X448:
		return oidX448, nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedKeyType, uint8(t))
	}
}

func keyTypeForOID(oid asn1.ObjectIdentifier) (KeyType, error) {
	switch {
	case oid.Equal(oidEd25519):
		return Ed25519, nil
	case oid.Equal(oidX25519):
		return Curve25519, nil
	case oid.Equal(oidEd448):
		return Ed448, nil
	case oid.Equal(oidX448):
		return X448, nil
	default:
		return 0, fmt.Errorf("%w: OID %v", ErrUnsupportedKeyType, oid)
	}
}

// marshalPKIX produces the canonical SubjectPublicKeyInfo DER encoding for
// raw public key material. This encoding is also the input to identifier
// derivation, so it must stay byte-stable across versions.
func marshalPKIX(t KeyType, public []byte) ([]byte, error) {
	if len(public) != t.publicKeySize() {
		return nil, fmt.Errorf("%w: %s public key is %d bytes, want %d",
			ErrInvalidKeySize, t, len(public), t.publicKeySize())
	}
	oid, err := oidForKeyType(t)
	if err != nil {
		return nil, err
	}
	der, err := asn1.Marshal(subjectPublicKeyInfo{
		Algorithm: algorithmIdentifier{Algorithm: oid},
		PublicKey: asn1.BitString{Bytes: public, BitLength: len(public) * 8},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	return der, nil
}

// MarshalDER returns the PKIX SubjectPublicKeyInfo DER encoding.
func (k *PublicKey) MarshalDER() ([]byte, error) {
	return marshalPKIX(k.keyType, k.material)
}

// MarshalPEM returns the public key as a "PUBLIC KEY" PEM block.
func (k *PublicKey) MarshalPEM() ([]byte, error) {
	der, err := k.MarshalDER()
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePublic, Bytes: der}), nil
}

// MarshalDER returns the PKCS#8 DER encoding of the private key.
func (k *PrivateKey) MarshalDER() ([]byte, error) {
	seed, err := k.seed()
	if err != nil {
		return nil, err
	}
	oid, err := oidForKeyType(k.keyType)
	if err != nil {
		return nil, err
	}
	curvePrivateKey, err := asn1.Marshal(seed)
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}
	der, err := asn1.Marshal(oneAsymmetricKey{
		Version:    0,
		Algorithm:  algorithmIdentifier{Algorithm: oid},
		PrivateKey: curvePrivateKey,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}
	return der, nil
}

// MarshalPEM returns the private key as a "PRIVATE KEY" PEM block.
func (k *PrivateKey) MarshalPEM() ([]byte, error) {
	der, err := k.MarshalDER()
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePrivate, Bytes: der}), nil
}

// seed returns the RFC 8410 CurvePrivateKey content for the key: the seed
// for the Edwards types, the scalar for the Montgomery types.
func (k *PrivateKey) seed() ([]byte, error) {
	switch k.keyType {
	case Ed25519:
		if len(k.material) != ed25519.PrivateKeySize {
			return nil, ErrInvalidKeySize
		}
		return k.material[:ed25519.SeedSize], nil
	case Curve25519:
		if len(k.material) != curve25519.ScalarSize {
			return nil, ErrInvalidKeySize
		}
		return k.material, nil
	case Ed448:
		if len(k.material) != circled448.PrivateKeySize {
			return nil, ErrInvalidKeySize
		}
		return circled448.PrivateKey(k.material).Seed(), nil
	case X448:
		if len(k.material) != x448.Size {
			return nil, ErrInvalidKeySize
		}
		return k.material, nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedKeyType, uint8(k.keyType))
	}
}

// decodePossiblePEM accepts either a PEM block of the given type or raw DER.
func decodePossiblePEM(data []byte, blockType string) ([]byte, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("-----BEGIN")) {
		return data, nil
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: invalid PEM", ErrMalformedKey)
	}
	if block.Type != blockType {
		return nil, fmt.Errorf("%w: unexpected PEM block %q, want %q",
			ErrMalformedKey, block.Type, blockType)
	}
	return block.Bytes, nil
}

// ImportPublicKey parses a PEM- or DER-encoded public key and derives its
// identifier under the given scheme.
func ImportPublicKey(data []byte, scheme IdentifierScheme) (*PublicKey, error) {
	if !scheme.valid() {
		return nil, fmt.Errorf("unknown identifier scheme %d", uint8(scheme))
	}
	der, err := decodePossiblePEM(data, pemTypePublic)
	if err != nil {
		return nil, err
	}

	var spki subjectPublicKeyInfoLoose
	if _, err := asn1.Unmarshal(der, &spki); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	t, err := keyTypeForOID(spki.Algorithm.Algorithm)
	if err != nil {
		return nil, err
	}
	material := spki.PublicKey.Bytes
	if len(material) != t.publicKeySize() || spki.PublicKey.BitLength != len(material)*8 {
		return nil, fmt.Errorf("%w: %s public key is %d bytes, want %d",
			ErrInvalidKeySize, t, len(material), t.publicKeySize())
	}
	if t == Ed25519 {
		// Reject encodings that are not valid curve points up front so
		// the failure surfaces at import, not mid-encryption.
		if _, err := new(edwards25519.Point).SetBytes(material); err != nil {
			return nil, fmt.Errorf("%w: not a valid Ed25519 point", ErrMalformedKey)
		}
	}

	canonical, err := marshalPKIX(t, material)
	if err != nil {
		return nil, err
	}
	id, err := scheme.Derive(canonical)
	if err != nil {
		return nil, err
	}
	return &PublicKey{
		keyType:    t,
		material:   append([]byte(nil), material...),
		identifier: id,
	}, nil
}

// ImportPrivateKey parses a PEM- or DER-encoded PKCS#8 private key,
// reconstructs the matching public key, and derives the identifier under
// the given scheme.
func ImportPrivateKey(data []byte, scheme IdentifierScheme) (*PrivateKey, error) {
	if !scheme.valid() {
		return nil, fmt.Errorf("unknown identifier scheme %d", uint8(scheme))
	}
	der, err := decodePossiblePEM(data, pemTypePrivate)
	if err != nil {
		return nil, err
	}

	var pkcs8 oneAsymmetricKeyLoose
	if _, err := asn1.Unmarshal(der, &pkcs8); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	t, err := keyTypeForOID(pkcs8.Algorithm.Algorithm)
	if err != nil {
		return nil, err
	}
	var seed []byte
	if _, err := asn1.Unmarshal(pkcs8.PrivateKey, &seed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}

	private, public, err := expandSeed(t, seed)
	if err != nil {
		return nil, err
	}
	pair, err := newKeyPair(t, private, public, scheme)
	if err != nil {
		return nil, err
	}
	return pair.Private, nil
}

// expandSeed rebuilds full private key material and the public key from the
// PKCS#8 seed or scalar.
func expandSeed(t KeyType, seed []byte) (private, public []byte, err error) {
	switch t {
	case Ed25519:
		if len(seed) != ed25519.SeedSize {
			return nil, nil, ErrInvalidKeySize
		}
		priv := ed25519.NewKeyFromSeed(seed)
		return priv, append([]byte(nil), priv[ed25519.SeedSize:]...), nil

	case Curve25519:
		if len(seed) != curve25519.ScalarSize {
			return nil, nil, ErrInvalidKeySize
		}
		point, err := curve25519.X25519(seed, curve25519.Basepoint)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		return append([]byte(nil), seed...), point, nil

	case Ed448:
		if len(seed) != circled448.SeedSize {
			return nil, nil, ErrInvalidKeySize
		}
		priv := circled448.NewKeyFromSeed(seed)
		pub := priv.Public().(circled448.PublicKey)
		return priv, append([]byte(nil), pub...), nil

	case X448:
		if len(seed) != x448.Size {
			return nil, nil, ErrInvalidKeySize
		}
		var secret, point x448.Key
		copy(secret[:], seed)
		x448.KeyGen(&point, &secret)
		private = append([]byte(nil), secret[:]...)
		zeroize(secret[:])
		return private, append([]byte(nil), point[:]...), nil

	default:
		return nil, nil, fmt.Errorf("%w: tag %d", ErrUnsupportedKeyType, uint8(t))
	}
}
