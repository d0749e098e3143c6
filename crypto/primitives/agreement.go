package primitives

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/cloudflare/circl/dh/x448"
	"golang.org/x/crypto/curve25519"

	"github.com/quillsec/sealbox/crypto/keys"
)

// Curve identifies the Diffie-Hellman group an ephemeral key lives on. The
// numeric values are part of the envelope wire format.
type Curve uint8

const (
	// CurveX25519 is the Montgomery form of Curve25519 (RFC 7748).
	CurveX25519 Curve = 1
	// CurveX448 is Curve448 (RFC 7748).
	CurveX448 Curve = 2
)

// String returns the RFC 7748 function name.
func (c Curve) String() string {
	switch c {
	case CurveX25519:
		return "X25519"
	case CurveX448:
		return "X448"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether the tag names a supported group.
func (c Curve) Valid() bool {
	return c == CurveX25519 || c == CurveX448
}

// PublicKeySize returns the encoded public point length for the group.
func (c Curve) PublicKeySize() int {
	switch c {
	case CurveX25519:
		return curve25519.PointSize
	case CurveX448:
		return x448.Size
	default:
		return 0
	}
}

// RecipientPublic maps a recipient public key handle to the DH group and
// public point used for key agreement with it. Ed25519 keys are converted
// to their X25519 form; Curve25519 and X448 keys are used directly.
func RecipientPublic(pub *keys.PublicKey) (Curve, []byte, error) {
	switch pub.KeyType() {
	case keys.Ed25519:
		point, err := keys.Ed25519ToX25519PublicKey(ed25519.PublicKey(pub.Bytes()))
		if err != nil {
			return 0, nil, err
		}
		return CurveX25519, point, nil
	case keys.Curve25519:
		return CurveX25519, pub.Bytes(), nil
	case keys.X448:
		return CurveX448, pub.Bytes(), nil
	default:
		return 0, nil, fmt.Errorf("%w: %s keys cannot perform key agreement",
			ErrUnsupportedAlgorithm, pub.KeyType())
	}
}

// GenerateEphemeral creates a one-shot DH key pair on the given group from
// the supplied random source. The private scalar must be zeroized by the
// caller as soon as the shared secret has been computed.
func GenerateEphemeral(c Curve, random io.Reader) (private, public []byte, err error) {
	switch c {
	case CurveX25519:
		scalar := make([]byte, curve25519.ScalarSize)
		if _, err := io.ReadFull(random, scalar); err != nil {
			return nil, nil, fmt.Errorf("read random scalar: %w", err)
		}
		point, err := curve25519.X25519(scalar, curve25519.Basepoint)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrKeyAgreement, err)
		}
		return scalar, point, nil

	case CurveX448:
		var secret, point x448.Key
		if _, err := io.ReadFull(random, secret[:]); err != nil {
			return nil, nil, fmt.Errorf("read random scalar: %w", err)
		}
		x448.KeyGen(&point, &secret)
		private = append([]byte(nil), secret[:]...)
		zeroize(secret[:])
		return private, append([]byte(nil), point[:]...), nil

	default:
		return nil, nil, fmt.Errorf("%w: curve tag %d", ErrUnsupportedAlgorithm, uint8(c))
	}
}

// SharedSecret computes the DH shared secret between a private scalar and a
// peer public point on the given group. Low-order peer points are rejected.
func SharedSecret(c Curve, private, peerPublic []byte) ([]byte, error) {
	switch c {
	case CurveX25519:
		if len(private) != curve25519.ScalarSize || len(peerPublic) != curve25519.PointSize {
			return nil, fmt.Errorf("%w: bad X25519 input sizes", ErrKeyAgreement)
		}
		shared, err := curve25519.X25519(private, peerPublic)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyAgreement, err)
		}
		return shared, nil

	case CurveX448:
		if len(private) != x448.Size || len(peerPublic) != x448.Size {
			return nil, fmt.Errorf("%w: bad X448 input sizes", ErrKeyAgreement)
		}
		var secret, point, shared x448.Key
		copy(secret[:], private)
		copy(point[:], peerPublic)
		ok := x448.Shared(&shared, &secret, &point)
		zeroize(secret[:])
		if !ok {
			return nil, fmt.Errorf("%w: low-order X448 point", ErrKeyAgreement)
		}
		out := append([]byte(nil), shared[:]...)
		zeroize(shared[:])
		return out, nil

	default:
		return nil, fmt.Errorf("%w: curve tag %d", ErrUnsupportedAlgorithm, uint8(c))
	}
}

// Agree computes the shared secret between a recipient private key and the
// ephemeral public point stored in its envelope wrap record. The private
// key's algorithm tag must be compatible with the wrap's group.
func Agree(priv *keys.PrivateKey, c Curve, ephemeralPublic []byte) ([]byte, error) {
	switch priv.KeyType() {
	case keys.Ed25519:
		if c != CurveX25519 {
			return nil, fmt.Errorf("%w: %s key against %s wrap", ErrKeyAgreement, priv.KeyType(), c)
		}
		scalar, err := keys.Ed25519ToX25519PrivateKey(ed25519.PrivateKey(priv.Bytes()))
		if err != nil {
			return nil, err
		}
		defer zeroize(scalar)
		return SharedSecret(c, scalar, ephemeralPublic)

	case keys.Curve25519:
		if c != CurveX25519 {
			return nil, fmt.Errorf("%w: %s key against %s wrap", ErrKeyAgreement, priv.KeyType(), c)
		}
		return SharedSecret(c, priv.Bytes(), ephemeralPublic)

	case keys.X448:
		if c != CurveX448 {
			return nil, fmt.Errorf("%w: %s key against %s wrap", ErrKeyAgreement, priv.KeyType(), c)
		}
		return SharedSecret(c, priv.Bytes(), ephemeralPublic)

	default:
		return nil, fmt.Errorf("%w: %s keys cannot perform key agreement",
			ErrUnsupportedAlgorithm, priv.KeyType())
	}
}
