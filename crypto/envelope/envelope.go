// Package envelope implements the ContentInfo wire format: the
// self-describing metadata structure carrying the bulk cipher parameters
// and one wrapped-key record per recipient.
//
// Layout (all integers big-endian):
//
//	header:    [magic "SBOX":4][version:1][flags:1][body_len:4]
//	body:      [bulk_alg:1][nonce_len:1][nonce][recipient_count:2][records...]
//	key record (kind 1, public-key recipient):
//	           [kind:1][id_len:1][recipient_id][curve:1][eph_len:2][ephemeral_pub]
//	           [wrap_nonce_len:1][wrap_nonce][wrapped_len:2][wrapped_key]
//	key record (kind 2, password recipient):
//	           [kind:1][kdf:1][iterations:4][salt_len:1][salt]
//	           [wrap_nonce_len:1][wrap_nonce][wrapped_len:2][wrapped_key]
//
// body_len makes the structure self-describing: in embedded placement the
// ContentInfo is a prefix of the ciphertext and Unmarshal returns the bulk
// ciphertext as the trailing bytes; in detached placement the ContentInfo
// is a standalone buffer with no trailer.
package envelope

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/quillsec/sealbox/crypto/primitives"
)

const (
	// Magic identifies a serialized ContentInfo.
	Magic = "SBOX"
	// Version is the current wire format version.
	Version = 1
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrMalformed is returned when a buffer is not a valid ContentInfo.
	ErrMalformed = errors.New("malformed content info")

	// ErrUnsupportedVersion is returned for a valid header with an
	// unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported content info version")
)

// RecipientKind discriminates the two wrap record layouts.
type RecipientKind uint8

const (
	// KindPublicKey wraps the bulk key for an asymmetric recipient.
	KindPublicKey RecipientKind = 1
	// KindPassword wraps the bulk key under a password-derived key.
	KindPassword RecipientKind = 2
)

// KDFPBKDF2SHA512 is the only password KDF tag currently defined.
const KDFPBKDF2SHA512 uint8 = 1

const (
	headerSize    = 4 + 1 + 1 + 4
	maxRecipients = 1 << 15
	maxBodyLen    = 1 << 24
)

// RecipientKeyWrap is one wrapped-key record. Records are created during
// encryption and immutable thereafter.
type RecipientKeyWrap struct {
	Kind RecipientKind

	// Public-key recipients.
	RecipientID        []byte
	Curve              primitives.Curve
	EphemeralPublicKey []byte

	// Password recipients.
	KDFAlgorithm uint8
	Iterations   uint32
	Salt         []byte

	// Common.
	WrapNonce  []byte
	WrappedKey []byte
}

// ContentInfo is the envelope metadata: the bulk cipher parameters plus the
// ordered recipient wrap records.
type ContentInfo struct {
	BulkAlgorithm primitives.AEADAlgorithm
	Nonce         []byte
	Recipients    []RecipientKeyWrap
}

// FindRecipient returns the first public-key wrap record whose recipient
// identifier equals id. Identifier matching is exact-length byte equality;
// identifiers are public metadata, not secrets.
func (ci *ContentInfo) FindRecipient(id []byte) (*RecipientKeyWrap, bool) {
	if len(id) == 0 {
		return nil, false
	}
	for i := range ci.Recipients {
		w := &ci.Recipients[i]
		if w.Kind == KindPublicKey && bytes.Equal(w.RecipientID, id) {
			return w, true
		}
	}
	return nil, false
}

// FindPassword returns the first password wrap record, if any.
func (ci *ContentInfo) FindPassword() (*RecipientKeyWrap, bool) {
	for i := range ci.Recipients {
		if ci.Recipients[i].Kind == KindPassword {
			return &ci.Recipients[i], true
		}
	}
	return nil, false
}

// Marshal serializes the ContentInfo.
func (ci *ContentInfo) Marshal() ([]byte, error) {
	if !ci.BulkAlgorithm.Valid() {
		return nil, fmt.Errorf("%w: bulk algorithm tag %d", ErrMalformed, uint8(ci.BulkAlgorithm))
	}
	if len(ci.Nonce) > 0xff {
		return nil, fmt.Errorf("%w: nonce too long", ErrMalformed)
	}
	if len(ci.Recipients) == 0 || len(ci.Recipients) > maxRecipients {
		return nil, fmt.Errorf("%w: %d recipients", ErrMalformed, len(ci.Recipients))
	}

	var body []byte
	body = append(body, byte(ci.BulkAlgorithm))
	body = append(body, byte(len(ci.Nonce)))
	body = append(body, ci.Nonce...)
	body = binary.BigEndian.AppendUint16(body, uint16(len(ci.Recipients)))

	for i := range ci.Recipients {
		var err error
		body, err = appendRecipient(body, &ci.Recipients[i])
		if err != nil {
			return nil, err
		}
	}

	out := make([]byte, 0, headerSize+len(body))
	out = append(out, Magic...)
	out = append(out, Version)
	out = append(out, 0) // flags, reserved
	out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
	out = append(out, body...)
	return out, nil
}

func appendRecipient(body []byte, w *RecipientKeyWrap) ([]byte, error) {
	if len(w.WrapNonce) > 0xff || len(w.WrappedKey) == 0 || len(w.WrappedKey) > 0xffff {
		return nil, fmt.Errorf("%w: bad wrap record sizes", ErrMalformed)
	}
	switch w.Kind {
	case KindPublicKey:
		if len(w.RecipientID) == 0 || len(w.RecipientID) > 0xff {
			return nil, fmt.Errorf("%w: recipient identifier length %d", ErrMalformed, len(w.RecipientID))
		}
		if !w.Curve.Valid() || len(w.EphemeralPublicKey) != w.Curve.PublicKeySize() {
			return nil, fmt.Errorf("%w: bad ephemeral key for %s", ErrMalformed, w.Curve)
		}
		body = append(body, byte(KindPublicKey))
		body = append(body, byte(len(w.RecipientID)))
		body = append(body, w.RecipientID...)
		body = append(body, byte(w.Curve))
		body = binary.BigEndian.AppendUint16(body, uint16(len(w.EphemeralPublicKey)))
		body = append(body, w.EphemeralPublicKey...)

	case KindPassword:
		if w.KDFAlgorithm != KDFPBKDF2SHA512 {
			return nil, fmt.Errorf("%w: KDF tag %d", ErrMalformed, w.KDFAlgorithm)
		}
		if w.Iterations == 0 || len(w.Salt) == 0 || len(w.Salt) > 0xff {
			return nil, fmt.Errorf("%w: bad password KDF parameters", ErrMalformed)
		}
		body = append(body, byte(KindPassword))
		body = append(body, w.KDFAlgorithm)
		body = binary.BigEndian.AppendUint32(body, w.Iterations)
		body = append(body, byte(len(w.Salt)))
		body = append(body, w.Salt...)

	default:
		return nil, fmt.Errorf("%w: recipient kind %d", ErrMalformed, uint8(w.Kind))
	}

	body = append(body, byte(len(w.WrapNonce)))
	body = append(body, w.WrapNonce...)
	body = binary.BigEndian.AppendUint16(body, uint16(len(w.WrappedKey)))
	body = append(body, w.WrappedKey...)
	return body, nil
}

// reader is an incremental bounds-checked parser over a byte slice.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrMalformed, r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Unmarshal parses a ContentInfo from the front of data. It returns the
// parsed structure, the number of bytes it occupied, and any trailing
// bytes (the bulk ciphertext, in embedded placement). Parsed slices alias
// data; callers must not modify the input afterwards.
func Unmarshal(data []byte) (ci *ContentInfo, consumed int, trailing []byte, err error) {
	if len(data) < headerSize {
		return nil, 0, nil, fmt.Errorf("%w: shorter than header", ErrMalformed)
	}
	if string(data[:4]) != Magic {
		return nil, 0, nil, fmt.Errorf("%w: bad magic", ErrMalformed)
	}
	if data[4] != Version {
		return nil, 0, nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, data[4])
	}
	if data[5] != 0 {
		return nil, 0, nil, fmt.Errorf("%w: unknown flags 0x%02x", ErrMalformed, data[5])
	}
	bodyLen := binary.BigEndian.Uint32(data[6:10])
	if bodyLen > maxBodyLen {
		return nil, 0, nil, fmt.Errorf("%w: implausible body length %d", ErrMalformed, bodyLen)
	}
	total := headerSize + int(bodyLen)
	if total > len(data) {
		return nil, 0, nil, fmt.Errorf("%w: body truncated", ErrMalformed)
	}

	r := &reader{buf: data[headerSize:total]}
	ci = &ContentInfo{}

	alg, err := r.byte()
	if err != nil {
		return nil, 0, nil, err
	}
	ci.BulkAlgorithm = primitives.AEADAlgorithm(alg)
	if !ci.BulkAlgorithm.Valid() {
		return nil, 0, nil, fmt.Errorf("%w: bulk algorithm tag %d", ErrMalformed, alg)
	}

	nonceLen, err := r.byte()
	if err != nil {
		return nil, 0, nil, err
	}
	if ci.Nonce, err = r.take(int(nonceLen)); err != nil {
		return nil, 0, nil, err
	}

	count, err := r.uint16()
	if err != nil {
		return nil, 0, nil, err
	}
	if count == 0 {
		return nil, 0, nil, fmt.Errorf("%w: zero recipients", ErrMalformed)
	}

	ci.Recipients = make([]RecipientKeyWrap, 0, count)
	for i := 0; i < int(count); i++ {
		w, err := parseRecipient(r)
		if err != nil {
			return nil, 0, nil, err
		}
		ci.Recipients = append(ci.Recipients, *w)
	}

	if r.pos != len(r.buf) {
		return nil, 0, nil, fmt.Errorf("%w: %d unconsumed body bytes", ErrMalformed, len(r.buf)-r.pos)
	}
	return ci, total, data[total:], nil
}

func parseRecipient(r *reader) (*RecipientKeyWrap, error) {
	kind, err := r.byte()
	if err != nil {
		return nil, err
	}

	w := &RecipientKeyWrap{Kind: RecipientKind(kind)}
	switch w.Kind {
	case KindPublicKey:
		idLen, err := r.byte()
		if err != nil {
			return nil, err
		}
		if idLen == 0 {
			return nil, fmt.Errorf("%w: empty recipient identifier", ErrMalformed)
		}
		if w.RecipientID, err = r.take(int(idLen)); err != nil {
			return nil, err
		}
		curve, err := r.byte()
		if err != nil {
			return nil, err
		}
		w.Curve = primitives.Curve(curve)
		if !w.Curve.Valid() {
			return nil, fmt.Errorf("%w: curve tag %d", ErrMalformed, curve)
		}
		ephLen, err := r.uint16()
		if err != nil {
			return nil, err
		}
		if int(ephLen) != w.Curve.PublicKeySize() {
			return nil, fmt.Errorf("%w: %s ephemeral key is %d bytes", ErrMalformed, w.Curve, ephLen)
		}
		if w.EphemeralPublicKey, err = r.take(int(ephLen)); err != nil {
			return nil, err
		}

	case KindPassword:
		if w.KDFAlgorithm, err = r.byte(); err != nil {
			return nil, err
		}
		if w.KDFAlgorithm != KDFPBKDF2SHA512 {
			return nil, fmt.Errorf("%w: KDF tag %d", ErrMalformed, w.KDFAlgorithm)
		}
		if w.Iterations, err = r.uint32(); err != nil {
			return nil, err
		}
		if w.Iterations == 0 {
			return nil, fmt.Errorf("%w: zero KDF iterations", ErrMalformed)
		}
		saltLen, err := r.byte()
		if err != nil {
			return nil, err
		}
		if saltLen == 0 {
			return nil, fmt.Errorf("%w: empty KDF salt", ErrMalformed)
		}
		if w.Salt, err = r.take(int(saltLen)); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: recipient kind %d", ErrMalformed, kind)
	}

	nonceLen, err := r.byte()
	if err != nil {
		return nil, err
	}
	if w.WrapNonce, err = r.take(int(nonceLen)); err != nil {
		return nil, err
	}
	wrappedLen, err := r.uint16()
	if err != nil {
		return nil, err
	}
	if wrappedLen == 0 {
		return nil, fmt.Errorf("%w: empty wrapped key", ErrMalformed)
	}
	if w.WrappedKey, err = r.take(int(wrappedLen)); err != nil {
		return nil, err
	}
	return w, nil
}
