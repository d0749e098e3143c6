package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Encrypted private key blob layout (all integers big-endian):
//
//	[magic "SBXK":4][version:1][iterations:4][salt_len:1][salt][nonce_len:1][nonce][ciphertext+tag]
//
// The ciphertext is the PKCS#8 DER encoding of the key, sealed with
// AES-256-GCM under a PBKDF2-HMAC-SHA512 derived key.
const (
	encryptedKeyMagic   = "SBXK"
	encryptedKeyVersion = 1

	// encryptedKeyIterations is the PBKDF2 work factor for newly written
	// blobs. Import honors whatever iteration count the blob carries.
	encryptedKeyIterations = 210_000

	encryptedKeySaltSize  = 16
	encryptedKeyNonceSize = 12
	encryptedKeyKeySize   = 32

	maxEncryptedKeyIterations = 10_000_000
)

// MarshalEncrypted returns the private key sealed under a password. The
// password is the only way to recover the key; there is no recovery path.
func (k *PrivateKey) MarshalEncrypted(password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", ErrMalformedKey)
	}

	der, err := k.MarshalDER()
	if err != nil {
		return nil, err
	}
	defer zeroize(der)

	salt := make([]byte, encryptedKeySaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("read random salt: %w", err)
	}
	nonce := make([]byte, encryptedKeyNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("read random nonce: %w", err)
	}

	kek := pbkdf2.Key(password, salt, encryptedKeyIterations, encryptedKeyKeySize, sha512.New)
	defer zeroize(kek)

	aead, err := newKeyGCM(kek)
	if err != nil {
		return nil, err
	}
	sealed := aead.Seal(nil, nonce, der, []byte(encryptedKeyMagic))

	out := make([]byte, 0, 4+1+4+1+len(salt)+1+len(nonce)+len(sealed))
	out = append(out, encryptedKeyMagic...)
	out = append(out, encryptedKeyVersion)
	out = binary.BigEndian.AppendUint32(out, encryptedKeyIterations)
	out = append(out, byte(len(salt)))
	out = append(out, salt...)
	out = append(out, byte(len(nonce)))
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// ImportEncryptedPrivateKey unseals a blob written by MarshalEncrypted.
// A wrong password and a tampered blob are indistinguishable; both return
// ErrWrongPassword.
func ImportEncryptedPrivateKey(data, password []byte, scheme IdentifierScheme) (*PrivateKey, error) {
	if len(data) < 4+1+4+1+encryptedKeySaltSize+1+encryptedKeyNonceSize {
		return nil, fmt.Errorf("%w: encrypted key blob too short", ErrMalformedKey)
	}
	if string(data[:4]) != encryptedKeyMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedKey)
	}
	pos := 4
	if data[pos] != encryptedKeyVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedKey, data[pos])
	}
	pos++
	iterations := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	if iterations == 0 || iterations > maxEncryptedKeyIterations {
		return nil, fmt.Errorf("%w: implausible iteration count %d", ErrMalformedKey, iterations)
	}
	saltLen := int(data[pos])
	pos++
	if pos+saltLen > len(data) {
		return nil, fmt.Errorf("%w: truncated salt", ErrMalformedKey)
	}
	salt := data[pos : pos+saltLen]
	pos += saltLen
	if pos >= len(data) {
		return nil, fmt.Errorf("%w: truncated nonce", ErrMalformedKey)
	}
	nonceLen := int(data[pos])
	pos++
	if nonceLen != encryptedKeyNonceSize || pos+nonceLen > len(data) {
		return nil, fmt.Errorf("%w: invalid nonce", ErrMalformedKey)
	}
	nonce := data[pos : pos+nonceLen]
	pos += nonceLen
	sealed := data[pos:]

	kek := pbkdf2.Key(password, salt, int(iterations), encryptedKeyKeySize, sha512.New)
	defer zeroize(kek)

	aead, err := newKeyGCM(kek)
	if err != nil {
		return nil, err
	}
	der, err := aead.Open(nil, nonce, sealed, []byte(encryptedKeyMagic))
	if err != nil {
		return nil, ErrWrongPassword
	}
	defer zeroize(der)

	return ImportPrivateKey(der, scheme)
}

func newKeyGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return aead, nil
}
