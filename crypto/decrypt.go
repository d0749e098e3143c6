package crypto

import (
	"fmt"

	"github.com/quillsec/sealbox/crypto/envelope"
	"github.com/quillsec/sealbox/crypto/keys"
	"github.com/quillsec/sealbox/crypto/primitives"
)

// Decrypt decrypts ciphertext produced by Encrypt (embedded ContentInfo)
// with the given private key. The key's identifier must match one of the
// envelope's wrap records; otherwise ErrRecipientNotFound is returned and
// no unwrap is attempted.
func (c *Cipher) Decrypt(ciphertext []byte, with *keys.PrivateKey) ([]byte, error) {
	ci, contentInfo, bulkCiphertext, err := parseEmbedded(ciphertext)
	if err != nil {
		return nil, err
	}
	return c.open(ci, contentInfo, bulkCiphertext, with)
}

// DecryptDetached decrypts a bare ciphertext whose ContentInfo travels in a
// separate buffer, as produced by EncryptDetached.
func (c *Cipher) DecryptDetached(ciphertext, contentInfo []byte, with *keys.PrivateKey) ([]byte, error) {
	ci, canonical, err := parseDetached(contentInfo)
	if err != nil {
		return nil, err
	}
	return c.open(ci, canonical, ciphertext, with)
}

// DecryptWithPassword decrypts ciphertext produced by EncryptWithPassword.
// A wrong password surfaces as an integrity failure, indistinguishable
// from tampering.
func (c *Cipher) DecryptWithPassword(ciphertext, password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", ErrInvalidArgument)
	}
	ci, contentInfo, bulkCiphertext, err := parseEmbedded(ciphertext)
	if err != nil {
		return nil, err
	}

	wrap, ok := ci.FindPassword()
	if !ok {
		return nil, fmt.Errorf("%w: no password recipient", ErrRecipientNotFound)
	}
	if wrap.Iterations > maxPasswordIterations {
		return nil, fmt.Errorf("%w: KDF work factor %d too large", ErrInvalidArgument, wrap.Iterations)
	}

	wrapKey := primitives.DeriveKeyFromPassword(password, wrap.Salt, int(wrap.Iterations), primitives.AEADKeySize)
	defer primitives.Zeroize(wrapKey)

	bulkKey, err := primitives.Open(wrapAlgorithm, wrapKey, wrap.WrapNonce, wrap.WrappedKey, wrap.Salt)
	if err != nil {
		return nil, newIntegrityError(CauseCipherAuthentication, err)
	}
	defer primitives.Zeroize(bulkKey)

	return c.openBulk(ci, contentInfo, bulkCiphertext, bulkKey)
}

// parseEmbedded splits ciphertext into the parsed ContentInfo, its exact
// serialized bytes and the trailing bulk ciphertext.
func parseEmbedded(data []byte) (*envelope.ContentInfo, []byte, []byte, error) {
	ci, consumed, trailing, err := envelope.Unmarshal(data)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return ci, data[:consumed], trailing, nil
}

// parseDetached parses a standalone ContentInfo buffer. Trailing bytes mean
// the caller passed an embedded envelope where detached metadata was
// expected.
func parseDetached(contentInfo []byte) (*envelope.ContentInfo, []byte, error) {
	ci, consumed, trailing, err := envelope.Unmarshal(contentInfo)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if len(trailing) != 0 {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes after detached content info",
			ErrInvalidArgument, len(trailing))
	}
	return ci, contentInfo[:consumed], nil
}

func (c *Cipher) open(ci *envelope.ContentInfo, contentInfo, bulkCiphertext []byte, with *keys.PrivateKey) ([]byte, error) {
	if with == nil {
		return nil, fmt.Errorf("%w: nil private key", ErrInvalidArgument)
	}
	if !with.KeyType().CanAgree() {
		return nil, fmt.Errorf("%w: %s keys cannot decrypt", ErrInvalidArgument, with.KeyType())
	}

	identifier := with.Identifier()
	wrap, ok := ci.FindRecipient(identifier)
	if !ok {
		return nil, fmt.Errorf("%w: key %x matches none of %d wrap records",
			ErrRecipientNotFound, identifier, len(ci.Recipients))
	}

	shared, err := primitives.Agree(with, wrap.Curve, wrap.EphemeralPublicKey)
	if err != nil {
		return nil, primitiveError(err)
	}
	defer primitives.Zeroize(shared)

	wrapKey, err := primitives.DeriveKey(shared, wrapKDFSalt, wrap.RecipientID, primitives.AEADKeySize)
	if err != nil {
		return nil, primitiveError(err)
	}
	defer primitives.Zeroize(wrapKey)

	bulkKey, err := primitives.Open(wrapAlgorithm, wrapKey, wrap.WrapNonce, wrap.WrappedKey, wrap.RecipientID)
	if err != nil {
		return nil, newIntegrityError(CauseCipherAuthentication, err)
	}
	defer primitives.Zeroize(bulkKey)

	return c.openBulk(ci, contentInfo, bulkCiphertext, bulkKey)
}

func (c *Cipher) openBulk(ci *envelope.ContentInfo, contentInfo, bulkCiphertext, bulkKey []byte) ([]byte, error) {
	plaintext, err := primitives.Open(ci.BulkAlgorithm, bulkKey, ci.Nonce, bulkCiphertext, contentInfo)
	if err != nil {
		return nil, newIntegrityError(CauseCipherAuthentication, err)
	}
	return plaintext, nil
}
