package crypto

import (
	"fmt"

	"github.com/quillsec/sealbox/crypto/envelope"
	"github.com/quillsec/sealbox/crypto/keys"
	"github.com/quillsec/sealbox/crypto/primitives"
)

// Encrypt encrypts data for one or more recipients and returns the
// ciphertext with the ContentInfo embedded as its prefix. Every recipient
// key must be capable of key agreement (Ed25519, Curve25519 or X448).
func (c *Cipher) Encrypt(data []byte, recipients ...*keys.PublicKey) ([]byte, error) {
	contentInfo, ciphertext, err := c.seal(data, recipients)
	if err != nil {
		return nil, err
	}
	return append(contentInfo, ciphertext...), nil
}

// EncryptDetached is Encrypt with the ContentInfo returned as a separate
// buffer instead of prefixing the ciphertext. The pair must be carried
// together; DecryptDetached needs both.
func (c *Cipher) EncryptDetached(data []byte, recipients ...*keys.PublicKey) (ciphertext, contentInfo []byte, err error) {
	contentInfo, ciphertext, err = c.seal(data, recipients)
	if err != nil {
		return nil, nil, err
	}
	return ciphertext, contentInfo, nil
}

// EncryptWithPassword encrypts data under a key derived from password with
// PBKDF2-HMAC-SHA512, returning ciphertext with embedded ContentInfo.
func (c *Cipher) EncryptWithPassword(data, password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", ErrInvalidArgument)
	}
	contentInfo, ciphertext, err := c.sealEnvelope(data, func(bulkKey []byte) ([]envelope.RecipientKeyWrap, error) {
		wrap, err := c.wrapForPassword(bulkKey, password)
		if err != nil {
			return nil, err
		}
		return []envelope.RecipientKeyWrap{*wrap}, nil
	})
	if err != nil {
		return nil, err
	}
	return append(contentInfo, ciphertext...), nil
}

func (c *Cipher) seal(data []byte, recipients []*keys.PublicKey) (contentInfo, ciphertext []byte, err error) {
	if len(recipients) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one recipient required", ErrInvalidArgument)
	}
	for i, r := range recipients {
		if r == nil {
			return nil, nil, fmt.Errorf("%w: recipient %d is nil", ErrInvalidArgument, i)
		}
		if !r.KeyType().CanAgree() {
			return nil, nil, fmt.Errorf("%w: %s keys cannot receive encrypted data",
				ErrInvalidArgument, r.KeyType())
		}
	}
	return c.sealEnvelope(data, func(bulkKey []byte) ([]envelope.RecipientKeyWrap, error) {
		wraps := make([]envelope.RecipientKeyWrap, 0, len(recipients))
		for _, r := range recipients {
			wrap, err := c.wrapForRecipient(bulkKey, r)
			if err != nil {
				return nil, err
			}
			wraps = append(wraps, *wrap)
		}
		return wraps, nil
	})
}

// sealEnvelope runs the common bulk encryption path: generate the bulk key
// and nonce, build the wrap records, serialize the ContentInfo and encrypt
// data under the bulk cipher with the serialized ContentInfo as AAD. The
// AAD binding is what turns any post-hoc envelope edit into an
// authentication failure at decrypt time.
func (c *Cipher) sealEnvelope(data []byte, makeWraps func(bulkKey []byte) ([]envelope.RecipientKeyWrap, error)) (contentInfo, ciphertext []byte, err error) {
	if !c.bulkAlg.Valid() {
		return nil, nil, fmt.Errorf("%w: bulk algorithm tag %d", ErrInvalidArgument, uint8(c.bulkAlg))
	}

	bulkKey, err := c.randomBytes(bulkKeySize)
	if err != nil {
		return nil, nil, err
	}
	defer primitives.Zeroize(bulkKey)

	nonce, err := c.randomBytes(primitives.AEADNonceSize)
	if err != nil {
		return nil, nil, err
	}

	wraps, err := makeWraps(bulkKey)
	if err != nil {
		return nil, nil, err
	}

	ci := &envelope.ContentInfo{
		BulkAlgorithm: c.bulkAlg,
		Nonce:         nonce,
		Recipients:    wraps,
	}
	contentInfo, err = ci.Marshal()
	if err != nil {
		return nil, nil, fmt.Errorf("marshal content info: %w", err)
	}

	ciphertext, err = primitives.Seal(c.bulkAlg, bulkKey, nonce, data, contentInfo)
	if err != nil {
		return nil, nil, primitiveError(err)
	}
	return contentInfo, ciphertext, nil
}

// wrapForRecipient encrypts the bulk key for one recipient: ephemeral DH
// against the recipient's agreement point, HKDF-SHA-512 keyed by the shared
// secret with the recipient identifier as context, then AES-256-GCM with
// the identifier as AAD.
func (c *Cipher) wrapForRecipient(bulkKey []byte, recipient *keys.PublicKey) (*envelope.RecipientKeyWrap, error) {
	curve, peerPublic, err := primitives.RecipientPublic(recipient)
	if err != nil {
		return nil, primitiveError(err)
	}

	ephemeralPrivate, ephemeralPublic, err := primitives.GenerateEphemeral(curve, c.random)
	if err != nil {
		return nil, primitiveError(err)
	}
	defer primitives.Zeroize(ephemeralPrivate)

	shared, err := primitives.SharedSecret(curve, ephemeralPrivate, peerPublic)
	if err != nil {
		return nil, primitiveError(err)
	}
	defer primitives.Zeroize(shared)

	identifier := recipient.Identifier()
	wrapKey, err := primitives.DeriveKey(shared, wrapKDFSalt, identifier, primitives.AEADKeySize)
	if err != nil {
		return nil, primitiveError(err)
	}
	defer primitives.Zeroize(wrapKey)

	wrapNonce, err := c.randomBytes(primitives.AEADNonceSize)
	if err != nil {
		return nil, err
	}

	wrapped, err := primitives.Seal(wrapAlgorithm, wrapKey, wrapNonce, bulkKey, identifier)
	if err != nil {
		return nil, primitiveError(err)
	}

	return &envelope.RecipientKeyWrap{
		Kind:               envelope.KindPublicKey,
		RecipientID:        append([]byte(nil), identifier...),
		Curve:              curve,
		EphemeralPublicKey: ephemeralPublic,
		WrapNonce:          wrapNonce,
		WrappedKey:         wrapped,
	}, nil
}

func (c *Cipher) wrapForPassword(bulkKey, password []byte) (*envelope.RecipientKeyWrap, error) {
	salt, err := c.randomBytes(passwordSaltSize)
	if err != nil {
		return nil, err
	}

	wrapKey := primitives.DeriveKeyFromPassword(password, salt, passwordIterations, primitives.AEADKeySize)
	defer primitives.Zeroize(wrapKey)

	wrapNonce, err := c.randomBytes(primitives.AEADNonceSize)
	if err != nil {
		return nil, err
	}

	wrapped, err := primitives.Seal(wrapAlgorithm, wrapKey, wrapNonce, bulkKey, salt)
	if err != nil {
		return nil, primitiveError(err)
	}

	return &envelope.RecipientKeyWrap{
		Kind:         envelope.KindPassword,
		KDFAlgorithm: envelope.KDFPBKDF2SHA512,
		Iterations:   passwordIterations,
		Salt:         salt,
		WrapNonce:    wrapNonce,
		WrappedKey:   wrapped,
	}, nil
}
