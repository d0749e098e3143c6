package crypto

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/quillsec/sealbox/crypto/keys"
	"github.com/quillsec/sealbox/crypto/primitives"
)

// signatureDigest is the hash signed by Sign and checked by
// VerifySignature. Fixed for wire compatibility.
const signatureDigest = primitives.HashSHA512

// signedPayloadTrailerSize is the length suffix appended after the
// signature in a signed payload.
const signedPayloadTrailerSize = 4

// Sign computes a signature over the SHA-512 digest of data. The signer
// must be a signing-capable key (Ed25519 or Ed448).
func (c *Cipher) Sign(data []byte, signer *keys.PrivateKey) ([]byte, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: nil signer", ErrInvalidArgument)
	}
	if !signer.KeyType().CanSign() {
		return nil, fmt.Errorf("%w: %s keys cannot sign", ErrInvalidArgument, signer.KeyType())
	}
	digest, err := primitives.Hash(signatureDigest, data)
	if err != nil {
		return nil, primitiveError(err)
	}
	signature, err := primitives.Sign(signer, digest)
	if err != nil {
		return nil, primitiveError(err)
	}
	return signature, nil
}

// VerifySignature checks a signature produced by Sign. A signature that
// does not verify returns ErrIntegrityCheckFailed.
func (c *Cipher) VerifySignature(data, signature []byte, signer *keys.PublicKey) error {
	if signer == nil {
		return fmt.Errorf("%w: nil signer", ErrInvalidArgument)
	}
	if !signer.KeyType().CanSign() {
		return fmt.Errorf("%w: %s keys cannot verify signatures", ErrInvalidArgument, signer.KeyType())
	}
	digest, err := primitives.Hash(signatureDigest, data)
	if err != nil {
		return primitiveError(err)
	}
	err = primitives.Verify(signer, digest, signature)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, primitives.ErrVerificationFailed):
		return newIntegrityError(CauseSignatureVerification, err)
	default:
		return primitiveError(err)
	}
}

// SignThenEncrypt signs data with the signer's key and encrypts the signed
// payload for the recipients. The signature travels inside the ciphertext;
// an observer learns nothing about who signed.
func (c *Cipher) SignThenEncrypt(data []byte, signer *keys.PrivateKey, recipients ...*keys.PublicKey) ([]byte, error) {
	payload, err := c.buildSignedPayload(data, signer)
	if err != nil {
		return nil, err
	}
	return c.Encrypt(payload, recipients...)
}

// SignThenEncryptDetached is SignThenEncrypt with detached ContentInfo.
func (c *Cipher) SignThenEncryptDetached(data []byte, signer *keys.PrivateKey, recipients ...*keys.PublicKey) (ciphertext, contentInfo []byte, err error) {
	payload, err := c.buildSignedPayload(data, signer)
	if err != nil {
		return nil, nil, err
	}
	return c.EncryptDetached(payload, recipients...)
}

// DecryptThenVerify decrypts ciphertext with the private key and verifies
// the embedded signature against the candidate signer keys. The first
// candidate whose verification succeeds wins; if none does, the plaintext
// is withheld and ErrIntegrityCheckFailed is returned.
func (c *Cipher) DecryptThenVerify(ciphertext []byte, with *keys.PrivateKey, signers ...*keys.PublicKey) ([]byte, error) {
	payload, err := c.Decrypt(ciphertext, with)
	if err != nil {
		return nil, err
	}
	return c.verifySignedPayload(payload, signers)
}

// DecryptThenVerifyDetached is DecryptThenVerify for detached envelopes.
func (c *Cipher) DecryptThenVerifyDetached(ciphertext, contentInfo []byte, with *keys.PrivateKey, signers ...*keys.PublicKey) ([]byte, error) {
	payload, err := c.DecryptDetached(ciphertext, contentInfo, with)
	if err != nil {
		return nil, err
	}
	return c.verifySignedPayload(payload, signers)
}

// buildSignedPayload appends the signature and a big-endian length trailer
// to data: data || signature || sig_len(4). The trailer sits at the end so
// the payload can be split without knowing the signature size up front.
func (c *Cipher) buildSignedPayload(data []byte, signer *keys.PrivateKey) ([]byte, error) {
	signature, err := c.Sign(data, signer)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 0, len(data)+len(signature)+signedPayloadTrailerSize)
	payload = append(payload, data...)
	payload = append(payload, signature...)
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(signature)))
	return payload, nil
}

func (c *Cipher) verifySignedPayload(payload []byte, signers []*keys.PublicKey) ([]byte, error) {
	if len(signers) == 0 {
		return nil, fmt.Errorf("%w: at least one signer candidate required", ErrInvalidArgument)
	}
	for i, s := range signers {
		if s == nil {
			return nil, fmt.Errorf("%w: signer candidate %d is nil", ErrInvalidArgument, i)
		}
		if !s.KeyType().CanSign() {
			return nil, fmt.Errorf("%w: %s keys cannot verify signatures", ErrInvalidArgument, s.KeyType())
		}
	}

	data, signature, err := splitSignedPayload(payload)
	if err != nil {
		return nil, err
	}
	digest, err := primitives.Hash(signatureDigest, data)
	if err != nil {
		return nil, primitiveError(err)
	}

	for _, s := range signers {
		if primitives.Verify(s, digest, signature) == nil {
			return data, nil
		}
	}
	return nil, newIntegrityError(CauseSignatureVerification,
		fmt.Errorf("no candidate key verified the signature (%d tried)", len(signers)))
}

func splitSignedPayload(payload []byte) (data, signature []byte, err error) {
	if len(payload) < signedPayloadTrailerSize {
		return nil, nil, fmt.Errorf("%w: payload too short for signature trailer", ErrInvalidArgument)
	}
	sigLen := int(binary.BigEndian.Uint32(payload[len(payload)-signedPayloadTrailerSize:]))
	if sigLen == 0 || sigLen > primitives.MaxSignatureSize ||
		sigLen+signedPayloadTrailerSize > len(payload) {
		return nil, nil, fmt.Errorf("%w: not a signed payload", ErrInvalidArgument)
	}
	cut := len(payload) - signedPayloadTrailerSize - sigLen
	return payload[:cut], payload[cut : len(payload)-signedPayloadTrailerSize], nil
}
