package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/quillsec/sealbox/crypto/keys"
	"github.com/quillsec/sealbox/crypto/primitives"
)

func mustGenerate(t *testing.T, engine *Cipher, keyType keys.KeyType) *keys.KeyPair {
	t.Helper()
	pair, err := engine.GenerateKeyPair(keyType)
	if err != nil {
		t.Fatalf("GenerateKeyPair(%s): %v", keyType, err)
	}
	return pair
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	engine := New()
	message := []byte("attack at dawn")

	for _, keyType := range []keys.KeyType{keys.Ed25519, keys.Curve25519, keys.X448} {
		t.Run(keyType.String(), func(t *testing.T) {
			pair := mustGenerate(t, engine, keyType)

			ciphertext, err := engine.Encrypt(message, pair.Public)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			if bytes.Contains(ciphertext, message) {
				t.Fatal("ciphertext contains plaintext")
			}

			got, err := engine.Decrypt(ciphertext, pair.Private)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if !bytes.Equal(got, message) {
				t.Fatalf("got %q, want %q", got, message)
			}
		})
	}
}

func TestEncryptMultiRecipient(t *testing.T) {
	engine := New()
	message := []byte("for all three of you")

	alice := mustGenerate(t, engine, keys.Ed25519)
	bob := mustGenerate(t, engine, keys.Curve25519)
	carol := mustGenerate(t, engine, keys.X448)
	mallory := mustGenerate(t, engine, keys.Ed25519)

	ciphertext, err := engine.Encrypt(message, alice.Public, bob.Public, carol.Public)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	for _, pair := range []*keys.KeyPair{alice, bob, carol} {
		got, err := engine.Decrypt(ciphertext, pair.Private)
		if err != nil {
			t.Fatalf("Decrypt as %s: %v", pair.Private.KeyType(), err)
		}
		if !bytes.Equal(got, message) {
			t.Fatal("plaintext mismatch")
		}
	}

	got, err := engine.Decrypt(ciphertext, mallory.Private)
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("non-recipient: err = %v, want ErrRecipientNotFound", err)
	}
	if got != nil {
		t.Fatal("plaintext released to non-recipient")
	}
}

func TestEncryptInputValidation(t *testing.T) {
	engine := New()
	signOnly := mustGenerate(t, engine, keys.Ed448)
	valid := mustGenerate(t, engine, keys.Ed25519)

	if _, err := engine.Encrypt([]byte("x")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("no recipients: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := engine.Encrypt([]byte("x"), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil recipient: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := engine.Encrypt([]byte("x"), signOnly.Public); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("sign-only recipient: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := engine.Decrypt([]byte("not an envelope"), valid.Private); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("garbage ciphertext: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := engine.Decrypt(nil, valid.Private); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil ciphertext: err = %v, want ErrInvalidArgument", err)
	}
}

func TestDecryptRejectsAnyBitFlip(t *testing.T) {
	engine := New()
	message := []byte("integrity matters")
	pair := mustGenerate(t, engine, keys.Ed25519)

	ciphertext, err := engine.Encrypt(message, pair.Public)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Flipping any single bit anywhere in the envelope or ciphertext must
	// fail decryption. The error class varies with the flipped region
	// (malformed header, unknown recipient, failed authentication), but
	// plaintext must never come back.
	for i := range ciphertext {
		bad := append([]byte(nil), ciphertext...)
		bad[i] ^= 0x01
		got, err := engine.Decrypt(bad, pair.Private)
		if err == nil {
			t.Fatalf("byte %d: bit flip went undetected", i)
		}
		if got != nil {
			t.Fatalf("byte %d: plaintext released despite tampering", i)
		}
	}

	// Targeted checks for the error classes at known offsets.
	bad := append([]byte(nil), ciphertext...)
	bad[0] ^= 0x01 // magic
	if _, err := engine.Decrypt(bad, pair.Private); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("magic flip: err = %v, want ErrInvalidArgument", err)
	}

	bad = append([]byte(nil), ciphertext...)
	bad[len(bad)-1] ^= 0x01 // bulk ciphertext tag
	_, err = engine.Decrypt(bad, pair.Private)
	if !errors.Is(err, ErrIntegrityCheckFailed) {
		t.Errorf("tag flip: err = %v, want ErrIntegrityCheckFailed", err)
	}
	var integrityErr *IntegrityError
	if !errors.As(err, &integrityErr) || integrityErr.Cause != CauseCipherAuthentication {
		t.Errorf("tag flip: cause = %v, want CauseCipherAuthentication", err)
	}
}

func TestEncryptDetached(t *testing.T) {
	engine := New()
	message := []byte("metadata travels separately")
	pair := mustGenerate(t, engine, keys.Ed25519)

	ciphertext, contentInfo, err := engine.EncryptDetached(message, pair.Public)
	if err != nil {
		t.Fatalf("EncryptDetached: %v", err)
	}

	got, err := engine.DecryptDetached(ciphertext, contentInfo, pair.Private)
	if err != nil {
		t.Fatalf("DecryptDetached: %v", err)
	}
	if !bytes.Equal(got, message) {
		t.Fatal("plaintext mismatch")
	}

	// The embedded form is the concatenation of the two detached buffers.
	embedded := append(append([]byte(nil), contentInfo...), ciphertext...)
	got, err = engine.Decrypt(embedded, pair.Private)
	if err != nil {
		t.Fatalf("Decrypt(contentInfo||ciphertext): %v", err)
	}
	if !bytes.Equal(got, message) {
		t.Fatal("plaintext mismatch on recombined envelope")
	}

	// An embedded envelope offered as detached metadata must be rejected.
	if _, err := engine.DecryptDetached(ciphertext, embedded, pair.Private); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("embedded-as-detached: err = %v, want ErrInvalidArgument", err)
	}

	// Swapped arguments must not decrypt.
	if _, err := engine.DecryptDetached(contentInfo, ciphertext, pair.Private); err == nil {
		t.Fatal("swapped buffers decrypted")
	}
}

func TestEncryptWithPassword(t *testing.T) {
	engine := New()
	message := []byte("secret shared by phrase")
	password := []byte("correct horse battery staple")

	ciphertext, err := engine.EncryptWithPassword(message, password)
	if err != nil {
		t.Fatalf("EncryptWithPassword: %v", err)
	}

	got, err := engine.DecryptWithPassword(ciphertext, password)
	if err != nil {
		t.Fatalf("DecryptWithPassword: %v", err)
	}
	if !bytes.Equal(got, message) {
		t.Fatal("plaintext mismatch")
	}

	_, err = engine.DecryptWithPassword(ciphertext, []byte("wrong password"))
	if !errors.Is(err, ErrIntegrityCheckFailed) {
		t.Fatalf("wrong password: err = %v, want ErrIntegrityCheckFailed", err)
	}

	if _, err := engine.EncryptWithPassword(message, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty password: err = %v, want ErrInvalidArgument", err)
	}

	// A public-key envelope has no password record.
	pair := mustGenerate(t, engine, keys.Ed25519)
	pkCiphertext, err := engine.Encrypt(message, pair.Public)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := engine.DecryptWithPassword(pkCiphertext, password); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("no password record: err = %v, want ErrRecipientNotFound", err)
	}
}

func TestEncryptBulkAlgorithms(t *testing.T) {
	message := []byte("cipher agility")

	for _, alg := range []primitives.AEADAlgorithm{primitives.AEADAES256GCM, primitives.AEADChaCha20Poly1305} {
		t.Run(alg.String(), func(t *testing.T) {
			sender := New(WithBulkAlgorithm(alg))
			pair := mustGenerate(t, sender, keys.Ed25519)

			ciphertext, err := sender.Encrypt(message, pair.Public)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}

			// The algorithm rides in the envelope, so a default-configured
			// engine can always decrypt.
			got, err := New().Decrypt(ciphertext, pair.Private)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if !bytes.Equal(got, message) {
				t.Fatal("plaintext mismatch")
			}
		})
	}

	engine := New(WithBulkAlgorithm(primitives.AEADAlgorithm(99)))
	pair := mustGenerate(t, engine, keys.Ed25519)
	if _, err := engine.Encrypt(message, pair.Public); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unknown bulk algorithm: err = %v, want ErrInvalidArgument", err)
	}
}

func TestEncryptRandomized(t *testing.T) {
	engine := New()
	pair := mustGenerate(t, engine, keys.Ed25519)
	message := []byte("same message twice")

	a, err := engine.Encrypt(message, pair.Public)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := engine.Encrypt(message, pair.Public)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two encryptions of the same message are identical")
	}
}

// seqReader is a deterministic byte source for reproducing envelope output.
type seqReader struct{ next byte }

func (r *seqReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

func TestEncryptDeterministicWithFixedRandomness(t *testing.T) {
	base := New()
	pair := mustGenerate(t, base, keys.Curve25519)
	message := []byte("fixed randomness, fixed output")

	a, err := New(withRandom(&seqReader{})).Encrypt(message, pair.Public)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := New(withRandom(&seqReader{})).Encrypt(message, pair.Public)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical randomness produced different envelopes")
	}

	got, err := New().Decrypt(a, pair.Private)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, message) {
		t.Fatal("plaintext mismatch")
	}
}

func TestSchemeMismatchIsRecipientNotFound(t *testing.T) {
	current := New()
	legacy := New(WithLegacyIdentifiers())
	message := []byte("identifiers must line up")

	pair := mustGenerate(t, current, keys.Ed25519)
	der, err := pair.Public.MarshalDER()
	if err != nil {
		t.Fatalf("MarshalDER: %v", err)
	}
	legacyPublic, err := legacy.ImportPublicKey(der)
	if err != nil {
		t.Fatalf("ImportPublicKey: %v", err)
	}

	// Encrypted against the legacy identifier, decrypted with a key whose
	// identifier was derived under the current scheme: no record matches.
	ciphertext, err := current.Encrypt(message, legacyPublic)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := current.Decrypt(ciphertext, pair.Private); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("err = %v, want ErrRecipientNotFound", err)
	}

	// The same private key imported under the legacy scheme matches.
	privDER, err := pair.Private.MarshalDER()
	if err != nil {
		t.Fatalf("MarshalDER: %v", err)
	}
	legacyPrivate, err := legacy.ImportPrivateKey(privDER)
	if err != nil {
		t.Fatalf("ImportPrivateKey: %v", err)
	}
	got, err := legacy.Decrypt(ciphertext, legacyPrivate)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, message) {
		t.Fatal("plaintext mismatch")
	}
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	engine := New()
	pair := mustGenerate(t, engine, keys.Ed25519)

	ciphertext, err := engine.Encrypt(nil, pair.Public)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := engine.Decrypt(ciphertext, pair.Private)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d bytes, want empty", len(got))
	}
}
