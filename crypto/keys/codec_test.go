package keys

import (
	"bytes"
	"errors"
	"testing"
)

var allKeyTypes = []KeyType{Ed25519, Curve25519, Ed448, X448}

func TestPublicKeyRoundTrip(t *testing.T) {
	for _, keyType := range allKeyTypes {
		t.Run(keyType.String(), func(t *testing.T) {
			pair, err := Generate(keyType, SchemeSHA512)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}

			der, err := pair.Public.MarshalDER()
			if err != nil {
				t.Fatalf("MarshalDER: %v", err)
			}
			fromDER, err := ImportPublicKey(der, SchemeSHA512)
			if err != nil {
				t.Fatalf("ImportPublicKey(DER): %v", err)
			}
			if fromDER.KeyType() != keyType {
				t.Fatalf("key type = %s, want %s", fromDER.KeyType(), keyType)
			}
			if !bytes.Equal(fromDER.Bytes(), pair.Public.Bytes()) {
				t.Fatal("raw material changed across DER round trip")
			}
			if !bytes.Equal(fromDER.Identifier(), pair.Public.Identifier()) {
				t.Fatal("identifier changed across DER round trip")
			}

			pemBytes, err := pair.Public.MarshalPEM()
			if err != nil {
				t.Fatalf("MarshalPEM: %v", err)
			}
			fromPEM, err := ImportPublicKey(pemBytes, SchemeSHA512)
			if err != nil {
				t.Fatalf("ImportPublicKey(PEM): %v", err)
			}
			if !bytes.Equal(fromPEM.Bytes(), pair.Public.Bytes()) {
				t.Fatal("raw material changed across PEM round trip")
			}
		})
	}
}

func TestPrivateKeyRoundTrip(t *testing.T) {
	for _, keyType := range allKeyTypes {
		t.Run(keyType.String(), func(t *testing.T) {
			pair, err := Generate(keyType, SchemeSHA512)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}

			der, err := pair.Private.MarshalDER()
			if err != nil {
				t.Fatalf("MarshalDER: %v", err)
			}
			fromDER, err := ImportPrivateKey(der, SchemeSHA512)
			if err != nil {
				t.Fatalf("ImportPrivateKey(DER): %v", err)
			}
			if !bytes.Equal(fromDER.Bytes(), pair.Private.Bytes()) {
				t.Fatal("private material changed across DER round trip")
			}
			if !bytes.Equal(fromDER.PublicKey().Bytes(), pair.Public.Bytes()) {
				t.Fatal("reconstructed public key differs")
			}
			if !bytes.Equal(fromDER.Identifier(), pair.Private.Identifier()) {
				t.Fatal("identifier changed across DER round trip")
			}

			pemBytes, err := pair.Private.MarshalPEM()
			if err != nil {
				t.Fatalf("MarshalPEM: %v", err)
			}
			fromPEM, err := ImportPrivateKey(pemBytes, SchemeSHA512)
			if err != nil {
				t.Fatalf("ImportPrivateKey(PEM): %v", err)
			}
			if !bytes.Equal(fromPEM.Bytes(), pair.Private.Bytes()) {
				t.Fatal("private material changed across PEM round trip")
			}
		})
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	garbage := [][]byte{
		nil,
		{},
		[]byte("not a key"),
		[]byte("-----BEGIN PUBLIC KEY-----\nnot base64!!\n-----END PUBLIC KEY-----\n"),
		bytes.Repeat([]byte{0x30}, 64),
	}
	for i, data := range garbage {
		if _, err := ImportPublicKey(data, SchemeSHA512); err == nil {
			t.Errorf("public garbage %d accepted", i)
		}
		if _, err := ImportPrivateKey(data, SchemeSHA512); err == nil {
			t.Errorf("private garbage %d accepted", i)
		}
	}
}

func TestImportRejectsWrongPEMBlock(t *testing.T) {
	pair, err := Generate(Ed25519, SchemeSHA512)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	pemBytes, err := pair.Private.MarshalPEM()
	if err != nil {
		t.Fatalf("MarshalPEM: %v", err)
	}
	// A private key PEM offered where a public key is expected.
	if _, err := ImportPublicKey(pemBytes, SchemeSHA512); !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("err = %v, want ErrMalformedKey", err)
	}
}

func TestImportRejectsInvalidEd25519Point(t *testing.T) {
	pair, err := Generate(Ed25519, SchemeSHA512)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	material := append([]byte(nil), pair.Public.Bytes()...)
	// An all-ones encoding is not a canonical curve point.
	for i := range material {
		material[i] = 0xff
	}
	der, err := marshalPKIX(Ed25519, material)
	if err != nil {
		t.Fatalf("marshalPKIX: %v", err)
	}
	if _, err := ImportPublicKey(der, SchemeSHA512); !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("err = %v, want ErrMalformedKey", err)
	}
}
