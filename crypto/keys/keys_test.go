package keys

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		keyType   KeyType
		publicLen int
		canSign   bool
		canAgree  bool
	}{
		{Ed25519, 32, true, true},
		{Curve25519, 32, false, true},
		{Ed448, 57, true, false},
		{X448, 56, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.keyType.String(), func(t *testing.T) {
			pair, err := Generate(tt.keyType, SchemeSHA512)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if pair.Public.KeyType() != tt.keyType || pair.Private.KeyType() != tt.keyType {
				t.Fatal("key type tag mismatch")
			}
			if len(pair.Public.Bytes()) != tt.publicLen {
				t.Fatalf("public key is %d bytes, want %d", len(pair.Public.Bytes()), tt.publicLen)
			}
			if tt.keyType.CanSign() != tt.canSign {
				t.Errorf("CanSign = %v, want %v", tt.keyType.CanSign(), tt.canSign)
			}
			if tt.keyType.CanAgree() != tt.canAgree {
				t.Errorf("CanAgree = %v, want %v", tt.keyType.CanAgree(), tt.canAgree)
			}
			if !bytes.Equal(pair.Public.Identifier(), pair.Private.Identifier()) {
				t.Fatal("public and private identifiers disagree")
			}
			if len(pair.Private.Bytes()) == 0 {
				t.Fatal("empty private key material")
			}
		})
	}
}

func TestGenerateUnknownType(t *testing.T) {
	if _, err := Generate(KeyType(99), SchemeSHA512); !errors.Is(err, ErrUnsupportedKeyType) {
		t.Fatalf("err = %v, want ErrUnsupportedKeyType", err)
	}
	if _, err := Generate(Ed25519, IdentifierScheme(99)); err == nil {
		t.Fatal("unknown identifier scheme accepted")
	}
}

func TestGenerateUniqueness(t *testing.T) {
	a, err := Generate(Ed25519, SchemeSHA512)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(Ed25519, SchemeSHA512)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if bytes.Equal(a.Public.Bytes(), b.Public.Bytes()) {
		t.Fatal("two generated keys are identical")
	}
	if bytes.Equal(a.Public.Identifier(), b.Public.Identifier()) {
		t.Fatal("two generated keys share an identifier")
	}
}

func TestIdentifierSchemes(t *testing.T) {
	pair, err := Generate(Ed25519, SchemeSHA512)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(pair.Public.Identifier()) != 8 {
		t.Fatalf("SHA512/8 identifier is %d bytes, want 8", len(pair.Public.Identifier()))
	}

	der, err := pair.Public.MarshalDER()
	if err != nil {
		t.Fatalf("MarshalDER: %v", err)
	}
	legacy, err := ImportPublicKey(der, SchemeSHA256)
	if err != nil {
		t.Fatalf("ImportPublicKey: %v", err)
	}
	if len(legacy.Identifier()) != 32 {
		t.Fatalf("SHA256 identifier is %d bytes, want 32", len(legacy.Identifier()))
	}
	if bytes.Equal(legacy.Identifier(), pair.Public.Identifier()) {
		t.Fatal("identifiers under different schemes coincide")
	}

	// Same key, same scheme, reimported: identifier must be stable.
	again, err := ImportPublicKey(der, SchemeSHA512)
	if err != nil {
		t.Fatalf("ImportPublicKey: %v", err)
	}
	if !bytes.Equal(again.Identifier(), pair.Public.Identifier()) {
		t.Fatal("identifier not stable across reimport")
	}
}

func TestDestroyZeroizes(t *testing.T) {
	pair, err := Generate(Ed25519, SchemeSHA512)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	material := pair.Private.Bytes()
	pair.Private.Destroy()
	for i, b := range material {
		if b != 0 {
			t.Fatalf("byte %d not zeroized", i)
		}
	}
}
