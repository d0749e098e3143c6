package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/curve25519"
)

func TestEd25519ToX25519Conversion(t *testing.T) {
	// The converted private scalar and converted public point must form a
	// consistent X25519 key pair: scalar * basepoint == point.
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	scalar, err := Ed25519ToX25519PrivateKey(priv)
	if err != nil {
		t.Fatalf("Ed25519ToX25519PrivateKey: %v", err)
	}
	point, err := Ed25519ToX25519PublicKey(pub)
	if err != nil {
		t.Fatalf("Ed25519ToX25519PublicKey: %v", err)
	}

	derived, err := curve25519.X25519(scalar, curve25519.Basepoint)
	if err != nil {
		t.Fatalf("X25519: %v", err)
	}
	if !bytes.Equal(derived, point) {
		t.Fatal("converted scalar and point are not a consistent key pair")
	}
}

func TestEd25519ToX25519InvalidInputs(t *testing.T) {
	if _, err := Ed25519ToX25519PrivateKey(make([]byte, 16)); err == nil {
		t.Error("short private key accepted")
	}
	if _, err := Ed25519ToX25519PublicKey(make([]byte, 16)); err == nil {
		t.Error("short public key accepted")
	}
	notAPoint := bytes.Repeat([]byte{0xff}, 32)
	if _, err := Ed25519ToX25519PublicKey(notAPoint); err == nil {
		t.Error("non-canonical point accepted")
	}
}
