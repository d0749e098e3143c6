// Package primitives exposes the cryptographic primitives used by the
// sealbox engine as small capability functions: AEAD seal/open, ephemeral
// key agreement, key derivation, signatures, and a named hash family.
//
// The package wraps the underlying crypto libraries (stdlib, golang.org/x/crypto,
// cloudflare/circl, filippo.io/edwards25519) and never reimplements raw
// math. Polymorphic key operations dispatch on the key's algorithm tag.
// Every operation either returns a complete byte buffer or fails with one
// of the package's sentinel errors - never partial output.
package primitives
