// Package crypto implements the sealbox hybrid encryption engine: data is
// encrypted once with a fresh symmetric bulk key under an AEAD cipher, and
// the bulk key is wrapped separately for every recipient using ephemeral
// key agreement and HKDF-SHA-512. Any holder of a matching private key can
// unwrap the bulk key and decrypt. Signing composes with encryption as
// sign-then-encrypt: the signature travels inside the encrypted payload so
// the recipient can verify both confidentiality and authenticity.
//
// The envelope metadata (ContentInfo) describing the cipher parameters and
// the per-recipient wrapped keys either prefixes the ciphertext (embedded
// placement) or is returned as a separate buffer (detached placement).
//
// Basic usage:
//
//	engine := crypto.New()
//
//	alice, err := engine.GenerateKeyPair(keys.Ed25519)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	bob, err := engine.GenerateKeyPair(keys.Ed25519)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Sign as Alice, encrypt for Bob.
//	ciphertext, err := engine.SignThenEncrypt(message, alice.Private, bob.Public)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Decrypt as Bob, verify Alice's signature.
//	plaintext, err := engine.DecryptThenVerify(ciphertext, bob.Private, alice.Public)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// All engine operations are stateless pure functions over their inputs
// apart from CSPRNG reads, so a single Cipher may be shared freely across
// goroutines. Intermediate key material (bulk keys, wrap keys, shared
// secrets, ephemeral scalars) is zeroized on every exit path.
package crypto
