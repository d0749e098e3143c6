package crypto

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrInvalidArgument is returned when an input fails boundary
	// validation before any cryptographic work happens: nil keys, empty
	// recipient lists, unsupported algorithm names, malformed buffers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPrimitive is returned when an underlying cryptographic primitive
	// fails for a reason other than an authentication or signature check.
	ErrPrimitive = errors.New("cryptographic primitive failure")

	// ErrRecipientNotFound is returned when no wrap record in the
	// ContentInfo matches the decrypting key's identifier.
	ErrRecipientNotFound = errors.New("recipient not found in content info")

	// ErrIntegrityCheckFailed is returned when authenticated decryption
	// or signature verification rejects the input. No plaintext is ever
	// released alongside it.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")
)

// IntegrityCause distinguishes the stage that rejected the input. Callers
// doing forensics can read it from an *IntegrityError; everyone else
// matches ErrIntegrityCheckFailed and moves on.
type IntegrityCause uint8

const (
	// CauseCipherAuthentication means an AEAD tag did not verify, either
	// on the wrapped bulk key or on the bulk ciphertext itself.
	CauseCipherAuthentication IntegrityCause = 1
	// CauseSignatureVerification means the payload decrypted cleanly but
	// its signature did not verify under any candidate key.
	CauseSignatureVerification IntegrityCause = 2
)

func (c IntegrityCause) String() string {
	switch c {
	case CauseCipherAuthentication:
		return "cipher authentication"
	case CauseSignatureVerification:
		return "signature verification"
	default:
		return "unknown"
	}
}

// IntegrityError carries the failure stage behind ErrIntegrityCheckFailed.
type IntegrityError struct {
	Cause IntegrityCause
	err   error
}

func newIntegrityError(cause IntegrityCause, err error) *IntegrityError {
	return &IntegrityError{Cause: cause, err: err}
}

func (e *IntegrityError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("integrity check failed (%s): %v", e.Cause, e.err)
	}
	return fmt.Sprintf("integrity check failed (%s)", e.Cause)
}

func (e *IntegrityError) Unwrap() error { return e.err }

// Is makes errors.Is(err, ErrIntegrityCheckFailed) match.
func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrityCheckFailed }

func primitiveError(err error) error {
	return fmt.Errorf("%w: %w", ErrPrimitive, err)
}
