// Package verify drives the operating system's trust engine to decide
// whether an executable carries a valid signature, either embedded in
// the file or recorded in a signed security catalog, and exposes the
// leaf certificate of a successful verification.
//
// The trust decision itself is delegated entirely to the platform;
// this package orchestrates the calls, interprets outcomes and owns the
// native resources involved. It is implemented for Windows; on other
// platforms Verify returns ErrUnsupported.
package verify

import (
	"errors"
	"fmt"
)

// Name holds the identity attributes read from a certificate's subject
// or issuer. Each field is independently optional; an empty string means
// the certificate does not encode that attribute.
type Name struct {
	CommonName         string // OID 2.5.4.3
	Organization       string // OID 2.5.4.10
	OrganizationalUnit string // OID 2.5.4.11
	Country            string // OID 2.5.4.6
}

var (
	// ErrUnsigned is returned when the file carries no embedded
	// signature and no catalog covers it. This is an expected outcome,
	// not a system fault.
	ErrUnsigned = errors.New("verify: file is not signed")

	// ErrInvalidPath is returned when the target path cannot be
	// represented in the platform's native string encoding.
	ErrInvalidPath = errors.New("verify: path cannot be encoded for the platform")

	// ErrLeafCertificateNotFound is returned when the trust engine
	// reported success but no signer certificate could be extracted
	// from its state data.
	ErrLeafCertificateNotFound = errors.New("verify: no signer certificate in trust state data")

	// ErrUnsupported is returned on platforms without a native trust
	// engine binding.
	ErrUnsupported = errors.New("verify: code signature verification is only available on windows")
)

// NativeError wraps a raw status code reported by the platform's trust
// or certificate APIs.
type NativeError struct {
	Code uint32
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("verify: native call failed with status 0x%08x", e.Code)
}

// Verifier holds one verification target. Construction performs no I/O;
// each Verify call is a self-contained synchronous attempt with its own
// native resources, so independent verifiers may run concurrently.
type Verifier struct {
	path string
}

// ForFile returns a verifier for the executable at path.
func ForFile(path string) *Verifier {
	return &Verifier{path: path}
}

// ForPID resolves the main executable image of a running process and
// returns a verifier for it. It fails with a NativeError when the
// process cannot be queried (not found, insufficient privilege).
func ForPID(pid int32) (*Verifier, error) {
	path, err := processImagePath(uint32(pid))
	if err != nil {
		return nil, err
	}
	return ForFile(path), nil
}

// Path returns the target path the verifier was built for.
func (v *Verifier) Path() string {
	return v.path
}

// Verify runs the platform trust check against the target. On success
// the returned Context owns the trust state handle and must be closed
// by the caller; on failure no native resources remain open.
func (v *Verifier) Verify() (*Context, error) {
	return v.verify()
}
