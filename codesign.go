// Package codesign checks that an executable file, or the running
// process behind a pid, carries a valid trusted code signature, and
// exposes identity and fingerprint data from the certificate that
// signed it. It is meant for tooling that needs to authenticate a
// binary before trusting it, for example verifying the peer on the
// other end of an IPC channel.
//
// The trust decision is made by the operating system's verification
// engine (WinVerifyTrust on Windows), including the catalog fallback
// for files whose signature lives in a signed security catalog rather
// than in the file itself.
//
//	ctx, err := codesign.ForFile(`C:\Windows\explorer.exe`).Verify()
//	if err != nil {
//		// codesign.ErrUnsigned, *codesign.NativeError, ...
//	}
//	defer ctx.Close()
//	fmt.Println(ctx.SubjectName().Organization)
package codesign

import (
	"github.com/samvdst/codesign/verify"
)

// Name holds the four optional identity attributes of a subject or
// issuer; empty fields are attributes the certificate does not encode.
type Name = verify.Name

// NativeError wraps a raw platform status code for caller-side
// diagnosis.
type NativeError = verify.NativeError

// Errors returned by Verify and ForPID. ErrUnsigned is an expected
// outcome for unsigned binaries, not a fault.
var (
	ErrUnsigned                = verify.ErrUnsigned
	ErrInvalidPath             = verify.ErrInvalidPath
	ErrLeafCertificateNotFound = verify.ErrLeafCertificateNotFound
	ErrUnsupported             = verify.ErrUnsupported
)

// Verifier is the first stage of the two-stage API: it holds a target
// and performs the verification when Verify is called.
type Verifier struct {
	inner *verify.Verifier
}

// ForFile returns a verifier for the binary at path. No I/O happens
// until Verify.
func ForFile(path string) *Verifier {
	return &Verifier{inner: verify.ForFile(path)}
}

// ForPID returns a verifier for the main executable of a running
// process. This can be used for e.g. verifying the application on the
// other end of a pipe.
func ForPID(pid int32) (*Verifier, error) {
	inner, err := verify.ForPID(pid)
	if err != nil {
		return nil, err
	}
	return &Verifier{inner: inner}, nil
}

// Path returns the resolved target path.
func (v *Verifier) Path() string {
	return v.inner.Path()
}

// Verify runs the platform trust check. On success the returned Context
// must be closed by the caller once it is done with it.
func (v *Verifier) Verify() (*Context, error) {
	ctx, err := v.inner.Verify()
	if err != nil {
		return nil, err
	}
	return &Context{inner: ctx}, nil
}

// Context exposes the leaf certificate of a successfully verified
// signature. It keeps native verification state alive until Close.
type Context struct {
	inner *verify.Context
}

// SubjectName returns the subject identity attributes of the leaf
// certificate.
func (c *Context) SubjectName() Name {
	return c.inner.SubjectName()
}

// IssuerName returns the issuer identity attributes of the leaf
// certificate.
func (c *Context) IssuerName() Name {
	return c.inner.IssuerName()
}

// Serial returns the certificate serial number as lower-case hex in
// conventional byte order.
func (c *Context) Serial() string {
	return c.inner.Serial()
}

// SHA1Thumbprint returns the lower-case hex SHA-1 digest of the
// certificate's encoded bytes.
func (c *Context) SHA1Thumbprint() string {
	return c.inner.SHA1Thumbprint()
}

// SHA256Thumbprint returns the lower-case hex SHA-256 digest of the
// certificate's encoded bytes.
func (c *Context) SHA256Thumbprint() string {
	return c.inner.SHA256Thumbprint()
}

// Close releases the native verification state. Calling it more than
// once is harmless.
func (c *Context) Close() error {
	return c.inner.Close()
}
