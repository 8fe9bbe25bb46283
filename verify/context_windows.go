package verify

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/samvdst/codesign/internal/wintrust"
)

// Identity attributes queried from the leaf certificate. The same table
// serves subject and issuer lookups.
const (
	oidCommonName         = "2.5.4.3"
	oidOrganization       = "2.5.4.10"
	oidOrganizationalUnit = "2.5.4.11"
	oidCountry            = "2.5.4.6"
)

// Context wraps the leaf certificate of a successful verification. It
// owns the trust state handle that keeps the certificate context alive;
// Close releases it and must be called exactly once when the caller is
// done reading from the context.
type Context struct {
	state  windows.Handle
	cert   *windows.CertContext
	closed bool
}

// newContext takes ownership of a trust state handle and resolves the
// signer's leaf certificate from it. On failure the state handle is
// released before returning.
func newContext(state windows.Handle) (*Context, error) {
	provData := wintrust.WTHelperProvDataFromStateData(state)
	if provData == 0 {
		closeStateData(state)
		return nil, ErrLeafCertificateNotFound
	}

	signer := wintrust.WTHelperGetProvSignerFromChain(provData, 0, false, 0)
	if signer == 0 {
		closeStateData(state)
		return nil, ErrLeafCertificateNotFound
	}

	provCert := wintrust.WTHelperGetProvCertFromChain(signer, 0)
	if provCert == nil || provCert.Cert == nil {
		closeStateData(state)
		return nil, ErrLeafCertificateNotFound
	}

	return &Context{state: state, cert: provCert.Cert}, nil
}

// Close releases the trust state handle. The certificate context and
// everything derived from it become invalid afterwards.
func (c *Context) Close() error {
	if !c.closed {
		c.closed = true
		c.cert = nil
		closeStateData(c.state)
	}
	return nil
}

// SubjectName returns the identity attributes of the certificate's
// subject.
func (c *Context) SubjectName() Name {
	return c.name(0)
}

// IssuerName returns the identity attributes of the certificate's
// issuer.
func (c *Context) IssuerName() Name {
	return c.name(wintrust.CERT_NAME_ISSUER_FLAG)
}

func (c *Context) name(flags uint32) Name {
	return Name{
		CommonName:         c.nameAttr(flags, oidCommonName),
		Organization:       c.nameAttr(flags, oidOrganization),
		OrganizationalUnit: c.nameAttr(flags, oidOrganizationalUnit),
		Country:            c.nameAttr(flags, oidCountry),
	}
}

// nameAttr queries a single name attribute by OID, sizing the buffer
// with a first call. A reported length of one is just the terminator,
// meaning the certificate does not encode the attribute.
func (c *Context) nameAttr(flags uint32, oid string) string {
	oidz := append([]byte(oid), 0)

	n := windows.CertGetNameString(c.cert, wintrust.CERT_NAME_ATTR_TYPE, flags, unsafe.Pointer(&oidz[0]), nil, 0)
	if n <= 1 {
		return ""
	}

	buf := make([]uint16, n)
	windows.CertGetNameString(c.cert, wintrust.CERT_NAME_ATTR_TYPE, flags, unsafe.Pointer(&oidz[0]), &buf[0], n)
	return windows.UTF16ToString(buf)
}

// Serial returns the certificate serial number as lower-case hex. The
// platform stores the serial in reverse byte order; it is flipped here
// to the conventional human-readable form.
func (c *Context) Serial() string {
	blob := c.cert.CertInfo.SerialNumber
	return reversedHex(unsafe.Slice(blob.Data, blob.Size))
}

// SHA1Thumbprint returns the SHA-1 digest of the certificate's full
// encoded bytes as lower-case hex.
func (c *Context) SHA1Thumbprint() string {
	sum := sha1.Sum(c.encoded())
	return hex.EncodeToString(sum[:])
}

// SHA256Thumbprint returns the SHA-256 digest of the certificate's full
// encoded bytes as lower-case hex.
func (c *Context) SHA256Thumbprint() string {
	sum := sha256.Sum256(c.encoded())
	return hex.EncodeToString(sum[:])
}

func (c *Context) encoded() []byte {
	return unsafe.Slice(c.cert.EncodedCert, c.cert.Length)
}
