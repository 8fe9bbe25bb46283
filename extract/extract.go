// Package extract reads the Authenticode signature embedded in a PE
// executable without consulting the platform trust engine. It locates
// the certificate table in the PE security directory, parses the PKCS#7
// SignedData inside it and resolves the signing certificate plus the
// Authenticode-specific payload: the file digest, the publisher's
// program name and URL, and an RFC 3161 countersignature when present.
//
// Extraction makes no trust decision. Use the codesign package when the
// signature must actually be validated; use extract when the question
// is "who claims to have signed this" on any platform, including files
// copied off the machine they were signed for.
package extract

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"debug/pe"
	"encoding/asn1"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/digitorus/pkcs7"
	"github.com/digitorus/timestamp"
	"github.com/mattetti/filebuffer"
)

// ErrNoSignature is returned when the executable has no certificate
// table or the table holds no Authenticode entry.
var ErrNoSignature = errors.New("extract: no embedded authenticode signature")

const (
	// Index of the security directory in the PE data directories.
	certTableIndex = 4

	// WIN_CERTIFICATE revision and type selecting Authenticode
	// PKCS#7 SignedData entries.
	winCertRevision2     = 0x0200
	winCertTypePKCS7     = 0x0002
	winCertHeaderSize    = 8
	winCertTableMaxAlign = 7
)

var (
	oidSpcSpOpusInfo    = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 2, 1, 12}
	oidRFC3161Token     = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 3, 3, 1}
	oidSMIMETimestamp   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 14}
	oidDigestMD5        = asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 5}
	oidDigestSHA1       = asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}
	oidDigestSHA256     = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
	oidDigestSHA384     = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}
	oidDigestSHA512     = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 3}
)

// Signature is the parsed content of an embedded Authenticode entry.
// Certificates and Raw are always populated; the remaining fields are
// best effort, since real-world signatures omit several of them.
type Signature struct {
	// Certificates is every certificate carried in the SignedData,
	// leaf and chain alike, in encoding order.
	Certificates []*x509.Certificate

	// Signer is the certificate matching the first signer info, or nil
	// when the SignedData names a certificate it does not carry.
	Signer *x509.Certificate

	// DigestAlgorithm and FileDigest are the image hash recorded in the
	// SpcIndirectDataContent. DigestAlgorithm is 0 when unknown.
	DigestAlgorithm crypto.Hash
	FileDigest      []byte

	// ProgramName and MoreInfoURL come from the publisher's opus info
	// attribute.
	ProgramName string
	MoreInfoURL string

	// Timestamp is the RFC 3161 countersignature, when present.
	Timestamp *timestamp.Timestamp

	// Raw is the DER-encoded PKCS#7 blob as stored in the file.
	Raw []byte
}

// File extracts the embedded signature of the executable at path.
func File(path string) (*Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	defer f.Close()
	return NewFile(f)
}

// Bytes extracts the embedded signature from an in-memory image.
func Bytes(image []byte) (*Signature, error) {
	return NewFile(filebuffer.New(image))
}

// NewFile extracts the embedded signature from a PE image readable
// through r.
func NewFile(r io.ReaderAt) (*Signature, error) {
	table, err := certificateTable(r)
	if err != nil {
		return nil, err
	}

	blob, err := authenticodeBlob(table)
	if err != nil {
		return nil, err
	}

	return parseSignedData(blob)
}

// certificateTable locates and reads the security directory. Unlike
// every other data directory, its VirtualAddress is a plain file
// offset.
func certificateTable(r io.ReaderAt) ([]byte, error) {
	pf, err := pe.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("extract: parse image: %w", err)
	}
	defer pf.Close()

	var dir pe.DataDirectory
	switch oh := pf.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if oh.NumberOfRvaAndSizes > certTableIndex {
			dir = oh.DataDirectory[certTableIndex]
		}
	case *pe.OptionalHeader64:
		if oh.NumberOfRvaAndSizes > certTableIndex {
			dir = oh.DataDirectory[certTableIndex]
		}
	default:
		return nil, errors.New("extract: image has no optional header")
	}

	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, ErrNoSignature
	}

	table := make([]byte, dir.Size)
	if _, err := r.ReadAt(table, int64(dir.VirtualAddress)); err != nil {
		return nil, fmt.Errorf("extract: read certificate table: %w", err)
	}
	return table, nil
}

// authenticodeBlob walks the WIN_CERTIFICATE entries in the table and
// returns the first PKCS#7 SignedData payload.
func authenticodeBlob(table []byte) ([]byte, error) {
	for off := 0; off+winCertHeaderSize <= len(table); {
		length := binary.LittleEndian.Uint32(table[off:])
		revision := binary.LittleEndian.Uint16(table[off+4:])
		certType := binary.LittleEndian.Uint16(table[off+6:])

		if length < winCertHeaderSize || int(length) > len(table)-off {
			return nil, errors.New("extract: malformed certificate table entry")
		}
		if revision == winCertRevision2 && certType == winCertTypePKCS7 {
			return table[off+winCertHeaderSize : off+int(length)], nil
		}
		off += (int(length) + winCertTableMaxAlign) &^ winCertTableMaxAlign
	}
	return nil, ErrNoSignature
}

func parseSignedData(blob []byte) (*Signature, error) {
	p7, err := pkcs7.Parse(blob)
	if err != nil {
		return nil, fmt.Errorf("extract: parse signature: %w", err)
	}

	sig := &Signature{
		Certificates: p7.Certificates,
		Raw:          blob,
	}

	if alg, digest, ok := parseIndirectData(p7.Content); ok {
		sig.DigestAlgorithm = alg
		sig.FileDigest = digest
	}

	if len(p7.Signers) > 0 {
		signer := p7.Signers[0]
		sig.Signer = findSignerCertificate(p7.Certificates,
			signer.IssuerAndSerialNumber.IssuerName.FullBytes,
			signer.IssuerAndSerialNumber.SerialNumber)

		for _, attr := range signer.AuthenticatedAttributes {
			if attr.Type.Equal(oidSpcSpOpusInfo) {
				parseOpusInfo(attr.Value.Bytes, sig)
			}
		}
		for _, attr := range signer.UnauthenticatedAttributes {
			if !attr.Type.Equal(oidRFC3161Token) && !attr.Type.Equal(oidSMIMETimestamp) {
				continue
			}
			if ts, err := timestamp.Parse(attr.Value.Bytes); err == nil {
				sig.Timestamp = ts
				break
			}
		}
	}

	return sig, nil
}

func findSignerCertificate(certs []*x509.Certificate, rawIssuer []byte, serial *big.Int) *x509.Certificate {
	for _, cert := range certs {
		if cert.SerialNumber != nil && serial != nil &&
			cert.SerialNumber.Cmp(serial) == 0 &&
			bytes.Equal(cert.RawIssuer, rawIssuer) {
			return cert
		}
	}
	return nil
}

func hashForOID(oid asn1.ObjectIdentifier) crypto.Hash {
	switch {
	case oid.Equal(oidDigestMD5):
		return crypto.MD5
	case oid.Equal(oidDigestSHA1):
		return crypto.SHA1
	case oid.Equal(oidDigestSHA256):
		return crypto.SHA256
	case oid.Equal(oidDigestSHA384):
		return crypto.SHA384
	case oid.Equal(oidDigestSHA512):
		return crypto.SHA512
	}
	return 0
}
