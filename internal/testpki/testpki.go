// Package testpki issues a throwaway code-signing certificate hierarchy
// for tests: a self-signed root and a leaf with the code-signing
// extended key usage, carrying all four identity attributes the
// verifier exposes.
package testpki

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"
)

// TestPKI holds the generated hierarchy. Keys are throwaway RSA-2048.
type TestPKI struct {
	RootKey  crypto.Signer
	RootCert *x509.Certificate
	LeafKey  crypto.Signer
	LeafCert *x509.Certificate
}

// New generates a fresh root and code-signing leaf. Generation failures
// fail the test immediately.
func New(t *testing.T) *TestPKI {
	t.Helper()

	rootKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate root key: %v", err)
	}

	now := time.Now()
	rootTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "Test Code Signing Root",
			Organization: []string{"Test Org"},
			Country:      []string{"US"},
		},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}
	rootDER, err := x509.CreateCertificate(rand.Reader, rootTemplate, rootTemplate, &rootKey.PublicKey, rootKey)
	if err != nil {
		t.Fatalf("create root certificate: %v", err)
	}
	rootCert, err := x509.ParseCertificate(rootDER)
	if err != nil {
		t.Fatalf("parse root certificate: %v", err)
	}

	leafKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate leaf key: %v", err)
	}
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject: pkix.Name{
			CommonName:         "Test Signer",
			Organization:       []string{"Test Org"},
			OrganizationalUnit: []string{"Engineering"},
			Country:            []string{"US"},
		},
		NotBefore:   now.Add(-time.Hour),
		NotAfter:    now.Add(24 * time.Hour),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, rootCert, &leafKey.PublicKey, rootKey)
	if err != nil {
		t.Fatalf("create leaf certificate: %v", err)
	}
	leafCert, err := x509.ParseCertificate(leafDER)
	if err != nil {
		t.Fatalf("parse leaf certificate: %v", err)
	}

	return &TestPKI{
		RootKey:  rootKey,
		RootCert: rootCert,
		LeafKey:  leafKey,
		LeafCert: leafCert,
	}
}
