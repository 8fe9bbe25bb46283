package verify

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func systemBinary(t *testing.T, name string) string {
	t.Helper()
	windir := os.Getenv("windir")
	if windir == "" {
		t.Skip("windir is not set")
	}
	path := filepath.Join(windir, "system32", name)
	if _, err := os.Stat(path); err != nil {
		t.Skipf("%s not present: %v", path, err)
	}
	return path
}

func TestVerifyEmbeddedSignature(t *testing.T) {
	// explorer.exe carries an embedded Microsoft signature on every
	// supported Windows release.
	windir := os.Getenv("windir")
	if windir == "" {
		t.Skip("windir is not set")
	}
	path := filepath.Join(windir, "explorer.exe")

	ctx, err := ForFile(path).Verify()
	if err != nil {
		t.Fatalf("Verify(%s): %v", path, err)
	}
	defer ctx.Close()

	subject := ctx.SubjectName()
	if subject.Organization != "Microsoft Corporation" {
		t.Errorf("subject organization = %q, want %q", subject.Organization, "Microsoft Corporation")
	}
	if subject.CommonName == "" {
		t.Error("subject common name is empty")
	}
	if ctx.IssuerName().CommonName == "" {
		t.Error("issuer common name is empty")
	}
	if ctx.Serial() == "" {
		t.Error("serial is empty")
	}
	if ctx.Serial() != strings.ToLower(ctx.Serial()) {
		t.Errorf("serial %q is not lower-case", ctx.Serial())
	}
}

func TestVerifyCatalogSignature(t *testing.T) {
	// Most system32 binaries are catalog-signed rather than carrying an
	// embedded signature, exercising the fallback path.
	path := systemBinary(t, "cmd.exe")

	ctx, err := ForFile(path).Verify()
	if err != nil {
		t.Fatalf("Verify(%s): %v", path, err)
	}
	defer ctx.Close()

	if ctx.SubjectName().Organization != "Microsoft Corporation" {
		t.Errorf("subject organization = %q, want %q", ctx.SubjectName().Organization, "Microsoft Corporation")
	}
}

func TestVerifyUnsignedBinary(t *testing.T) {
	// The test binary itself is freshly built and unsigned.
	self, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}

	_, err = ForFile(self).Verify()
	if !errors.Is(err, ErrUnsigned) {
		t.Fatalf("Verify(%s) = %v, want ErrUnsigned", self, err)
	}
}

func TestVerifyMissingFile(t *testing.T) {
	_, err := ForFile(filepath.Join(t.TempDir(), "does-not-exist.exe")).Verify()
	var native *NativeError
	if !errors.As(err, &native) {
		t.Fatalf("Verify on missing file = %v, want *NativeError", err)
	}
}

func TestThumbprints(t *testing.T) {
	path := systemBinary(t, "cmd.exe")

	ctx, err := ForFile(path).Verify()
	if err != nil {
		t.Fatalf("Verify(%s): %v", path, err)
	}
	defer ctx.Close()

	sha1 := ctx.SHA1Thumbprint()
	sha256 := ctx.SHA256Thumbprint()
	if len(sha1) != 40 {
		t.Errorf("sha1 thumbprint length = %d, want 40", len(sha1))
	}
	if len(sha256) != 64 {
		t.Errorf("sha256 thumbprint length = %d, want 64", len(sha256))
	}
	if ctx.SHA1Thumbprint() != sha1 || ctx.SHA256Thumbprint() != sha256 {
		t.Error("thumbprints are not stable across calls")
	}
}

func TestForPIDSelf(t *testing.T) {
	v, err := ForPID(int32(os.Getpid()))
	if err != nil {
		t.Fatalf("ForPID(self): %v", err)
	}
	self, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	if !strings.EqualFold(v.Path(), self) {
		t.Errorf("ForPID path = %q, want %q", v.Path(), self)
	}
}

func TestForPIDInvalid(t *testing.T) {
	// Pid 0 is the idle process pseudo-pid and cannot be opened.
	_, err := ForPID(0)
	var native *NativeError
	if !errors.As(err, &native) {
		t.Fatalf("ForPID(0) = %v, want *NativeError", err)
	}
}

func TestContextCloseIdempotent(t *testing.T) {
	path := systemBinary(t, "cmd.exe")

	ctx, err := ForFile(path).Verify()
	if err != nil {
		t.Fatalf("Verify(%s): %v", path, err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
