package codesign

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestVerifyExplorer(t *testing.T) {
	windir := os.Getenv("windir")
	if windir == "" {
		t.Skip("windir is not set")
	}

	ctx, err := ForFile(filepath.Join(windir, "explorer.exe")).Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	defer ctx.Close()

	if org := ctx.SubjectName().Organization; org != "Microsoft Corporation" {
		t.Errorf("organization = %q, want %q", org, "Microsoft Corporation")
	}
	if ctx.Serial() == "" {
		t.Error("serial is empty")
	}
	if len(ctx.SHA256Thumbprint()) != 64 {
		t.Errorf("sha256 thumbprint length = %d, want 64", len(ctx.SHA256Thumbprint()))
	}
}

func TestVerifyUnsigned(t *testing.T) {
	self, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	if _, err := ForFile(self).Verify(); !errors.Is(err, ErrUnsigned) {
		t.Fatalf("Verify = %v, want ErrUnsigned", err)
	}
}
