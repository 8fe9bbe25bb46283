//go:build !windows

package verify

import (
	"errors"
	"os"
	"testing"
)

func TestVerifyUnsupported(t *testing.T) {
	_, err := ForFile("/bin/sh").Verify()
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Verify = %v, want ErrUnsupported", err)
	}
}

func TestForPIDUnsupported(t *testing.T) {
	_, err := ForPID(int32(os.Getpid()))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("ForPID = %v, want ErrUnsupported", err)
	}
}
