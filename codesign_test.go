package codesign

import (
	"errors"
	"testing"
)

func TestForFilePath(t *testing.T) {
	const path = `C:\Program Files\Example\agent.exe`
	if got := ForFile(path).Path(); got != path {
		t.Errorf("Path() = %q, want %q", got, path)
	}
}

func TestNativeErrorMatchesAlias(t *testing.T) {
	var wrapped error = &NativeError{Code: 0x80092003}
	var native *NativeError
	if !errors.As(wrapped, &native) {
		t.Fatal("errors.As failed to match *NativeError through the alias")
	}
	if native.Code != 0x80092003 {
		t.Errorf("Code = %#x, want 0x80092003", native.Code)
	}
}
