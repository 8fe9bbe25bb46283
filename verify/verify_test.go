package verify

import (
	"errors"
	"testing"
)

func TestForFilePath(t *testing.T) {
	const path = `C:\Windows\explorer.exe`
	v := ForFile(path)
	if v.Path() != path {
		t.Errorf("Path() = %q, want %q", v.Path(), path)
	}
}

func TestNativeErrorFormat(t *testing.T) {
	err := &NativeError{Code: 0x800B0100}
	want := "verify: native call failed with status 0x800b0100"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNativeErrorAs(t *testing.T) {
	var wrapped error = &NativeError{Code: 5}
	var native *NativeError
	if !errors.As(wrapped, &native) {
		t.Fatal("errors.As failed to match *NativeError")
	}
	if native.Code != 5 {
		t.Errorf("Code = %d, want 5", native.Code)
	}
}
