package cli

import (
	"testing"

	codesign "github.com/samvdst/codesign"
	"github.com/samvdst/codesign/config"
)

func TestUsageExitCode(t *testing.T) {
	oldExit := osExit
	exitCode := -1
	osExit = func(code int) { exitCode = code }
	defer func() { osExit = oldExit }()

	Usage()

	if exitCode != 1 {
		t.Errorf("Usage exit code = %d, want 1", exitCode)
	}
}

func TestCheckPolicyMatch(t *testing.T) {
	config.Settings = config.Config{Signers: []config.Signer{{
		Path:           `C:\Program Files\Example\agent.exe`,
		Organization:   "Example Corp",
		SHA1Thumbprint: "D8FB0CC66A08061B42D46D03546F0D42CBC49B7C",
	}}}
	defer func() { config.Settings = config.Config{} }()

	result := verifyResult{
		Subject:        codesign.Name{Organization: "Example Corp"},
		SHA1Thumbprint: "d8fb0cc66a08061b42d46d03546f0d42cbc49b7c",
	}
	if err := checkPolicy(`C:\Program Files\Example\agent.exe`, &result); err != nil {
		t.Fatalf("checkPolicy: %v", err)
	}
	if !result.PolicyMatched {
		t.Error("PolicyMatched not set on a matching entry")
	}
}

func TestCheckPolicyMismatch(t *testing.T) {
	config.Settings = config.Config{Signers: []config.Signer{{
		Path:         `C:\Program Files\Example\agent.exe`,
		Organization: "Example Corp",
	}}}
	defer func() { config.Settings = config.Config{} }()

	result := verifyResult{Subject: codesign.Name{Organization: "Someone Else"}}
	if err := checkPolicy(`C:\Program Files\Example\agent.exe`, &result); err == nil {
		t.Fatal("checkPolicy accepted a mismatched organization")
	}
}

func TestCheckPolicyNoEntry(t *testing.T) {
	config.Settings = config.Config{}

	result := verifyResult{Subject: codesign.Name{Organization: "Anyone"}}
	if err := checkPolicy(`C:\unknown.exe`, &result); err != nil {
		t.Fatalf("checkPolicy on unpinned path: %v", err)
	}
	if result.PolicyMatched {
		t.Error("PolicyMatched set without a pinned entry")
	}
}
