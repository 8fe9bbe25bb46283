package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	codesign "github.com/samvdst/codesign"
	"github.com/samvdst/codesign/config"
)

// verifyResult is the JSON shape printed for a successful verification.
type verifyResult struct {
	Path             string        `json:"path"`
	Subject          codesign.Name `json:"subject"`
	Issuer           codesign.Name `json:"issuer"`
	Serial           string        `json:"serial"`
	SHA1Thumbprint   string        `json:"sha1_thumbprint"`
	SHA256Thumbprint string        `json:"sha256_thumbprint"`
	PolicyMatched    bool          `json:"policy_matched,omitempty"`
}

func VerifyCommand() {
	verifyFlags := flag.NewFlagSet("verify", flag.ExitOnError)

	var pid int
	var configFile string

	verifyFlags.IntVar(&pid, "pid", 0, "Verify the main executable of a running process instead of a file")
	verifyFlags.StringVar(&configFile, "config", "", "TOML file with pinned signer policies to enforce")

	verifyFlags.Usage = func() {
		fmt.Printf("Usage: %s verify [options] <binary>\n\n", os.Args[0])
		fmt.Println("Verify the code signature of a binary through the platform trust engine")
		fmt.Println("\nOptions:")
		verifyFlags.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Printf("  %s verify C:\\Windows\\explorer.exe\n", os.Args[0])
		fmt.Printf("  %s verify -pid 4321\n", os.Args[0])
		fmt.Printf("  %s verify -config codesign.conf C:\\Program Files\\Example\\agent.exe\n", os.Args[0])
	}

	if err := verifyFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse verify flags: %v", err)
	}

	var verifier *codesign.Verifier
	switch {
	case pid != 0:
		var err error
		verifier, err = codesign.ForPID(int32(pid))
		if err != nil {
			log.Fatalf("Failed to resolve process %d: %v", pid, err)
		}
	case len(verifyFlags.Args()) >= 1:
		verifier = codesign.ForFile(verifyFlags.Arg(0))
	default:
		verifyFlags.Usage()
		osExit(1)
		return
	}

	if configFile != "" {
		config.Read(configFile)
	}

	ctx, err := verifier.Verify()
	if err != nil {
		if errors.Is(err, codesign.ErrUnsigned) {
			log.Fatalf("%s is not signed", verifier.Path())
		}
		log.Fatalf("Failed to verify %s: %v", verifier.Path(), err)
	}
	defer func() {
		if err := ctx.Close(); err != nil {
			log.Printf("Warning: failed to release verification state: %v", err)
		}
	}()

	result := verifyResult{
		Path:             verifier.Path(),
		Subject:          ctx.SubjectName(),
		Issuer:           ctx.IssuerName(),
		Serial:           ctx.Serial(),
		SHA1Thumbprint:   ctx.SHA1Thumbprint(),
		SHA256Thumbprint: ctx.SHA256Thumbprint(),
	}

	if configFile != "" {
		if err := checkPolicy(verifier.Path(), &result); err != nil {
			log.Fatalf("Signer policy violation: %v", err)
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}

// checkPolicy enforces the pinned signer entry for the verified path,
// when the loaded config has one.
func checkPolicy(path string, result *verifyResult) error {
	pinned, ok := config.Settings.ForPath(path)
	if !ok {
		return nil
	}

	if pinned.Organization != "" && pinned.Organization != result.Subject.Organization {
		return fmt.Errorf("organization %q does not match pinned %q", result.Subject.Organization, pinned.Organization)
	}
	if pinned.SHA1Thumbprint != "" && !strings.EqualFold(pinned.SHA1Thumbprint, result.SHA1Thumbprint) {
		return fmt.Errorf("sha1 thumbprint %s does not match pinned %s", result.SHA1Thumbprint, pinned.SHA1Thumbprint)
	}
	if pinned.SHA256Thumbprint != "" && !strings.EqualFold(pinned.SHA256Thumbprint, result.SHA256Thumbprint) {
		return fmt.Errorf("sha256 thumbprint %s does not match pinned %s", result.SHA256Thumbprint, pinned.SHA256Thumbprint)
	}

	result.PolicyMatched = true
	return nil
}
