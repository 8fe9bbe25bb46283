package cli

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/samvdst/codesign/extract"
)

// inspectResult is the JSON shape printed for an embedded signature.
type inspectResult struct {
	Path             string     `json:"path"`
	SignerCommonName string     `json:"signer_common_name,omitempty"`
	SignerOrg        string     `json:"signer_organization,omitempty"`
	CertificateCount int        `json:"certificate_count"`
	DigestAlgorithm  string     `json:"digest_algorithm,omitempty"`
	FileDigest       string     `json:"file_digest,omitempty"`
	ProgramName      string     `json:"program_name,omitempty"`
	MoreInfoURL      string     `json:"more_info_url,omitempty"`
	TimestampedAt    *time.Time `json:"timestamped_at,omitempty"`
}

func InspectCommand() {
	inspectFlags := flag.NewFlagSet("inspect", flag.ExitOnError)

	inspectFlags.Usage = func() {
		fmt.Printf("Usage: %s inspect <binary>\n\n", os.Args[0])
		fmt.Println("Show the embedded signature of a binary without a trust check")
		fmt.Println("\nWorks on any platform, including files copied off the machine")
		fmt.Println("they were signed for. No trust decision is made.")
	}

	if err := inspectFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse inspect flags: %v", err)
	}
	if len(inspectFlags.Args()) < 1 {
		inspectFlags.Usage()
		osExit(1)
		return
	}

	path := inspectFlags.Arg(0)
	sig, err := extract.File(path)
	if err != nil {
		if errors.Is(err, extract.ErrNoSignature) {
			log.Fatalf("%s has no embedded signature", path)
		}
		log.Fatalf("Failed to inspect %s: %v", path, err)
	}

	result := inspectResult{
		Path:             path,
		CertificateCount: len(sig.Certificates),
		ProgramName:      sig.ProgramName,
		MoreInfoURL:      sig.MoreInfoURL,
	}
	if sig.Signer != nil {
		result.SignerCommonName = sig.Signer.Subject.CommonName
		if len(sig.Signer.Subject.Organization) > 0 {
			result.SignerOrg = sig.Signer.Subject.Organization[0]
		}
	}
	if sig.DigestAlgorithm != 0 {
		result.DigestAlgorithm = sig.DigestAlgorithm.String()
		result.FileDigest = hex.EncodeToString(sig.FileDigest)
	}
	if sig.Timestamp != nil {
		result.TimestampedAt = &sig.Timestamp.Time
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}
