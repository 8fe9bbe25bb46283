package extract

import (
	"crypto"
	"encoding/asn1"
	"testing"
)

func TestParseOpusInfoIA5Name(t *testing.T) {
	// programName as the IA5 choice, no moreInfo.
	name := tlv(0xa0, tlv(0x81, []byte("ascii tool")))
	var sig Signature
	parseOpusInfo(tlv(0x30, name), &sig)

	if sig.ProgramName != "ascii tool" {
		t.Errorf("program name = %q, want %q", sig.ProgramName, "ascii tool")
	}
	if sig.MoreInfoURL != "" {
		t.Errorf("more info url = %q, want empty", sig.MoreInfoURL)
	}
}

func TestParseOpusInfoEmpty(t *testing.T) {
	var sig Signature
	parseOpusInfo([]byte{0x30, 0x00}, &sig)

	if sig.ProgramName != "" || sig.MoreInfoURL != "" {
		t.Errorf("empty opus info produced %q / %q", sig.ProgramName, sig.MoreInfoURL)
	}
}

func TestHashForOID(t *testing.T) {
	cases := []struct {
		oid  asn1.ObjectIdentifier
		want crypto.Hash
	}{
		{oidDigestSHA1, crypto.SHA1},
		{oidDigestSHA256, crypto.SHA256},
		{oidDigestSHA512, crypto.SHA512},
		{asn1.ObjectIdentifier{1, 2, 3}, 0},
	}
	for _, c := range cases {
		if got := hashForOID(c.oid); got != c.want {
			t.Errorf("hashForOID(%v) = %v, want %v", c.oid, got, c.want)
		}
	}
}
