package extract

import (
	"crypto"
	encasn1 "encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
	"golang.org/x/text/encoding/unicode"
)

// parseIndirectData pulls the digest algorithm and file digest out of a
// SpcIndirectDataContent value:
//
//	SpcIndirectDataContent ::= SEQUENCE {
//	    data          SpcAttributeTypeAndOptionalValue,
//	    messageDigest DigestInfo }
//
// Depending on the encoder the input is either the full SEQUENCE or its
// bare contents; both are accepted.
func parseIndirectData(content []byte) (crypto.Hash, []byte, bool) {
	outer := cryptobyte.String(content)
	var body cryptobyte.String
	if outer.ReadASN1(&body, cbasn1.SEQUENCE) && outer.Empty() {
		if alg, digest, ok := readIndirectBody(body); ok {
			return alg, digest, true
		}
	}
	return readIndirectBody(cryptobyte.String(content))
}

func readIndirectBody(body cryptobyte.String) (crypto.Hash, []byte, bool) {
	var data cryptobyte.String
	if !body.ReadASN1(&data, cbasn1.SEQUENCE) {
		return 0, nil, false
	}

	var digestInfo cryptobyte.String
	if !body.ReadASN1(&digestInfo, cbasn1.SEQUENCE) {
		return 0, nil, false
	}

	var algorithm cryptobyte.String
	if !digestInfo.ReadASN1(&algorithm, cbasn1.SEQUENCE) {
		return 0, nil, false
	}
	var oid encasn1.ObjectIdentifier
	if !algorithm.ReadASN1ObjectIdentifier(&oid) {
		return 0, nil, false
	}

	var digest cryptobyte.String
	if !digestInfo.ReadASN1(&digest, cbasn1.OCTET_STRING) || len(digest) == 0 {
		return 0, nil, false
	}

	return hashForOID(oid), []byte(digest), true
}

// parseOpusInfo fills ProgramName and MoreInfoURL from a SpcSpOpusInfo
// attribute value:
//
//	SpcSpOpusInfo ::= SEQUENCE {
//	    programName [0] EXPLICIT SpcString OPTIONAL,
//	    moreInfo    [1] EXPLICIT SpcLink  OPTIONAL }
func parseOpusInfo(value []byte, sig *Signature) {
	outer := cryptobyte.String(value)
	var body cryptobyte.String
	if !outer.ReadASN1(&body, cbasn1.SEQUENCE) {
		body = cryptobyte.String(value)
	}

	var field cryptobyte.String
	var present bool
	if !body.ReadOptionalASN1(&field, &present, cbasn1.Tag(0).Constructed().ContextSpecific()) {
		return
	}
	if present {
		sig.ProgramName = spcString(field)
	}

	if !body.ReadOptionalASN1(&field, &present, cbasn1.Tag(1).Constructed().ContextSpecific()) {
		return
	}
	if present {
		sig.MoreInfoURL = spcLink(field)
	}
}

// spcString decodes SpcString: either [0] IMPLICIT BMPSTRING (UTF-16BE)
// or [1] IMPLICIT IA5STRING.
func spcString(s cryptobyte.String) string {
	var inner cryptobyte.String
	var tag cbasn1.Tag
	if !s.ReadAnyASN1(&inner, &tag) {
		return ""
	}
	switch tag {
	case cbasn1.Tag(0).ContextSpecific():
		decoder := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		decoded, err := decoder.Bytes(inner)
		if err != nil {
			return ""
		}
		return string(decoded)
	case cbasn1.Tag(1).ContextSpecific():
		return string(inner)
	}
	return ""
}

// spcLink decodes the url choice of SpcLink; the file and moniker
// choices carry nothing useful for identification.
func spcLink(s cryptobyte.String) string {
	var inner cryptobyte.String
	var tag cbasn1.Tag
	if !s.ReadAnyASN1(&inner, &tag) {
		return ""
	}
	if tag == cbasn1.Tag(0).ContextSpecific() {
		return string(inner)
	}
	return ""
}
