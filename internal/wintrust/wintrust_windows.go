// Package wintrust exposes the pieces of the Windows trust and catalog
// APIs that golang.org/x/sys/windows does not: the catalog administrator
// functions used for catalog-signed files and the WTHelper accessors that
// walk from trust provider state data to the signer certificate.
package wintrust

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// WinTrustData.ProvFlags values.
const (
	WTD_USE_IE4_TRUST_FLAG                  = 0x1
	WTD_NO_IE4_CHAIN_FLAG                   = 0x2
	WTD_NO_POLICY_USAGE_FLAG                = 0x4
	WTD_REVOCATION_CHECK_NONE               = 0x10
	WTD_REVOCATION_CHECK_END_CERT           = 0x20
	WTD_REVOCATION_CHECK_CHAIN              = 0x40
	WTD_REVOCATION_CHECK_CHAIN_EXCLUDE_ROOT = 0x80
	WTD_SAFER_FLAG                          = 0x100
	WTD_HASH_ONLY_FLAG                      = 0x200
	WTD_USE_DEFAULT_OSVER_CHECK             = 0x400
	WTD_LIFETIME_SIGNING_FLAG               = 0x800
	WTD_CACHE_ONLY_URL_RETRIEVAL            = 0x1000
	WTD_DISABLE_MD2_MD4                     = 0x2000
)

// WinTrustData.UIChoice / RevocationChecks / UnionChoice / StateAction /
// UIContext values.
const (
	WTD_UI_ALL    = 1
	WTD_UI_NONE   = 2
	WTD_UI_NOBAD  = 3
	WTD_UI_NOGOOD = 4

	WTD_REVOKE_NONE       = 0
	WTD_REVOKE_WHOLECHAIN = 1

	WTD_CHOICE_FILE    = 1
	WTD_CHOICE_CATALOG = 2
	WTD_CHOICE_BLOB    = 3
	WTD_CHOICE_SIGNER  = 4
	WTD_CHOICE_CERT    = 5

	WTD_STATEACTION_IGNORE = 0x0
	WTD_STATEACTION_VERIFY = 0x10
	WTD_STATEACTION_CLOSE  = 0x2

	WTD_UICONTEXT_EXECUTE = 0
	WTD_UICONTEXT_INSTALL = 1
)

// Status codes surfaced by WinVerifyTrust.
const (
	TRUST_E_NOSIGNATURE         = 0x800B0100
	TRUST_E_SUBJECT_NOT_TRUSTED = 0x800B0004
	TRUST_E_NO_SIGNER_CERT      = 0x800B0007
	TRUST_E_EXPLICIT_DISTRUST   = 0x800B0111
	CRYPT_E_SECURITY_SETTINGS   = 0x80092026
)

// CertGetNameString parameters not exported by x/sys.
const (
	CERT_NAME_ATTR_TYPE   = 3
	CERT_NAME_ISSUER_FLAG = 0x1
)

// BCryptSHA256Algorithm is the BCRYPT_SHA256_ALGORITHM wide string.
var BCryptSHA256Algorithm = &([]uint16{'S', 'H', 'A', '2', '5', '6', 0})[0]

// HCatAdmin is a catalog administrator context handle.
type HCatAdmin uintptr

// HCatInfo is a catalog information context handle.
type HCatInfo uintptr

// CatalogInfo mirrors CATALOG_INFO.
type CatalogInfo struct {
	Size        uint32
	CatalogFile [windows.MAX_PATH]uint16
}

// CatalogTrustInfo mirrors WINTRUST_CATALOG_INFO.
type CatalogTrustInfo struct {
	Size                   uint32
	CatalogVersion         uint32
	CatalogFilePath        *uint16
	MemberTag              *uint16
	MemberFilePath         *uint16
	MemberFile             windows.Handle
	CalculatedFileHash     *byte
	CalculatedFileHashSize uint32
	CatalogContext         uintptr
	CatAdmin               HCatAdmin
}

// CryptProviderCert is the leading fields of CRYPT_PROVIDER_CERT; only
// the certificate context pointer is consumed.
type CryptProviderCert struct {
	Size uint32
	Cert *windows.CertContext
}

var (
	modwintrust = windows.NewLazySystemDLL("wintrust.dll")

	procCryptCATAdminAcquireContext2         = modwintrust.NewProc("CryptCATAdminAcquireContext2")
	procCryptCATAdminCalcHashFromFileHandle2 = modwintrust.NewProc("CryptCATAdminCalcHashFromFileHandle2")
	procCryptCATAdminEnumCatalogFromHash     = modwintrust.NewProc("CryptCATAdminEnumCatalogFromHash")
	procCryptCATCatalogInfoFromContext       = modwintrust.NewProc("CryptCATCatalogInfoFromContext")
	procCryptCATAdminReleaseCatalogContext   = modwintrust.NewProc("CryptCATAdminReleaseCatalogContext")
	procCryptCATAdminReleaseContext          = modwintrust.NewProc("CryptCATAdminReleaseContext")
	procWTHelperProvDataFromStateData        = modwintrust.NewProc("WTHelperProvDataFromStateData")
	procWTHelperGetProvSignerFromChain       = modwintrust.NewProc("WTHelperGetProvSignerFromChain")
	procWTHelperGetProvCertFromChain         = modwintrust.NewProc("WTHelperGetProvCertFromChain")
)

// CryptCATAdminAcquireContext2 acquires a catalog administrator context
// configured for the given hash algorithm.
func CryptCATAdminAcquireContext2(catAdmin *HCatAdmin, subsystem *windows.GUID, hashAlgorithm *uint16, policy unsafe.Pointer, flags uint32) error {
	r1, _, e1 := procCryptCATAdminAcquireContext2.Call(
		uintptr(unsafe.Pointer(catAdmin)),
		uintptr(unsafe.Pointer(subsystem)),
		uintptr(unsafe.Pointer(hashAlgorithm)),
		uintptr(policy),
		uintptr(flags),
	)
	if r1 == 0 {
		return e1
	}
	return nil
}

// CryptCATAdminCalcHashFromFileHandle2 computes the catalog hash of an
// open file. Call once with hash == nil to size the buffer.
func CryptCATAdminCalcHashFromFileHandle2(catAdmin HCatAdmin, file windows.Handle, hashLen *uint32, hash *byte, flags uint32) error {
	r1, _, e1 := procCryptCATAdminCalcHashFromFileHandle2.Call(
		uintptr(catAdmin),
		uintptr(file),
		uintptr(unsafe.Pointer(hashLen)),
		uintptr(unsafe.Pointer(hash)),
		uintptr(flags),
	)
	if r1 == 0 {
		return e1
	}
	return nil
}

// CryptCATAdminEnumCatalogFromHash returns the first catalog containing
// the given member hash.
func CryptCATAdminEnumCatalogFromHash(catAdmin HCatAdmin, hash *byte, hashLen uint32, flags uint32, prev *HCatInfo) (HCatInfo, error) {
	r1, _, e1 := procCryptCATAdminEnumCatalogFromHash.Call(
		uintptr(catAdmin),
		uintptr(unsafe.Pointer(hash)),
		uintptr(hashLen),
		uintptr(flags),
		uintptr(unsafe.Pointer(prev)),
	)
	if r1 == 0 {
		return 0, e1
	}
	return HCatInfo(r1), nil
}

// CryptCATCatalogInfoFromContext fills in the catalog file path for a
// catalog information context.
func CryptCATCatalogInfoFromContext(catInfo HCatInfo, info *CatalogInfo, flags uint32) error {
	r1, _, e1 := procCryptCATCatalogInfoFromContext.Call(
		uintptr(catInfo),
		uintptr(unsafe.Pointer(info)),
		uintptr(flags),
	)
	if r1 == 0 {
		return e1
	}
	return nil
}

// CryptCATAdminReleaseCatalogContext releases a catalog information
// context. Best effort; the API result carries no usable detail.
func CryptCATAdminReleaseCatalogContext(catAdmin HCatAdmin, catInfo HCatInfo, flags uint32) {
	procCryptCATAdminReleaseCatalogContext.Call(uintptr(catAdmin), uintptr(catInfo), uintptr(flags))
}

// CryptCATAdminReleaseContext releases a catalog administrator context.
func CryptCATAdminReleaseContext(catAdmin HCatAdmin, flags uint32) {
	procCryptCATAdminReleaseContext.Call(uintptr(catAdmin), uintptr(flags))
}

// WTHelperProvDataFromStateData resolves trust provider data from a
// WinVerifyTrust state handle. Returns 0 when no provider data exists.
func WTHelperProvDataFromStateData(stateData windows.Handle) uintptr {
	r1, _, _ := procWTHelperProvDataFromStateData.Call(uintptr(stateData))
	return r1
}

// WTHelperGetProvSignerFromChain returns the signer at idxSigner within
// the provider data, or 0.
func WTHelperGetProvSignerFromChain(provData uintptr, idxSigner uint32, counterSigner bool, idxCounterSigner uint32) uintptr {
	var counter uintptr
	if counterSigner {
		counter = 1
	}
	r1, _, _ := procWTHelperGetProvSignerFromChain.Call(
		provData,
		uintptr(idxSigner),
		counter,
		uintptr(idxCounterSigner),
	)
	return r1
}

// WTHelperGetProvCertFromChain returns the certificate at idxCert in the
// signer's chain; index 0 is the leaf.
func WTHelperGetProvCertFromChain(signer uintptr, idxCert uint32) *CryptProviderCert {
	r1, _, _ := procWTHelperGetProvCertFromChain.Call(signer, uintptr(idxCert))
	return (*CryptProviderCert)(unsafe.Pointer(r1))
}
