package verify

import (
	"encoding/hex"
	"errors"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/samvdst/codesign/internal/wintrust"
)

// resourceGuard collects the native handles acquired during one catalog
// fallback attempt and releases the ones actually acquired, in reverse
// acquisition order. Zero handles are skipped, so it is safe to release
// after a partial acquisition.
type resourceGuard struct {
	file     windows.Handle
	catAdmin wintrust.HCatAdmin
	catInfo  wintrust.HCatInfo
}

func (g *resourceGuard) release() {
	if g.catInfo != 0 {
		wintrust.CryptCATAdminReleaseCatalogContext(g.catAdmin, g.catInfo, 0)
	}
	if g.catAdmin != 0 {
		wintrust.CryptCATAdminReleaseContext(g.catAdmin, 0)
	}
	if g.file != 0 && g.file != windows.InvalidHandle {
		windows.CloseHandle(g.file)
	}
}

func (v *Verifier) verify() (*Context, error) {
	path16, err := windows.UTF16PtrFromString(v.path)
	if err != nil {
		return nil, ErrInvalidPath
	}

	fileInfo := windows.WinTrustFileInfo{
		Size:     uint32(unsafe.Sizeof(windows.WinTrustFileInfo{})),
		FilePath: path16,
	}

	state, code := verifyTrust(
		wintrust.WTD_CHOICE_FILE,
		unsafe.Pointer(&fileInfo),
		wintrust.WTD_DISABLE_MD2_MD4|wintrust.WTD_REVOCATION_CHECK_END_CERT|wintrust.WTD_NO_IE4_CHAIN_FLAG,
	)
	switch code {
	case 0:
		return newContext(state)
	case wintrust.TRUST_E_NOSIGNATURE:
		return v.verifyCatalog(path16)
	default:
		return nil, &NativeError{Code: code}
	}
}

// verifyCatalog is the fallback for files without an embedded signature:
// hash the file through a catalog administrator context, look up a
// catalog containing that hash, and re-run the trust check against the
// file as a catalog member.
func (v *Verifier) verifyCatalog(path16 *uint16) (*Context, error) {
	file, err := windows.CreateFile(
		path16,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, nativeError(err)
	}

	guard := &resourceGuard{file: file}
	defer guard.release()

	if err := wintrust.CryptCATAdminAcquireContext2(&guard.catAdmin, nil, wintrust.BCryptSHA256Algorithm, nil, 0); err != nil {
		return nil, nativeError(err)
	}

	var hashLen uint32
	if err := wintrust.CryptCATAdminCalcHashFromFileHandle2(guard.catAdmin, file, &hashLen, nil, 0); err != nil {
		return nil, nativeError(err)
	}
	hash := make([]byte, hashLen)
	if err := wintrust.CryptCATAdminCalcHashFromFileHandle2(guard.catAdmin, file, &hashLen, &hash[0], 0); err != nil {
		return nil, nativeError(err)
	}

	catInfo, err := wintrust.CryptCATAdminEnumCatalogFromHash(guard.catAdmin, &hash[0], hashLen, 0, nil)
	if err != nil {
		// No catalog lists this hash: the file is simply unsigned.
		return nil, ErrUnsigned
	}
	guard.catInfo = catInfo

	var info wintrust.CatalogInfo
	info.Size = uint32(unsafe.Sizeof(info))
	if err := wintrust.CryptCATCatalogInfoFromContext(catInfo, &info, 0); err != nil {
		return nil, nativeError(err)
	}

	memberTag, err := windows.UTF16PtrFromString(hex.EncodeToString(hash))
	if err != nil {
		return nil, ErrInvalidPath
	}

	catalog := wintrust.CatalogTrustInfo{
		Size:            uint32(unsafe.Sizeof(wintrust.CatalogTrustInfo{})),
		CatalogFilePath: &info.CatalogFile[0],
		MemberTag:       memberTag,
		MemberFilePath:  path16,
	}

	state, code := verifyTrust(
		wintrust.WTD_CHOICE_CATALOG,
		unsafe.Pointer(&catalog),
		wintrust.WTD_CACHE_ONLY_URL_RETRIEVAL|wintrust.WTD_USE_DEFAULT_OSVER_CHECK,
	)
	if code != 0 {
		// A "no signature" here would mean the catalog itself is not
		// signed; that is a hard failure, not an unsigned file.
		return nil, &NativeError{Code: code}
	}
	return newContext(state)
}

// verifyTrust performs one WinVerifyTrust invocation with the generic
// verify policy, non-interactive UI and the given subject choice. On
// success it returns the trust state handle, whose ownership passes to
// the caller; on failure it closes any state data the provider
// allocated and returns the status code.
func verifyTrust(choice uint32, subject unsafe.Pointer, provFlags uint32) (windows.Handle, uint32) {
	data := windows.WinTrustData{
		Size:                            uint32(unsafe.Sizeof(windows.WinTrustData{})),
		UIChoice:                        wintrust.WTD_UI_NONE,
		RevocationChecks:                wintrust.WTD_REVOKE_NONE,
		UnionChoice:                     choice,
		FileOrCatalogOrBlobOrSgnrOrCert: subject,
		StateAction:                     wintrust.WTD_STATEACTION_VERIFY,
		ProvFlags:                       provFlags,
		UIContext:                       wintrust.WTD_UICONTEXT_EXECUTE,
	}

	err := windows.WinVerifyTrustEx(windows.InvalidHWND, &windows.WINTRUST_ACTION_GENERIC_VERIFY_V2, &data)
	if err != nil {
		closeStateData(data.StateData)
		return 0, statusCode(err)
	}
	return data.StateData, 0
}

// closeStateData releases a trust state handle through the provider's
// close action. Safe on a zero handle.
func closeStateData(state windows.Handle) {
	if state == 0 {
		return
	}
	data := windows.WinTrustData{
		Size:             uint32(unsafe.Sizeof(windows.WinTrustData{})),
		UIChoice:         wintrust.WTD_UI_NONE,
		RevocationChecks: wintrust.WTD_REVOKE_NONE,
		StateAction:      wintrust.WTD_STATEACTION_CLOSE,
		StateData:        state,
		UIContext:        wintrust.WTD_UICONTEXT_EXECUTE,
	}
	windows.WinVerifyTrustEx(windows.InvalidHWND, &windows.WINTRUST_ACTION_GENERIC_VERIFY_V2, &data)
}

// errUnexpected is E_UNEXPECTED, used when a native call fails without
// reporting a status code.
const errUnexpected = 0x8000FFFF

func statusCode(err error) uint32 {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return uint32(errno)
	}
	return errUnexpected
}

func nativeError(err error) error {
	return &NativeError{Code: statusCode(err)}
}
