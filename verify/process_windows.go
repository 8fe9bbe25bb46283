package verify

import (
	"golang.org/x/sys/windows"
)

// processImagePath resolves the full path of a process's main executable
// image. Requires only PROCESS_QUERY_LIMITED_INFORMATION access, so it
// works across integrity levels.
func processImagePath(pid uint32) (string, error) {
	proc, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", nativeError(err)
	}
	defer windows.CloseHandle(proc)

	buf := make([]uint16, 2048)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(proc, 0, &buf[0], &size); err != nil {
		return "", nativeError(err)
	}
	return windows.UTF16ToString(buf[:size]), nil
}
