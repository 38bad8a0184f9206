//go:build windows

package fileops

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// setHidden adds FILE_ATTRIBUTE_HIDDEN so the trash stays out of Explorer.
func setHidden(path string) error {
	ptr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(ptr)
	if err != nil {
		return err
	}
	if attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0 {
		return nil
	}
	return windows.SetFileAttributes(ptr, attrs|windows.FILE_ATTRIBUTE_HIDDEN)
}
